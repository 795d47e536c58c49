package ubjson

import (
	"errors"
	"fmt"
)

// Sentinel errors. Decode-side failures are wrapped in a *DecodeError
// carrying the input offset; match with errors.Is.
var (
	// ErrUnexpectedSymbol reports a marker byte that is not part of the
	// format where a marker was expected.
	ErrUnexpectedSymbol = errors.New("ubjson: unexpected symbol")

	// ErrTypeMismatch reports an accessor or mutation applied to a value
	// of a different kind.
	ErrTypeMismatch = errors.New("ubjson: type mismatch")

	// ErrMissingKey reports an object lookup miss.
	ErrMissingKey = errors.New("ubjson: missing key")

	// ErrMissingCount reports a container that declared an element type
	// without the count the format requires alongside it.
	ErrMissingCount = errors.New("ubjson: container type declared without count")

	// ErrCountTooLarge reports a declared element count that exceeds the
	// remaining input, before any allocation is attempted.
	ErrCountTooLarge = errors.New("ubjson: container count exceeds remaining input")

	// ErrDepthExceeded reports container nesting beyond Options.MaxDepth.
	ErrDepthExceeded = errors.New("ubjson: maximum nesting depth exceeded")

	// ErrUnexpectedEOF reports a read past the end of the input.
	ErrUnexpectedEOF = errors.New("ubjson: unexpected end of input")
)

// DecodeError wraps a sentinel decode failure with the absolute input
// offset and, when relevant, the offending marker byte.
type DecodeError struct {
	Offset int
	Marker byte
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Marker != 0 {
		return fmt.Sprintf("%v (marker 0x%02x at offset %d)", e.Err, e.Marker, e.Offset)
	}
	return fmt.Sprintf("%v (at offset %d)", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(off int, marker byte, err error) error {
	return &DecodeError{Offset: off, Marker: marker, Err: err}
}
