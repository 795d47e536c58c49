package ubjson

import (
	"fmt"
	"math"
)

// Wire format markers.
const (
	markerNull    = 'Z'
	markerNoop    = 'N'
	markerTrue    = 'T'
	markerFalse   = 'F'
	markerInt8    = 'i'
	markerUint8   = 'U'
	markerInt16   = 'I'
	markerInt32   = 'l'
	markerInt64   = 'L'
	markerFloat32 = 'd'
	markerFloat64 = 'D'
	markerChar    = 'C'
	markerString  = 'S'
	markerHighNum = 'H'

	markerArrayOpen   = '['
	markerArrayClose  = ']'
	markerObjectOpen  = '{'
	markerObjectClose = '}'
	markerType        = '$'
	markerCount       = '#'
)

// DefaultMaxDepth bounds container nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 512

// Options configures decoding.
type Options struct {
	// MaxDepth is the maximum container nesting depth before decoding
	// fails with ErrDepthExceeded. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Decode reads exactly one value from data. Trailing bytes after the
// first complete value are ignored. Any malformed input fails with a
// *DecodeError wrapping one of the sentinel errors.
func Decode(data []byte) (*Value, error) {
	return DecodeWithOptions(data, Options{})
}

// DecodeWithOptions is Decode with explicit options.
func DecodeWithOptions(data []byte, opts Options) (*Value, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	d := &decoder{r: newReader(data), maxDepth: opts.MaxDepth}
	m, err := d.nextMarker()
	if err != nil {
		return nil, err
	}
	return d.decodeValue(m, 0)
}

type decoder struct {
	r        *reader
	maxDepth int
}

// nextMarker reads the next marker byte, skipping no-op filler. Filler
// may appear between any two tokens, including before the first.
func (d *decoder) nextMarker() (byte, error) {
	for {
		b, err := d.r.readByte()
		if err != nil {
			return 0, err
		}
		if b != markerNoop {
			return b, nil
		}
	}
}

// decodeValue decodes one value whose marker has already been consumed.
func (d *decoder) decodeValue(marker byte, depth int) (*Value, error) {
	off := d.r.offset() - 1

	switch marker {
	case markerNull:
		return Null(), nil
	case markerTrue:
		return Bool(true), nil
	case markerFalse:
		return Bool(false), nil

	case markerInt8, markerUint8, markerChar, markerInt16, markerInt32, markerInt64:
		n, err := d.readIntPayload(marker)
		if err != nil {
			return nil, err
		}
		return Int(n), nil

	case markerFloat32:
		bits, err := d.r.readUint32()
		if err != nil {
			return nil, err
		}
		return Float32(math.Float32frombits(bits)), nil

	case markerFloat64:
		bits, err := d.r.readUint64()
		if err != nil {
			return nil, err
		}
		return Float64(math.Float64frombits(bits)), nil

	case markerString, markerHighNum:
		// High-precision numbers are kept as their literal text.
		s, err := d.readString()
		if err != nil {
			return nil, err
		}
		return String(s), nil

	case markerArrayOpen:
		if depth >= d.maxDepth {
			return nil, decodeErr(off, marker, ErrDepthExceeded)
		}
		return d.decodeArray(depth + 1)

	case markerObjectOpen:
		if depth >= d.maxDepth {
			return nil, decodeErr(off, marker, ErrDepthExceeded)
		}
		return d.decodeObject(depth + 1)

	default:
		return nil, decodeErr(off, marker, ErrUnexpectedSymbol)
	}
}

// readIntPayload reads the fixed-width big-endian payload of an integer
// marker, widened to int64. i is signed, U and C are unsigned.
func (d *decoder) readIntPayload(marker byte) (int64, error) {
	switch marker {
	case markerInt8:
		b, err := d.r.readByte()
		if err != nil {
			return 0, err
		}
		return int64(int8(b)), nil
	case markerUint8, markerChar:
		b, err := d.r.readByte()
		if err != nil {
			return 0, err
		}
		return int64(b), nil
	case markerInt16:
		v, err := d.r.readUint16()
		if err != nil {
			return 0, err
		}
		return int64(int16(v)), nil
	case markerInt32:
		v, err := d.r.readUint32()
		if err != nil {
			return 0, err
		}
		return int64(int32(v)), nil
	case markerInt64:
		v, err := d.r.readUint64()
		if err != nil {
			return 0, err
		}
		return int64(v), nil
	default:
		return 0, decodeErr(d.r.offset()-1, marker, ErrUnexpectedSymbol)
	}
}

// readLength reads an integer token (marker plus payload) used as a
// string length or container count. Negative values are malformed.
func (d *decoder) readLength() (int, error) {
	m, err := d.nextMarker()
	if err != nil {
		return 0, err
	}
	off := d.r.offset() - 1
	n, err := d.readIntPayload(m)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, decodeErr(off, m, fmt.Errorf("negative length %d: %w", n, ErrUnexpectedSymbol))
	}
	return int(n), nil
}

// readString reads a length-prefixed string: an integer token followed
// by that many raw bytes, copied out of the input.
func (d *decoder) readString() (string, error) {
	n, err := d.readLength()
	if err != nil {
		return "", err
	}
	b, err := d.r.readBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// elemMinWidth returns the minimum payload bytes one element of the
// declared type consumes. Used to reject hostile counts before any
// allocation; zero means the type carries no payload and no bound on
// count can be derived from the remaining input.
func elemMinWidth(marker byte) int {
	switch marker {
	case markerNull, markerTrue, markerFalse:
		return 0
	case markerInt8, markerUint8, markerChar:
		return 1
	case markerInt16:
		return 2
	case markerInt32, markerFloat32:
		return 4
	case markerInt64, markerFloat64:
		return 8
	case markerString, markerHighNum:
		return 2 // length token's marker plus its smallest payload (i 0)
	default:
		return 1
	}
}

// readContainerHeader consumes an optional $type / #count header after a
// container-open marker. counted is true when a count was declared; for
// the unbounded form, first holds the already-consumed marker that opens
// the container body (an element, a key length, or the closing marker).
func (d *decoder) readContainerHeader() (elemType byte, hasType bool, count int, first byte, counted bool, err error) {
	m, err := d.nextMarker()
	if err != nil {
		return 0, false, 0, 0, false, err
	}

	if m == markerType {
		elemType, err = d.nextMarker()
		if err != nil {
			return 0, false, 0, 0, false, err
		}
		hasType = true

		m, err = d.nextMarker()
		if err != nil {
			return 0, false, 0, 0, false, err
		}
		if m != markerCount {
			// A declared type is only valid together with a count.
			return 0, false, 0, 0, false, decodeErr(d.r.offset()-1, m, ErrMissingCount)
		}
	}

	if m == markerCount {
		count, err = d.readLength()
		if err != nil {
			return 0, false, 0, 0, false, err
		}
		return elemType, hasType, count, 0, true, nil
	}

	return 0, false, -1, m, false, nil
}

// maxZeroWidthCount caps declared counts for element types that consume
// no payload, where the remaining input derives no bound. Such elements
// still cost an allocation each, so the count cannot be open-ended.
const maxZeroWidthCount = 1 << 24

// guardCount rejects counts that cannot possibly fit in the remaining
// input. minWidth zero (payload-free element types) is bounded by
// maxZeroWidthCount instead.
func (d *decoder) guardCount(count, minWidth int) error {
	if minWidth == 0 {
		if count > maxZeroWidthCount {
			return decodeErr(d.r.offset(), 0, ErrCountTooLarge)
		}
		return nil
	}
	if count > d.r.remaining()/minWidth {
		return decodeErr(d.r.offset(), 0, ErrCountTooLarge)
	}
	return nil
}

func (d *decoder) decodeArray(depth int) (*Value, error) {
	elemType, hasType, count, first, counted, err := d.readContainerHeader()
	if err != nil {
		return nil, err
	}

	if counted {
		// [$U#<n> collapses into a single opaque buffer of n raw bytes.
		if hasType && elemType == markerUint8 {
			if err := d.guardCount(count, 1); err != nil {
				return nil, err
			}
			b, err := d.r.readBytes(count)
			if err != nil {
				return nil, err
			}
			return &Value{kind: KindBuffer, bufVal: b}, nil
		}

		minWidth := 1
		if hasType {
			minWidth = elemMinWidth(elemType)
		}
		if err := d.guardCount(count, minWidth); err != nil {
			return nil, err
		}

		// A counted array stops at exactly count elements; there is no
		// closing marker to consume.
		elems := make([]*Value, 0, count)
		for i := 0; i < count; i++ {
			m := elemType
			if !hasType {
				m, err = d.nextMarker()
				if err != nil {
					return nil, err
				}
			}
			elem, err := d.decodeValue(m, depth)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		return Array(elems...), nil
	}

	// Unbounded form: scan elements until the closing marker, with no-op
	// filler transparent in between.
	var elems []*Value
	m := first
	for {
		if m == markerArrayClose {
			return Array(elems...), nil
		}
		elem, err := d.decodeValue(m, depth)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)

		m, err = d.nextMarker()
		if err != nil {
			return nil, err
		}
	}
}

func (d *decoder) decodeObject(depth int) (*Value, error) {
	elemType, hasType, count, first, counted, err := d.readContainerHeader()
	if err != nil {
		return nil, err
	}

	if counted {
		// Every entry carries at least a key length token (two bytes)
		// plus the value payload.
		minWidth := 2 + 1
		if hasType {
			minWidth = 2 + elemMinWidth(elemType)
		}
		if err := d.guardCount(count, minWidth); err != nil {
			return nil, err
		}

		// A repeated key overwrites the earlier entry in place, so the
		// result keeps keys unique with last-write-wins semantics.
		obj := &Value{kind: KindObject, objVal: make([]Entry, 0, count)}
		for i := 0; i < count; i++ {
			key, err := d.readString()
			if err != nil {
				return nil, err
			}
			m := elemType
			if !hasType {
				m, err = d.nextMarker()
				if err != nil {
					return nil, err
				}
			}
			val, err := d.decodeValue(m, depth)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		return obj, nil
	}

	// Unbounded form: the first marker is either the closing brace or
	// the integer token opening a key.
	obj := Object()
	m := first
	for {
		if m == markerObjectClose {
			return obj, nil
		}

		keyOff := d.r.offset() - 1
		n, err := d.readIntPayload(m)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, decodeErr(keyOff, m, fmt.Errorf("negative length %d: %w", n, ErrUnexpectedSymbol))
		}
		keyBytes, err := d.r.readBytes(int(n))
		if err != nil {
			return nil, err
		}

		vm, err := d.nextMarker()
		if err != nil {
			return nil, err
		}
		val, err := d.decodeValue(vm, depth)
		if err != nil {
			return nil, err
		}
		obj.Set(string(keyBytes), val)

		m, err = d.nextMarker()
		if err != nil {
			return nil, err
		}
	}
}
