package ubjson

import (
	"encoding/binary"
)

// reader is a bounds-checked cursor over a finite input buffer. All
// multi-byte reads are big-endian. Failed reads leave the position
// unchanged so the reported offset points at the truncation.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) offset() int { return r.pos }

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) eof() error {
	return decodeErr(r.pos, 0, ErrUnexpectedEOF)
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.eof()
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// readBytes returns an independent copy of the next n bytes. The copy
// rule matters: decoded values must never alias the input buffer.
func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, r.eof()
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

func (r *reader) readUint16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, r.eof()
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) readUint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, r.eof()
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) readUint64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, r.eof()
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// seek moves to an absolute offset within the buffer.
func (r *reader) seek(off int) error {
	if off < 0 || off > len(r.data) {
		return decodeErr(off, 0, ErrUnexpectedEOF)
	}
	r.pos = off
	return nil
}

// skip moves relative to the current position.
func (r *reader) skip(n int) error {
	return r.seek(r.pos + n)
}
