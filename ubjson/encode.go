package ubjson

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Encode serializes the value in canonical form. Canonical encoding is
// deliberately lossy of the wire format's size optimizations but
// round-trip-safe for values:
//   - every integer and every length uses the widest L marker
//   - buffers always use the optimized [$U#<n> form
//   - arrays always use the generic per-element form
//   - objects emit entries in insertion order
func (v *Value) Encode() []byte {
	e := &encoder{}
	e.writeValue(v)
	return e.buf.Bytes()
}

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) writeValue(v *Value) {
	switch v.Kind() {
	case KindNull:
		e.buf.WriteByte(markerNull)

	case KindBool:
		if v.boolVal {
			e.buf.WriteByte(markerTrue)
		} else {
			e.buf.WriteByte(markerFalse)
		}

	case KindInt:
		e.writeInt(v.intVal)

	case KindFloat32:
		e.buf.WriteByte(markerFloat32)
		e.writeUint32(math.Float32bits(v.f32Val))

	case KindFloat64:
		e.buf.WriteByte(markerFloat64)
		e.writeUint64(math.Float64bits(v.f64Val))

	case KindString:
		e.buf.WriteByte(markerString)
		e.writeInt(int64(len(v.strVal)))
		e.buf.WriteString(v.strVal)

	case KindBuffer:
		e.buf.WriteByte(markerArrayOpen)
		e.buf.WriteByte(markerType)
		e.buf.WriteByte(markerUint8)
		e.buf.WriteByte(markerCount)
		e.writeInt(int64(len(v.bufVal)))
		e.buf.Write(v.bufVal)

	case KindArray:
		e.buf.WriteByte(markerArrayOpen)
		for _, elem := range v.arrVal {
			e.writeValue(elem)
		}
		e.buf.WriteByte(markerArrayClose)

	case KindObject:
		e.buf.WriteByte(markerObjectOpen)
		for _, entry := range v.objVal {
			e.writeInt(int64(len(entry.Key)))
			e.buf.WriteString(entry.Key)
			e.writeValue(entry.Value)
		}
		e.buf.WriteByte(markerObjectClose)
	}
}

// writeInt always emits the widest integer form.
func (e *encoder) writeInt(n int64) {
	e.buf.WriteByte(markerInt64)
	e.writeUint64(uint64(n))
}

func (e *encoder) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}
