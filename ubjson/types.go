package ubjson

import (
	"fmt"
)

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat32
	KindFloat64
	KindString
	KindBuffer
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBuffer:
		return "buffer"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a UBJSON value: a closed tagged union with exactly one variant
// active at a time. Containers exclusively own their children; a value
// must not appear under two parents.
type Value struct {
	kind Kind

	// Scalar payloads (only one valid based on kind)
	boolVal bool
	intVal  int64
	f32Val  float32
	f64Val  float64
	strVal  string
	bufVal  []byte

	// Container payloads
	arrVal []*Value
	objVal []Entry
}

// Entry is a key-value pair in an object. Objects keep entries in
// insertion order, which makes encode and render deterministic.
type Entry struct {
	Key   string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value. All wire integer widths widen to int64.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float32 creates a 32-bit float value.
func Float32(v float32) *Value {
	return &Value{kind: KindFloat32, f32Val: v}
}

// Float64 creates a 64-bit float value.
func Float64(v float64) *Value {
	return &Value{kind: KindFloat64, f64Val: v}
}

// String creates a string value.
func String(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Buffer creates an opaque byte buffer value. The bytes are copied, so
// the value never aliases caller storage.
func Buffer(v []byte) *Value {
	b := make([]byte, len(v))
	copy(b, v)
	return &Value{kind: KindBuffer, bufVal: b}
}

// Array creates an array value from its elements.
func Array(elems ...*Value) *Value {
	return &Value{kind: KindArray, arrVal: elems}
}

// Object creates an object value from key-value entries.
func Object(entries ...Entry) *Value {
	return &Value{kind: KindObject, objVal: entries}
}

// Field creates an Entry for use in Object construction.
func Field(key string, value *Value) Entry {
	return Entry{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the active variant.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true for the null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

func mismatch(want, got Kind) error {
	return fmt.Errorf("expected %s, got %s: %w", want, got, ErrTypeMismatch)
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v.Kind() != KindBool {
		return false, mismatch(KindBool, v.Kind())
	}
	return v.boolVal, nil
}

// AsInt returns the integer payload.
func (v *Value) AsInt() (int64, error) {
	if v.Kind() != KindInt {
		return 0, mismatch(KindInt, v.Kind())
	}
	return v.intVal, nil
}

// AsFloat32 returns the 32-bit float payload.
func (v *Value) AsFloat32() (float32, error) {
	if v.Kind() != KindFloat32 {
		return 0, mismatch(KindFloat32, v.Kind())
	}
	return v.f32Val, nil
}

// AsFloat64 returns the 64-bit float payload.
func (v *Value) AsFloat64() (float64, error) {
	if v.Kind() != KindFloat64 {
		return 0, mismatch(KindFloat64, v.Kind())
	}
	return v.f64Val, nil
}

// AsString returns the string payload.
func (v *Value) AsString() (string, error) {
	if v.Kind() != KindString {
		return "", mismatch(KindString, v.Kind())
	}
	return v.strVal, nil
}

// AsBuffer returns the buffer payload. The returned slice is the value's
// own storage; callers that mutate it should copy first.
func (v *Value) AsBuffer() ([]byte, error) {
	if v.Kind() != KindBuffer {
		return nil, mismatch(KindBuffer, v.Kind())
	}
	return v.bufVal, nil
}

// AsArray returns the array elements.
func (v *Value) AsArray() ([]*Value, error) {
	if v.Kind() != KindArray {
		return nil, mismatch(KindArray, v.Kind())
	}
	return v.arrVal, nil
}

// AsObject returns the object entries in insertion order.
func (v *Value) AsObject() ([]Entry, error) {
	if v.Kind() != KindObject {
		return nil, mismatch(KindObject, v.Kind())
	}
	return v.objVal, nil
}

// Len returns the element count of an array or object, 0 otherwise.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.arrVal)
	case KindObject:
		return len(v.objVal)
	default:
		return 0
	}
}

// Index returns the i-th element of an array.
func (v *Value) Index(i int) (*Value, error) {
	if v.Kind() != KindArray {
		return nil, mismatch(KindArray, v.Kind())
	}
	if i < 0 || i >= len(v.arrVal) {
		return nil, fmt.Errorf("ubjson: index %d out of bounds (len=%d)", i, len(v.arrVal))
	}
	return v.arrVal[i], nil
}

// ============================================================
// Object operations
// ============================================================

// Get returns the value associated with key on an object. It fails with
// ErrMissingKey when the key is absent and ErrTypeMismatch when the
// receiver is not an object.
func (v *Value) Get(key string) (*Value, error) {
	if v.Kind() != KindObject {
		return nil, mismatch(KindObject, v.Kind())
	}
	for _, e := range v.objVal {
		if e.Key == key {
			return e.Value, nil
		}
	}
	return nil, fmt.Errorf("ubjson: key %q: %w", key, ErrMissingKey)
}

// GetString is Get followed by AsString.
func (v *Value) GetString(key string) (string, error) {
	c, err := v.Get(key)
	if err != nil {
		return "", err
	}
	return c.AsString()
}

// GetInt is Get followed by AsInt.
func (v *Value) GetInt(key string) (int64, error) {
	c, err := v.Get(key)
	if err != nil {
		return 0, err
	}
	return c.AsInt()
}

// Set inserts or overwrites key on an object. An overwrite replaces the
// previous value in place, keeping the key's original position.
func (v *Value) Set(key string, val *Value) error {
	if v.Kind() != KindObject {
		return mismatch(KindObject, v.Kind())
	}
	for i := range v.objVal {
		if v.objVal[i].Key == key {
			v.objVal[i].Value = val
			return nil
		}
	}
	v.objVal = append(v.objVal, Entry{Key: key, Value: val})
	return nil
}

// Append adds an element to an array.
func (v *Value) Append(val *Value) error {
	if v.Kind() != KindArray {
		return mismatch(KindArray, v.Kind())
	}
	v.arrVal = append(v.arrVal, val)
	return nil
}

// ============================================================
// Structural equality
// ============================================================

// Equal reports deep structural equality: same kind and payload at every
// node, same element order for arrays, same key set and per-key values
// for objects regardless of entry order.
func (v *Value) Equal(o *Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == o.boolVal
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat32:
		return v.f32Val == o.f32Val
	case KindFloat64:
		return v.f64Val == o.f64Val
	case KindString:
		return v.strVal == o.strVal
	case KindBuffer:
		if len(v.bufVal) != len(o.bufVal) {
			return false
		}
		for i := range v.bufVal {
			if v.bufVal[i] != o.bufVal[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arrVal) != len(o.arrVal) {
			return false
		}
		for i := range v.arrVal {
			if !v.arrVal[i].Equal(o.arrVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.objVal) != len(o.objVal) {
			return false
		}
		for _, e := range v.objVal {
			ov, err := o.Get(e.Key)
			if err != nil || !e.Value.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
