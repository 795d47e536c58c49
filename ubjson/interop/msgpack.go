package interop

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hexwave/ubjson/ubjson"
)

// ToMsgpack transcodes a value to msgpack. Buffers become msgpack bin
// values; object entry order is not preserved.
func ToMsgpack(v *ubjson.Value) ([]byte, error) {
	return msgpack.Marshal(v.Interface())
}

// FromMsgpack transcodes msgpack bytes to a value.
func FromMsgpack(data []byte) (*ubjson.Value, error) {
	var x any
	if err := msgpack.Unmarshal(data, &x); err != nil {
		return nil, err
	}
	return ubjson.FromInterface(x)
}
