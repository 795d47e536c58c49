// Package interop transcodes UBJSON values to and from other
// self-describing serialization formats, for conversion tooling and for
// systems that store one format but speak another at the edge.
package interop

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/hexwave/ubjson/ubjson"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	// Deterministic encoding (RFC 8949 Core Deterministic) so equal
	// values always transcode to identical bytes.
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		panic(err)
	}
	cborEnc = em
	cborDec = dm
}

// ToCBOR transcodes a value to CBOR. Buffers become CBOR byte strings,
// integers become CBOR integers, and object entry order is replaced by
// the deterministic CBOR key order.
func ToCBOR(v *ubjson.Value) ([]byte, error) {
	return cborEnc.Marshal(v.Interface())
}

// FromCBOR transcodes CBOR bytes to a value. Object keys must be text
// strings; map ordering follows FromInterface's sorted-key rule.
func FromCBOR(data []byte) (*ubjson.Value, error) {
	var x any
	if err := cborDec.Unmarshal(data, &x); err != nil {
		return nil, err
	}
	return ubjson.FromInterface(x)
}
