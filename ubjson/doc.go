// Package ubjson implements UBJSON (Universal Binary JSON), a typed,
// self-describing binary encoding of JSON-like values.
//
// The package is built around three pieces:
//   - Value: a closed tagged union covering everything the format can
//     express (null, bool, int, float32, float64, string, buffer, array,
//     object)
//   - Decode: a recursive-descent reader turning a fully-buffered byte
//     slice into a Value
//   - Value.Encode: a canonical writer turning a Value back into bytes
//
// # Data Model
//
// Scalars: null, bool, int (all wire widths widen to int64), float32,
// float64. Strings are UTF-8 text by convention; buffers are opaque bytes.
// Containers: array (ordered) and object (string-keyed, unique keys,
// insertion order preserved).
//
// # Wire Format
//
// Every token starts with a single marker byte:
//
//	Z null    T true   F false
//	i int8    U uint8  C char   I int16   l int32   L int64
//	d float32 D float64
//	S string  H high-precision number (kept as string)
//	[ ] array { } object
//	$ container element type   # container element count
//	N no-op filler, transparent wherever a marker is expected
//
// Strings carry a length (itself an integer token) followed by raw bytes.
// Containers may declare a homogeneous element type with $ and an element
// count with #; a declared type requires a declared count. An array
// declared as [$U#<n> collapses into a single buffer of n raw bytes.
//
// # Canonical Encoding
//
// Value.Encode deliberately drops the wire format's size optimizations in
// favor of a single unambiguous form: integers and lengths always use the
// widest L marker, arrays are always emitted in the generic per-element
// form, and buffers are always emitted in the optimized [$U#<n> form.
// decode(encode(v)) is structurally equal to v for every well-formed value.
//
// # Interop
//
// FromJSON/ToJSON bridge to JSON, and the interop subpackage transcodes
// values to CBOR and msgpack. Value.Render produces an indented textual
// dump for diagnostics.
package ubjson
