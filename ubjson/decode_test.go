package ubjson

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// example1 is the wire encoding of {"numbers":[1,2,3],"hello":"world"}
// using size-optimized integer markers.
var example1 = []byte{
	'{',
	'i', 7, 'n', 'u', 'm', 'b', 'e', 'r', 's',
	'[', 'i', 1, 'i', 2, 'i', 3, ']',
	'i', 5, 'h', 'e', 'l', 'l', 'o',
	'S', 'i', 5, 'w', 'o', 'r', 'l', 'd',
	'}',
}

func mustDecode(t *testing.T, data []byte) *Value {
	t.Helper()
	v, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return v
}

func TestDecode_Scalars(t *testing.T) {
	f32 := func(f float32) []byte {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(f))
		return append([]byte{'d'}, b[:]...)
	}
	f64 := func(f float64) []byte {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
		return append([]byte{'D'}, b[:]...)
	}

	tests := []struct {
		name string
		data []byte
		want *Value
	}{
		{"null", []byte{'Z'}, Null()},
		{"true", []byte{'T'}, Bool(true)},
		{"false", []byte{'F'}, Bool(false)},
		{"int8 positive", []byte{'i', 100}, Int(100)},
		{"int8 negative", []byte{'i', 0xFF}, Int(-1)},
		{"uint8", []byte{'U', 0xFF}, Int(255)},
		{"char", []byte{'C', 'a'}, Int('a')},
		{"int16", []byte{'I', 0x12, 0x34}, Int(0x1234)},
		{"int16 negative", []byte{'I', 0xFF, 0xFE}, Int(-2)},
		{"int32", []byte{'l', 0x00, 0x01, 0x00, 0x00}, Int(65536)},
		{"int64", []byte{'L', 0, 0, 0, 1, 0, 0, 0, 0}, Int(1 << 32)},
		{"float32", f32(12.34), Float32(12.34)},
		{"float64", f64(12.34), Float64(12.34)},
		{"string", []byte{'S', 'i', 3, 'f', 'o', 'o'}, String("foo")},
		{"empty string", []byte{'S', 'i', 0}, String("")},
		{"string with int16 length", append([]byte{'S', 'I', 0x00, 0x03}, "bar"...), String("bar")},
		{"high-precision number stays text", []byte{'H', 'i', 4, '3', '.', '1', '4'}, String("3.14")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustDecode(t, tt.data)
			if !got.Equal(tt.want) {
				t.Errorf("decoded %s, want %s", Render(got), Render(tt.want))
			}
		})
	}
}

func TestDecode_Example1(t *testing.T) {
	v := mustDecode(t, example1)

	if v.Kind() != KindObject || v.Len() != 2 {
		t.Fatalf("got %s with %d entries", v.Kind(), v.Len())
	}

	nums, err := v.Get("numbers")
	if err != nil {
		t.Fatalf("Get(numbers): %v", err)
	}
	elems, err := nums.AsArray()
	if err != nil {
		t.Fatalf("AsArray: %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		if n, _ := elems[i].AsInt(); n != want {
			t.Errorf("numbers[%d] = %d, want %d", i, n, want)
		}
	}

	if s, err := v.GetString("hello"); err != nil || s != "world" {
		t.Errorf("hello = %q, %v", s, err)
	}
}

func TestDecode_Containers(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want *Value
	}{
		{"empty array", []byte{'[', ']'}, Array()},
		{"empty object", []byte{'{', '}'}, Object()},
		{"counted empty array", []byte{'[', '#', 'i', 0}, Array()},
		{
			"unbounded array",
			[]byte{'[', 'i', 1, 'T', 'Z', ']'},
			Array(Int(1), Bool(true), Null()),
		},
		{
			"counted array",
			[]byte{'[', '#', 'i', 2, 'i', 1, 'i', 2},
			Array(Int(1), Int(2)),
		},
		{
			"typed counted array",
			[]byte{'[', '$', 'i', '#', 'i', 3, 1, 2, 3},
			Array(Int(1), Int(2), Int(3)),
		},
		{
			"typed array of strings",
			[]byte{'[', '$', 'S', '#', 'i', 2, 'i', 1, 'a', 'i', 1, 'b'},
			Array(String("a"), String("b")),
		},
		{
			"typed int16 array",
			[]byte{'[', '$', 'I', '#', 'i', 2, 0x00, 0x0A, 0x00, 0x14},
			Array(Int(10), Int(20)),
		},
		{
			"byte array collapses to buffer",
			[]byte{'[', '$', 'U', '#', 'i', 3, 'b', 'a', 'r'},
			Buffer([]byte("bar")),
		},
		{
			"empty buffer",
			[]byte{'[', '$', 'U', '#', 'i', 0},
			Buffer(nil),
		},
		{
			"counted object",
			[]byte{'{', '#', 'i', 1, 'i', 1, 'a', 'i', 5},
			Object(Field("a", Int(5))),
		},
		{
			"typed counted object",
			[]byte{'{', '$', 'i', '#', 'i', 2, 'i', 1, 'a', 10, 'i', 1, 'b', 20},
			Object(Field("a", Int(10)), Field("b", Int(20))),
		},
		{
			"nested",
			[]byte{'[', '{', 'i', 1, 'k', '[', ']', '}', ']'},
			Array(Object(Field("k", Array()))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustDecode(t, tt.data)
			if !got.Equal(tt.want) {
				t.Errorf("decoded %s, want %s", Render(got), Render(tt.want))
			}
		})
	}
}

func TestDecode_TypedNullArrayConsumesNoPayload(t *testing.T) {
	// 256 nulls fit in zero payload bytes; count may legitimately
	// exceed the remaining input for payload-free element types.
	v := mustDecode(t, []byte{'[', '$', 'Z', '#', 'I', 0x01, 0x00})
	if v.Kind() != KindArray || v.Len() != 256 {
		t.Fatalf("got %s with %d elements", v.Kind(), v.Len())
	}
	if !v.arrVal[255].IsNull() {
		t.Error("elements should be null")
	}
}

func TestDecode_DuplicateKeysOverwrite(t *testing.T) {
	// A repeated key on the wire overwrites the earlier entry in place,
	// so keys stay unique and the key keeps its original position.
	data := []byte{
		'{',
		'i', 1, 'a', 'i', 1,
		'i', 1, 'b', 'i', 5,
		'i', 1, 'a', 'i', 2,
		'}',
	}
	v := mustDecode(t, data)
	if v.Len() != 2 {
		t.Fatalf("got %d entries, want 2", v.Len())
	}
	if !v.Equal(Object(Field("a", Int(2)), Field("b", Int(5)))) {
		t.Errorf("decoded %s", Render(v))
	}
	entries, _ := v.AsObject()
	if entries[0].Key != "a" || entries[1].Key != "b" {
		t.Errorf("entry order %q, %q; want a, b", entries[0].Key, entries[1].Key)
	}

	// Counted form behaves the same.
	counted := []byte{
		'{', '#', 'i', 2,
		'i', 1, 'a', 'i', 1,
		'i', 1, 'a', 'i', 2,
	}
	v = mustDecode(t, counted)
	if v.Len() != 1 {
		t.Fatalf("got %d entries, want 1", v.Len())
	}
	if n, err := v.GetInt("a"); err != nil || n != 2 {
		t.Errorf("Get(a) = %d, %v; want 2", n, err)
	}
}

func TestDecode_CountedArrayStopsExactly(t *testing.T) {
	// No closing marker follows a counted container; trailing bytes
	// belong to whatever comes next and are left unread.
	data := []byte{'[', '#', 'i', 2, 'i', 1, 'i', 2, ']', 'Q', 'Q'}
	v := mustDecode(t, data)
	if !v.Equal(Array(Int(1), Int(2))) {
		t.Errorf("decoded %s", Render(v))
	}
}

func TestDecode_NoopTransparency(t *testing.T) {
	// N filler at every marker boundary of example1 must not change
	// the decoded result.
	noisy := []byte{
		'N', '{',
		'N', 'i', 7, 'n', 'u', 'm', 'b', 'e', 'r', 's',
		'N', '[', 'N', 'i', 1, 'N', 'i', 2, 'N', 'i', 3, 'N', ']',
		'N', 'i', 5, 'h', 'e', 'l', 'l', 'o',
		'N', 'S', 'N', 'i', 5, 'w', 'o', 'r', 'l', 'd',
		'N', '}',
	}

	want := mustDecode(t, example1)
	got := mustDecode(t, noisy)
	if !got.Equal(want) {
		t.Errorf("noop filler changed the result:\n%s\nvs\n%s", Render(got), Render(want))
	}

	// Filler inside container headers too.
	typed := []byte{'[', 'N', '$', 'N', 'U', 'N', '#', 'N', 'i', 2, 0xAB, 0xCD}
	v := mustDecode(t, typed)
	if !v.Equal(Buffer([]byte{0xAB, 0xCD})) {
		t.Errorf("decoded %s", Render(v))
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty input", nil, ErrUnexpectedEOF},
		{"unknown marker", []byte{'Q'}, ErrUnexpectedSymbol},
		{"unknown marker in array", []byte{'[', 'Q', ']'}, ErrUnexpectedSymbol},
		{"truncated int16", []byte{'I', 0x01}, ErrUnexpectedEOF},
		{"truncated int64", []byte{'L', 0, 0, 0}, ErrUnexpectedEOF},
		{"truncated float", []byte{'D', 0, 0}, ErrUnexpectedEOF},
		{"truncated string payload", []byte{'S', 'i', 5, 'a', 'b'}, ErrUnexpectedEOF},
		{"string with bool length", []byte{'S', 'T', 'a'}, ErrUnexpectedSymbol},
		{"negative string length", []byte{'S', 'i', 0xFF}, ErrUnexpectedSymbol},
		{"unterminated array", []byte{'[', 'i', 1}, ErrUnexpectedEOF},
		{"unterminated object", []byte{'{', 'i', 1, 'a', 'T'}, ErrUnexpectedEOF},
		{"type without count", []byte{'[', '$', 'l', 'i', 5}, ErrMissingCount},
		{"type without count in object", []byte{'{', '$', 'i', 'i', 1, 'a'}, ErrMissingCount},
		{"type at end of input", []byte{'[', '$', 'U'}, ErrUnexpectedEOF},
		{"buffer count too large", []byte{'[', '$', 'U', '#', 'i', 10, 1, 2, 3}, ErrCountTooLarge},
		{"array count too large", []byte{'[', '#', 'L', 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, ErrCountTooLarge},
		{"object count too large", []byte{'{', '#', 'i', 100, 'i', 1, 'a', 'Z'}, ErrCountTooLarge},
		{"negative count", []byte{'[', '#', 'i', 0xFE}, ErrUnexpectedSymbol},
		{"huge payload-free count", []byte{'[', '$', 'Z', '#', 'L', 0x40, 0, 0, 0, 0, 0, 0, 0}, ErrCountTooLarge},
		{"huge payload-free bool count", []byte{'[', '$', 'T', '#', 'L', 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, ErrCountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_ErrorCarriesOffset(t *testing.T) {
	_, err := Decode([]byte{'[', 'i', 1, 'Q'})

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error is %T, want *DecodeError", err)
	}
	if de.Offset != 3 {
		t.Errorf("Offset = %d, want 3", de.Offset)
	}
	if de.Marker != 'Q' {
		t.Errorf("Marker = %q, want 'Q'", de.Marker)
	}
}

func TestDecode_DepthLimit(t *testing.T) {
	deep := bytes.Repeat([]byte{'['}, DefaultMaxDepth+1)
	if _, err := Decode(deep); !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("deep nesting: got %v, want ErrDepthExceeded", err)
	}

	// Configurable limit.
	data := []byte{'[', '[', '[', ']', ']', ']'}
	if _, err := DecodeWithOptions(data, Options{MaxDepth: 2}); !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("MaxDepth 2: got %v, want ErrDepthExceeded", err)
	}
	if _, err := DecodeWithOptions(data, Options{MaxDepth: 3}); err != nil {
		t.Errorf("MaxDepth 3: %v", err)
	}
}

func TestDecode_BufferIndistinguishableFromConstructed(t *testing.T) {
	decoded := mustDecode(t, []byte{'[', '$', 'U', '#', 'i', 3, 1, 2, 3})
	constructed := Buffer([]byte{1, 2, 3})

	if !decoded.Equal(constructed) {
		t.Error("decoded buffer differs from directly constructed buffer")
	}
	if !bytes.Equal(decoded.Encode(), constructed.Encode()) {
		t.Error("encodings differ")
	}
}

func TestDecode_CopiesOutOfInput(t *testing.T) {
	data := []byte{'S', 'i', 2, 'h', 'i'}
	v := mustDecode(t, data)
	data[3] = 'X'
	if s, _ := v.AsString(); s != "hi" {
		t.Errorf("decoded string aliases input: %q", s)
	}

	data = []byte{'[', '$', 'U', '#', 'i', 2, 1, 2}
	v = mustDecode(t, data)
	data[6] = 99
	b, _ := v.AsBuffer()
	if b[0] != 1 {
		t.Errorf("decoded buffer aliases input: %v", b)
	}
}
