package ubjson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts between JSON documents and Values. The mapping is the obvious
// one except:
//   - JSON numbers without a fractional part become int, others float64
//   - buffers become base64 strings on the way out (JSON has no bytes)
//   - float32 widens to a JSON number
//
// Object entry order follows the JSON document on the way in and
// insertion order on the way out.

// FromJSON converts a JSON document to a Value.
func FromJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := fromJSONToken(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func fromJSONToken(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("ubjson: json parse: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil

	case bool:
		return Bool(t), nil

	case json.Number:
		if n, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return Int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("ubjson: json number %q: %w", t, err)
		}
		return Float64(f), nil

	case string:
		return String(t), nil

	case json.Delim:
		switch t {
		case '[':
			var elems []*Value
			for dec.More() {
				elem, err := fromJSONToken(dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("ubjson: json parse: %w", err)
			}
			return Array(elems...), nil

		case '{':
			var entries []Entry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("ubjson: json parse: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("ubjson: json object key %v is not a string", keyTok)
				}
				val, err := fromJSONToken(dec)
				if err != nil {
					return nil, err
				}
				entries = append(entries, Entry{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("ubjson: json parse: %w", err)
			}
			return Object(entries...), nil
		}
		return nil, fmt.Errorf("ubjson: unexpected json delimiter %v", t)

	default:
		return nil, fmt.Errorf("ubjson: unexpected json token %v", tok)
	}
}

// ToJSON converts a Value to a JSON document.
func ToJSON(v *Value) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalJSON implements json.Marshaler with object entries in insertion
// order. Buffers are base64-encoded.
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindNull:
		return []byte("null"), nil

	case KindBool:
		return []byte(strconv.FormatBool(v.boolVal)), nil

	case KindInt:
		return []byte(strconv.FormatInt(v.intVal, 10)), nil

	case KindFloat32:
		return json.Marshal(v.f32Val)

	case KindFloat64:
		return json.Marshal(v.f64Val)

	case KindString:
		return json.Marshal(v.strVal)

	case KindBuffer:
		return json.Marshal(base64.StdEncoding.EncodeToString(v.bufVal))

	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range v.arrVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := elem.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil

	case KindObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, entry := range v.objVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(entry.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			b, err := entry.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("ubjson: cannot marshal kind %s", v.Kind())
	}
}
