package ubjson

import (
	"fmt"
	"math"
	"sort"
)

// Interface returns the value as plain Go data: nil, bool, int64,
// float32, float64, string, []byte, []any, or map[string]any. Object
// entry order is necessarily lost in the map form; callers that need
// order should walk AsObject instead. This is the hand-off point for
// transcoding to other serialization libraries.
func (v *Value) Interface() any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.boolVal
	case KindInt:
		return v.intVal
	case KindFloat32:
		return v.f32Val
	case KindFloat64:
		return v.f64Val
	case KindString:
		return v.strVal
	case KindBuffer:
		b := make([]byte, len(v.bufVal))
		copy(b, v.bufVal)
		return b
	case KindArray:
		out := make([]any, len(v.arrVal))
		for i, elem := range v.arrVal {
			out[i] = elem.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.objVal))
		for _, entry := range v.objVal {
			out[entry.Key] = entry.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromInterface builds a Value from plain Go data, accepting the types
// Interface produces plus the wider set generic decoders hand back
// (every integer width, map[any]any with string keys). Map keys are
// sorted so the resulting object is deterministic.
func FromInterface(x any) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil

	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return nil, fmt.Errorf("ubjson: uint %d overflows int64", t)
		}
		return Int(int64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, fmt.Errorf("ubjson: uint64 %d overflows int64", t)
		}
		return Int(int64(t)), nil

	case float32:
		return Float32(t), nil
	case float64:
		return Float64(t), nil

	case string:
		return String(t), nil
	case []byte:
		return Buffer(t), nil

	case []any:
		elems := make([]*Value, len(t))
		for i, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			elems[i] = v
		}
		return Array(elems...), nil

	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(t))
		for _, k := range keys {
			v, err := FromInterface(t[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			entries = append(entries, Entry{Key: k, Value: v})
		}
		return Object(entries...), nil

	case map[any]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("ubjson: object key %v (%T) is not a string", k, k)
			}
			m[ks] = v
		}
		return FromInterface(m)

	default:
		return nil, fmt.Errorf("ubjson: unsupported type %T", x)
	}
}
