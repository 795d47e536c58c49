package ubjson

import (
	"strconv"
	"strings"
)

// Render returns an indented textual rendering of the value graph for
// diagnostics and test comparison. It is not a serialization format and
// cannot be parsed back: string and buffer payloads are written raw,
// without escaping, so binary buffer content may render unprintably.
func Render(v *Value) string {
	return v.Render(0)
}

// Render renders the value starting at the given indent level. Two
// spaces per nesting level; every value, the outermost included, is
// followed by a newline.
func (v *Value) Render(indent int) string {
	r := &renderer{}
	r.render(v, indent, true)
	return r.sb.String()
}

type renderer struct {
	sb strings.Builder
}

// render writes one value and its trailing newline. lead controls the
// leading indent: object entries print their key first, so the value
// continues on the same line.
func (r *renderer) render(v *Value, depth int, lead bool) {
	if lead {
		r.writeIndent(depth)
	}

	switch v.Kind() {
	case KindNull:
		r.sb.WriteString("<null>")

	case KindBool:
		if v.boolVal {
			r.sb.WriteString("true")
		} else {
			r.sb.WriteString("false")
		}

	case KindInt:
		r.sb.WriteString(strconv.FormatInt(v.intVal, 10))

	case KindFloat32:
		r.sb.WriteString(strconv.FormatFloat(float64(v.f32Val), 'g', -1, 32))

	case KindFloat64:
		r.sb.WriteString(strconv.FormatFloat(v.f64Val, 'g', -1, 64))

	case KindString:
		r.sb.WriteString(v.strVal)

	case KindBuffer:
		r.sb.Write(v.bufVal)

	case KindArray:
		r.sb.WriteString("[\n")
		for _, elem := range v.arrVal {
			r.render(elem, depth+1, true)
		}
		r.writeIndent(depth)
		r.sb.WriteString("]")

	case KindObject:
		r.sb.WriteString("{\n")
		for _, entry := range v.objVal {
			r.writeIndent(depth + 1)
			r.sb.WriteString(entry.Key)
			r.sb.WriteString(": ")
			r.render(entry.Value, depth+1, false)
		}
		r.writeIndent(depth)
		r.sb.WriteString("}")
	}

	r.sb.WriteString("\n")
}

func (r *renderer) writeIndent(depth int) {
	for i := 0; i < depth; i++ {
		r.sb.WriteString("  ")
	}
}
