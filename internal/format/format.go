package format

import (
	"strconv"
	"strings"
)

// Format renders v at the given nesting depth. Depth is 0 for a value passed
// directly to the console and grows by one per container level.
func Format(v Value, depth int) string {
	var b strings.Builder
	write(&b, v, depth)
	return b.String()
}

// Line renders console arguments: each one at depth 0, joined by a single space
func Line(args ...Value) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		write(&b, arg, 0)
	}
	return b.String()
}

func write(b *strings.Builder, v Value, depth int) {
	switch v.Kind {
	case KindString:
		if depth > 0 {
			b.WriteByte('\'')
			b.WriteString(v.Text)
			b.WriteByte('\'')
			return
		}
		b.WriteString(v.Text)

	case KindSequence:
		b.WriteByte('[')
		writeItems(b, v.Items, depth+1)
		b.WriteByte(']')

	case KindBuffer:
		b.WriteString(v.Text)
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(len(v.Items)))
		b.WriteString(") [")
		writeItems(b, v.Items, depth+1)
		b.WriteByte(']')

	case KindMapping:
		if len(v.Fields) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{ ")
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Key)
			b.WriteString(": ")
			write(b, f.Value, depth+1)
		}
		b.WriteString(" }")

	case KindSet:
		if len(v.Items) == 0 {
			b.WriteString("Set {}")
			return
		}
		b.WriteString("Set { ")
		writeItems(b, v.Items, depth+1)
		b.WriteString(" }")

	case KindMap:
		if len(v.Entries) == 0 {
			b.WriteString("Map {}")
			return
		}
		b.WriteString("Map { ")
		for i, e := range v.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.Key)
			b.WriteString(" => ")
			write(b, e.Value, depth+1)
		}
		b.WriteString(" }")

	case KindCircular:
		b.WriteString("[Circular]")

	default:
		b.WriteString(v.Text)
	}
}

func writeItems(b *strings.Builder, items []Value, depth int) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		write(b, item, depth)
	}
}
