package format

// Kind identifies the display shape of a Value
type Kind int

const (
	KindOther Kind = iota
	KindString
	KindSequence
	KindBuffer
	KindMapping
	KindSet
	KindMap
	KindCircular
)

// String returns the kind name used in logs
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindBuffer:
		return "buffer"
	case KindMapping:
		return "mapping"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindCircular:
		return "circular"
	default:
		return "other"
	}
}

// Value is a formatter input.
//
// Text holds the string content for KindString, the element kind name for
// KindBuffer (e.g. "Float32Array") and the default textual form for KindOther.
type Value struct {
	Kind    Kind
	Text    string
	Items   []Value
	Fields  []Field
	Entries []Entry
}

// Field is one enumerable property of a mapping
type Field struct {
	Key   string
	Value Value
}

// Entry is one key/value pair of a map. Key is the raw textual form of the key.
type Entry struct {
	Key   string
	Value Value
}

// String creates a string value
func String(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// Number creates a numeric value rendered the way JavaScript stringifies numbers
func Number(f float64) Value {
	return Value{Kind: KindOther, Text: NumberText(f)}
}

// Bool creates a boolean value
func Bool(b bool) Value {
	if b {
		return Raw("true")
	}
	return Raw("false")
}

// Null creates the null value
func Null() Value {
	return Raw("null")
}

// Undefined creates the undefined value
func Undefined() Value {
	return Raw("undefined")
}

// Raw creates a value that renders as text at every depth
func Raw(text string) Value {
	return Value{Kind: KindOther, Text: text}
}

// Sequence creates an ordered sequence
func Sequence(items ...Value) Value {
	return Value{Kind: KindSequence, Items: items}
}

// Buffer creates a fixed-width numeric array of the named element kind
func Buffer(kind string, items ...Value) Value {
	return Value{Kind: KindBuffer, Text: kind, Items: items}
}

// Mapping creates a plain key/value object preserving field order
func Mapping(fields ...Field) Value {
	return Value{Kind: KindMapping, Fields: fields}
}

// Set creates a set-like collection in iteration order
func Set(items ...Value) Value {
	return Value{Kind: KindSet, Items: items}
}

// Map creates a map-like collection in iteration order
func Map(entries ...Entry) Value {
	return Value{Kind: KindMap, Entries: entries}
}

// Circular marks a back-reference to a container already being rendered
func Circular() Value {
	return Value{Kind: KindCircular}
}
