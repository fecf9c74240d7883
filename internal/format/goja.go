package format

import (
	"strconv"

	"github.com/dop251/goja"
)

// BufferKinds lists the typed array constructors rendered as fixed-width buffers
var BufferKinds = []string{
	"Int8Array",
	"Uint8Array",
	"Uint8ClampedArray",
	"Int16Array",
	"Uint16Array",
	"Int32Array",
	"Uint32Array",
	"Float32Array",
	"Float64Array",
	"BigInt64Array",
	"BigUint64Array",
}

// Classifier resolves the display kind of live goja values.
//
// Constructors are captured when the classifier is created, so a script that
// later reassigns globals such as Map cannot change how values are rendered.
type Classifier struct {
	vm      *goja.Runtime
	array   goja.Value
	object  goja.Value
	set     goja.Value
	mapping goja.Value
	buffers map[string]goja.Value
	from    goja.Callable
}

// NewClassifier captures the built-in constructors of vm
func NewClassifier(vm *goja.Runtime) *Classifier {
	c := &Classifier{
		vm:      vm,
		array:   vm.Get("Array"),
		object:  vm.Get("Object"),
		set:     vm.Get("Set"),
		mapping: vm.Get("Map"),
		buffers: make(map[string]goja.Value, len(BufferKinds)),
	}
	for _, name := range BufferKinds {
		if ctor := vm.Get(name); ctor != nil && !goja.IsUndefined(ctor) {
			c.buffers[name] = ctor
		}
	}
	if c.array != nil {
		if from, ok := goja.AssertFunction(c.array.ToObject(vm).Get("from")); ok {
			c.from = from
		}
	}
	return c
}

// FromGoja converts a live value of vm into a formatter Value
func FromGoja(vm *goja.Runtime, v goja.Value) Value {
	return NewClassifier(vm).Value(v)
}

// Classify returns the display kind of v. For KindBuffer the element kind
// name is returned as well.
func (c *Classifier) Classify(v goja.Value) (Kind, string) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return KindOther, ""
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		if _, isString := v.Export().(string); isString {
			return KindString, ""
		}
		return KindOther, ""
	}

	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return KindOther, ""
	}

	ctor := c.constructorOf(obj)
	if ctor == nil {
		return KindOther, ""
	}

	switch {
	case ctor.SameAs(c.array):
		return KindSequence, ""
	case ctor.SameAs(c.object):
		return KindMapping, ""
	case ctor.SameAs(c.set):
		return KindSet, ""
	case ctor.SameAs(c.mapping):
		return KindMap, ""
	}

	for name, buffer := range c.buffers {
		if ctor.SameAs(buffer) {
			return KindBuffer, name
		}
	}
	return KindOther, ""
}

// Elements returns the iteration order of a sequence, buffer or set, and the
// [key, value] pairs of a map
func (c *Classifier) Elements(obj *goja.Object) []goja.Value {
	if c.from == nil {
		return nil
	}
	res, err := c.from(goja.Undefined(), obj)
	if err != nil {
		panic(err)
	}
	return c.indexed(res.ToObject(c.vm))
}

// Text returns the default textual form of v, falling back to the object tag
// when the value cannot be converted to a string
func (c *Classifier) Text(v goja.Value) (text string) {
	if v == nil {
		return "undefined"
	}
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case *goja.Exception, goja.Value:
				text = "[object Object]"
			default:
				panic(r)
			}
		}
	}()
	return v.String()
}

// Value converts v, replacing self-references with KindCircular
func (c *Classifier) Value(v goja.Value) Value {
	return c.convert(v, nil)
}

func (c *Classifier) convert(v goja.Value, seen []*goja.Object) Value {
	kind, name := c.Classify(v)
	switch kind {
	case KindString:
		return String(v.String())
	case KindOther:
		return Raw(c.Text(v))
	}

	obj := v.(*goja.Object)
	for _, s := range seen {
		if s.SameAs(obj) {
			return Circular()
		}
	}
	seen = append(seen[:len(seen):len(seen)], obj)

	switch kind {
	case KindSequence, KindSet, KindBuffer:
		elems := c.Elements(obj)
		items := make([]Value, len(elems))
		for i, elem := range elems {
			items[i] = c.convert(elem, seen)
		}
		switch kind {
		case KindSet:
			return Set(items...)
		case KindBuffer:
			return Buffer(name, items...)
		}
		return Sequence(items...)

	case KindMapping:
		keys := obj.Keys()
		fields := make([]Field, len(keys))
		for i, key := range keys {
			fields[i] = Field{Key: key, Value: c.convert(obj.Get(key), seen)}
		}
		return Mapping(fields...)

	default:
		pairs := c.Elements(obj)
		entries := make([]Entry, 0, len(pairs))
		for _, pair := range pairs {
			kv := c.indexed(pair.ToObject(c.vm))
			if len(kv) < 2 {
				continue
			}
			entries = append(entries, Entry{Key: c.Text(kv[0]), Value: c.convert(kv[1], seen)})
		}
		return Map(entries...)
	}
}

func (c *Classifier) constructorOf(obj *goja.Object) (ctor goja.Value) {
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case *goja.Exception, goja.Value:
				ctor = nil
			default:
				panic(r)
			}
		}
	}()
	ctor = obj.Get("constructor")
	if ctor == nil || goja.IsUndefined(ctor) || goja.IsNull(ctor) {
		return nil
	}
	return ctor
}

func (c *Classifier) indexed(arr *goja.Object) []goja.Value {
	length := arr.Get("length")
	if length == nil {
		return nil
	}
	n := length.ToInteger()
	out := make([]goja.Value, 0, n)
	for i := int64(0); i < n; i++ {
		out = append(out, arr.Get(strconv.FormatInt(i, 10)))
	}
	return out
}
