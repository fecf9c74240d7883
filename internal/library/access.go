package library

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/rubico-playground/internal/format"
)

// get reads a property path such as "a.b[0].c" or ["a", "b", 0]. A missing
// value yields the default, which is called with the object when it is a
// function.
func (l *library) get(call goja.FunctionCall) goja.Value {
	path := l.path(call.Argument(0))
	fallback := call.Argument(1)

	return l.native(func(inner goja.FunctionCall) goja.Value {
		value := inner.Argument(0)
		cur := value
		for _, key := range path {
			if isNil(cur) {
				cur = goja.Undefined()
				break
			}
			cur = cur.ToObject(l.vm).Get(key)
		}
		if cur == nil || goja.IsUndefined(cur) {
			return l.resolve(fallback, []goja.Value{value})
		}
		return cur
	})
}

func (l *library) path(v goja.Value) []string {
	if l.kind(v) == format.KindSequence {
		items := l.classifier.Elements(v.(*goja.Object))
		keys := make([]string, len(items))
		for i, item := range items {
			keys[i] = item.String()
		}
		return keys
	}
	return strings.FieldsFunc(v.String(), func(r rune) bool {
		return r == '.' || r == '[' || r == ']'
	})
}

// pick copies the listed keys that are defined on the object
func (l *library) pick(call goja.FunctionCall) goja.Value {
	keys := l.path(call.Argument(0))
	if l.kind(call.Argument(0)) != format.KindSequence {
		keys = []string{call.Argument(0).String()}
	}

	return l.native(func(inner goja.FunctionCall) goja.Value {
		value := inner.Argument(0)
		if isNil(value) {
			return value
		}
		src := value.ToObject(l.vm)
		out := l.vm.NewObject()
		for _, key := range keys {
			if item := src.Get(key); item != nil && !goja.IsUndefined(item) {
				_ = out.Set(key, item)
			}
		}
		return out
	})
}

// omit copies the object without the listed keys
func (l *library) omit(call goja.FunctionCall) goja.Value {
	omitted := make(map[string]bool)
	if l.kind(call.Argument(0)) == format.KindSequence {
		for _, key := range l.path(call.Argument(0)) {
			omitted[key] = true
		}
	} else {
		omitted[call.Argument(0).String()] = true
	}

	return l.native(func(inner goja.FunctionCall) goja.Value {
		value := inner.Argument(0)
		if isNil(value) {
			return value
		}
		src := value.ToObject(l.vm)
		out := l.vm.NewObject()
		for _, key := range src.Keys() {
			if !omitted[key] {
				_ = out.Set(key, src.Get(key))
			}
		}
		return out
	})
}
