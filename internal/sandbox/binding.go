package sandbox

import (
	"strings"

	"github.com/dop251/goja"
)

// domBinding maps DOM elements to their JavaScript proxies. Proxies are
// created once per element so identity comparisons hold in scripts.
type domBinding struct {
	vm       *goja.Runtime
	dom      *DOM
	proxies  map[*Element]*goja.Object
	elements map[*goja.Object]*Element
}

// injectDOM injects the document proxy into the runtime
func (r *Runtime) injectDOM(dom *DOM) error {
	b := &domBinding{
		vm:       r.vm,
		dom:      dom,
		proxies:  make(map[*Element]*goja.Object),
		elements: make(map[*goja.Object]*Element),
	}

	document := r.vm.NewObject()
	if err := document.Set("body", b.proxy(dom.Body())); err != nil {
		return err
	}

	methods := map[string]func(goja.FunctionCall) goja.Value{
		"createElement": func(call goja.FunctionCall) goja.Value {
			return b.proxy(dom.CreateElement(call.Argument(0).String()))
		},
		"getElementById": func(call goja.FunctionCall) goja.Value {
			return b.first(dom.Query("#" + call.Argument(0).String()))
		},
		"querySelector": func(call goja.FunctionCall) goja.Value {
			return b.first(dom.Query(call.Argument(0).String()))
		},
		"querySelectorAll": func(call goja.FunctionCall) goja.Value {
			return b.all(dom.Query(call.Argument(0).String()))
		},
		"getElementsByClassName": func(call goja.FunctionCall) goja.Value {
			return b.all(dom.Query("." + call.Argument(0).String()))
		},
		"getElementsByTagName": func(call goja.FunctionCall) goja.Value {
			return b.all(dom.Query(call.Argument(0).String()))
		},
	}
	for name, fn := range methods {
		if err := document.Set(name, fn); err != nil {
			return err
		}
	}

	return r.vm.Set("document", document)
}

func (b *domBinding) first(elems []*Element) goja.Value {
	if len(elems) == 0 {
		return goja.Null()
	}
	return b.proxy(elems[0])
}

func (b *domBinding) all(elems []*Element) goja.Value {
	items := make([]interface{}, len(elems))
	for i, elem := range elems {
		items[i] = b.proxy(elem)
	}
	return b.vm.NewArray(items...)
}

// proxy returns the JavaScript object standing for e
func (b *domBinding) proxy(e *Element) *goja.Object {
	if obj, ok := b.proxies[e]; ok {
		return obj
	}

	obj := b.vm.NewObject()
	b.proxies[e] = obj
	b.elements[obj] = e

	b.accessor(obj, "tagName", func() goja.Value {
		return b.vm.ToValue(strings.ToUpper(e.TagName))
	}, nil)
	b.accessor(obj, "textContent", func() goja.Value {
		return b.vm.ToValue(e.Text())
	}, func(v goja.Value) {
		b.dom.SetText(e, textOf(v))
	})
	b.accessor(obj, "id", func() goja.Value {
		return b.vm.ToValue(e.ID)
	}, func(v goja.Value) {
		b.dom.SetAttribute(e, "id", textOf(v))
	})
	b.accessor(obj, "className", func() goja.Value {
		return b.vm.ToValue(e.ClassName)
	}, func(v goja.Value) {
		b.dom.SetAttribute(e, "class", textOf(v))
	})
	b.accessor(obj, "parentNode", func() goja.Value {
		if e.Parent == nil || e.Parent.TagName == "document" {
			return goja.Null()
		}
		return b.proxy(e.Parent)
	}, nil)

	_ = obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		arg := call.Argument(0)
		child, ok := b.unwrap(arg)
		if !ok {
			panic(b.vm.NewTypeError("appendChild: parameter 1 is not an element"))
		}
		b.dom.Append(e, child)
		return arg
	})
	_ = obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		value, ok := e.Attributes[call.Argument(0).String()]
		if !ok {
			return goja.Null()
		}
		return b.vm.ToValue(value)
	})
	_ = obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		b.dom.SetAttribute(e, call.Argument(0).String(), textOf(call.Argument(1)))
		return goja.Undefined()
	})

	return obj
}

func (b *domBinding) unwrap(v goja.Value) (*Element, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	e, ok := b.elements[obj]
	return e, ok
}

func (b *domBinding) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	})

	var setter goja.Value
	if set != nil {
		setter = b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			set(call.Argument(0))
			return goja.Undefined()
		})
	}

	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

// textOf converts a value assigned to a text property; null clears the text
func textOf(v goja.Value) string {
	if goja.IsNull(v) {
		return ""
	}
	return v.String()
}
