package library

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/rubico-playground/internal/format"
)

// native is the Go signature of a JavaScript function
type native = func(goja.FunctionCall) goja.Value

// halt unwinds a native function after an interrupt has been re-armed
type halt struct{}

// library holds the runtime state shared by the bound functions
type library struct {
	vm         *goja.Runtime
	classifier *format.Classifier
	setCtor    goja.Value
	mapCtor    goja.Value
	promise    *goja.Object
	promiseAll goja.Callable
}

// Instantiate builds the rubico namespace in vm
func Instantiate(vm *goja.Runtime) (goja.Value, error) {
	l := &library{
		vm:         vm,
		classifier: format.NewClassifier(vm),
		setCtor:    vm.Get("Set"),
		mapCtor:    vm.Get("Map"),
		promise:    vm.Get("Promise").ToObject(vm),
	}
	all, ok := goja.AssertFunction(l.promise.Get("all"))
	if !ok {
		return nil, errors.New("Promise.all is not a function")
	}
	l.promiseAll = all

	ns := vm.NewObject()
	for name, fn := range l.functions() {
		if err := ns.Set(name, l.native(fn)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}

	variants := map[string]map[string]native{
		"map": {
			"withIndex": l.mapWithIndex,
			"series":    l.mapping,
			"pool":      l.mapPool,
		},
		"filter": {
			"withIndex": l.filterWithIndex,
		},
	}
	for name, fns := range variants {
		owner := ns.Get(name).ToObject(vm)
		for variant, fn := range fns {
			if err := owner.Set(variant, l.native(fn)); err != nil {
				return nil, fmt.Errorf("failed to bind %s.%s: %w", name, variant, err)
			}
		}
	}

	if err := ns.Set("default", ns); err != nil {
		return nil, err
	}
	return ns, nil
}

func (l *library) functions() map[string]native {
	return map[string]native{
		"pipe":       l.pipe,
		"fork":       l.fork,
		"assign":     l.assign,
		"tap":        l.tap,
		"tryCatch":   l.tryCatch,
		"switchCase": l.switchCase,
		"map":        l.mapping,
		"filter":     l.filter,
		"reduce":     l.reduce,
		"transform":  l.transform,
		"flatMap":    l.flatMap,
		"any":        l.any,
		"all":        l.all,
		"and":        l.and,
		"or":         l.or,
		"not":        l.not,
		"eq":         l.eq,
		"gt":         l.gt,
		"lt":         l.lt,
		"gte":        l.gte,
		"lte":        l.lte,
		"get":        l.get,
		"pick":       l.pick,
		"omit":       l.omit,
	}
}

// native wraps fn so a halt raised below it returns control to the VM,
// which then raises the pending interrupt
func (l *library) native(fn native) goja.Value {
	return l.vm.ToValue(func(call goja.FunctionCall) (ret goja.Value) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(halt); ok {
					ret = goja.Undefined()
					return
				}
				panic(r)
			}
		}()
		return fn(call)
	})
}

// function asserts v is callable, throwing a TypeError in the caller otherwise
func (l *library) function(v goja.Value, owner string) goja.Callable {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		panic(l.vm.NewTypeError(fmt.Sprintf("%s: %s is not a function", owner, l.classifier.Text(v))))
	}
	return fn
}

func (l *library) functionList(v goja.Value, owner string) []goja.Callable {
	items := l.array(v, owner)
	fns := make([]goja.Callable, len(items))
	for i, item := range items {
		fns[i] = l.function(item, owner)
	}
	return fns
}

// array returns the elements of v, throwing a TypeError if v is not an array
func (l *library) array(v goja.Value, owner string) []goja.Value {
	if kind, _ := l.classifier.Classify(v); kind != format.KindSequence {
		panic(l.vm.NewTypeError(fmt.Sprintf("%s: %s is not an array", owner, l.classifier.Text(v))))
	}
	return l.classifier.Elements(v.(*goja.Object))
}

// call invokes fn, rethrowing its exception in the calling script
func (l *library) call(fn goja.Callable, args ...goja.Value) goja.Value {
	res, err := fn(goja.Undefined(), args...)
	if err != nil {
		l.throw(err)
	}
	return res
}

func (l *library) throw(err error) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		l.vm.Interrupt(interrupted.Value())
		panic(halt{})
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		panic(exception)
	}
	panic(l.vm.NewGoError(err))
}

// resolve calls v with args when it is a function and returns it otherwise
func (l *library) resolve(v goja.Value, args []goja.Value) goja.Value {
	if fn, ok := goja.AssertFunction(v); ok {
		return l.call(fn, args...)
	}
	return v
}

// thenable returns the then method of v when v is a promise or promise-like
func (l *library) thenable(v goja.Value) (goja.Callable, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	return goja.AssertFunction(obj.Get("then"))
}

// then applies next to v. A thenable v is chained instead, so next sees the
// settled value and the caller gets a promise of its result.
func (l *library) then(v goja.Value, next func(goja.Value) goja.Value) goja.Value {
	then, ok := l.thenable(v)
	if !ok {
		return next(v)
	}
	res, err := then(v, l.native(func(settled goja.FunctionCall) goja.Value {
		return next(settled.Argument(0))
	}))
	if err != nil {
		l.throw(err)
	}
	return res
}

// settle applies next to values once every thenable among them has settled.
// When none is pending next runs immediately.
func (l *library) settle(values []goja.Value, next func([]goja.Value) goja.Value) goja.Value {
	pending := false
	for _, v := range values {
		if _, ok := l.thenable(v); ok {
			pending = true
			break
		}
	}
	if !pending {
		return next(values)
	}

	all, err := l.promiseAll(l.promise, l.newArray(values))
	if err != nil {
		l.throw(err)
	}
	return l.then(all, func(settled goja.Value) goja.Value {
		return next(l.classifier.Elements(settled.(*goja.Object)))
	})
}

// copyArgs copies the arguments of a call. goja reuses the backing slice once
// the call returns.
func copyArgs(call goja.FunctionCall) []goja.Value {
	return append([]goja.Value(nil), call.Arguments...)
}

func (l *library) kind(v goja.Value) format.Kind {
	kind, _ := l.classifier.Classify(v)
	return kind
}

func isNil(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

func isFunction(v goja.Value) bool {
	_, ok := goja.AssertFunction(v)
	return ok
}

func (l *library) newArray(items []goja.Value) *goja.Object {
	values := make([]interface{}, len(items))
	for i, item := range items {
		values[i] = item
	}
	return l.vm.NewArray(values...)
}

func (l *library) newArrayValue(items []goja.Value) goja.Value {
	return l.newArray(items)
}

// newObject builds a plain object from parallel keys and values
func (l *library) newObject(keys []string, values []goja.Value) goja.Value {
	out := l.vm.NewObject()
	for i, key := range keys {
		_ = out.Set(key, values[i])
	}
	return out
}

func (l *library) newSet(items []goja.Value) goja.Value {
	set, err := l.vm.New(l.setCtor, l.newArray(items))
	if err != nil {
		l.throw(err)
	}
	return set
}

// newMap builds a Map from key/value pairs
func (l *library) newMap(keys, values []goja.Value) goja.Value {
	pairs := make([]goja.Value, len(keys))
	for i := range keys {
		pairs[i] = l.newArray([]goja.Value{keys[i], values[i]})
	}
	m, err := l.vm.New(l.mapCtor, l.newArray(pairs))
	if err != nil {
		l.throw(err)
	}
	return m
}

// entries splits a Map into its keys and values
func (l *library) entries(m *goja.Object) (keys, values []goja.Value) {
	for _, pair := range l.classifier.Elements(m) {
		kv := pair.ToObject(l.vm)
		keys = append(keys, kv.Get("0"))
		values = append(values, kv.Get("1"))
	}
	return keys, values
}

// chars splits a string into code points, the way string iteration does
func (l *library) chars(s string) []goja.Value {
	out := make([]goja.Value, 0, len(s))
	for _, r := range s {
		out = append(out, l.vm.ToValue(string(r)))
	}
	return out
}

// items returns the values a collection iterates over and whether v is a
// collection at all
func (l *library) items(v goja.Value) ([]goja.Value, bool) {
	switch l.kind(v) {
	case format.KindSequence, format.KindSet, format.KindBuffer:
		return l.classifier.Elements(v.(*goja.Object)), true
	case format.KindMap:
		_, values := l.entries(v.(*goja.Object))
		return values, true
	case format.KindMapping:
		obj := v.(*goja.Object)
		keys := obj.Keys()
		values := make([]goja.Value, len(keys))
		for i, key := range keys {
			values[i] = obj.Get(key)
		}
		return values, true
	case format.KindString:
		return l.chars(v.String()), true
	}
	return nil, false
}
