package library

import (
	"github.com/dop251/goja"

	"github.com/GriffinCanCode/rubico-playground/internal/format"
)

// pipe([f, g, h])(...args) is h(g(f(...args))). A step returning a promise
// defers the rest of the chain until it settles. Given a reducer it composes
// right to left instead so transducers apply in reading order.
func (l *library) pipe(call goja.FunctionCall) goja.Value {
	fns := l.functionList(call.Argument(0), "pipe")

	return l.native(func(inner goja.FunctionCall) goja.Value {
		if len(fns) == 0 {
			return inner.Argument(0)
		}

		if isFunction(inner.Argument(0)) {
			res := l.call(fns[len(fns)-1], inner.Arguments...)
			for i := len(fns) - 2; i >= 0; i-- {
				res = l.call(fns[i], res)
			}
			return res
		}

		return l.settle(copyArgs(inner), func(args []goja.Value) goja.Value {
			return l.chain(l.call(fns[0], args...), fns[1:])
		})
	})
}

// chain feeds res through fns in order
func (l *library) chain(res goja.Value, fns []goja.Callable) goja.Value {
	for i, fn := range fns {
		if _, ok := l.thenable(res); ok {
			rest := fns[i:]
			return l.then(res, func(v goja.Value) goja.Value {
				return l.chain(v, rest)
			})
		}
		res = l.call(fn, res)
	}
	return res
}

// fork runs every function of an array or object against the same arguments
func (l *library) fork(call goja.FunctionCall) goja.Value {
	shape := call.Argument(0)
	switch l.kind(shape) {
	case format.KindSequence, format.KindMapping:
	default:
		panic(l.vm.NewTypeError("fork: expected an array or object of functions"))
	}

	return l.native(func(inner goja.FunctionCall) goja.Value {
		return l.forkValue(shape, copyArgs(inner))
	})
}

func (l *library) forkValue(shape goja.Value, args []goja.Value) goja.Value {
	switch l.kind(shape) {
	case format.KindSequence:
		items := l.classifier.Elements(shape.(*goja.Object))
		out := make([]goja.Value, len(items))
		for i, item := range items {
			out[i] = l.forkValue(item, args)
		}
		return l.settle(out, l.newArrayValue)
	case format.KindMapping:
		obj := shape.(*goja.Object)
		keys := obj.Keys()
		out := make([]goja.Value, len(keys))
		for i, key := range keys {
			out[i] = l.forkValue(obj.Get(key), args)
		}
		return l.settle(out, func(values []goja.Value) goja.Value {
			return l.newObject(keys, values)
		})
	}
	return l.resolve(shape, args)
}

// assign merges the results of fork(funcs)(value) into a copy of value
func (l *library) assign(call goja.FunctionCall) goja.Value {
	shape := call.Argument(0)
	if l.kind(shape) != format.KindMapping {
		panic(l.vm.NewTypeError("assign: expected an object of functions"))
	}

	return l.native(func(inner goja.FunctionCall) goja.Value {
		value := inner.Argument(0)
		out := l.vm.NewObject()
		if !isNil(value) {
			src := value.ToObject(l.vm)
			for _, key := range src.Keys() {
				_ = out.Set(key, src.Get(key))
			}
		}

		return l.then(l.forkValue(shape, copyArgs(inner)), func(v goja.Value) goja.Value {
			forked := v.(*goja.Object)
			for _, key := range forked.Keys() {
				_ = out.Set(key, forked.Get(key))
			}
			return out
		})
	})
}

// tap calls fn for its side effect and returns the first argument, once fn
// has settled when it returns a promise
func (l *library) tap(call goja.FunctionCall) goja.Value {
	fn := l.function(call.Argument(0), "tap")

	return l.native(func(inner goja.FunctionCall) goja.Value {
		value := inner.Argument(0)
		return l.then(l.call(fn, inner.Arguments...), func(goja.Value) goja.Value {
			return value
		})
	})
}

// tryCatch returns tryer(...args), or catcher(error, ...args) if it throws
// or returns a promise that rejects
func (l *library) tryCatch(call goja.FunctionCall) goja.Value {
	tryer := l.function(call.Argument(0), "tryCatch")
	catcher := l.function(call.Argument(1), "tryCatch")

	return l.native(func(inner goja.FunctionCall) goja.Value {
		args := copyArgs(inner)
		catch := func(reason goja.Value) goja.Value {
			return l.call(catcher, append([]goja.Value{reason}, args...)...)
		}

		res, err := tryer(goja.Undefined(), args...)
		if err != nil {
			exception, ok := err.(*goja.Exception)
			if !ok {
				l.throw(err)
			}
			return catch(exception.Value())
		}

		then, ok := l.thenable(res)
		if !ok {
			return res
		}
		caught, err := then(res, goja.Undefined(), l.native(func(rejected goja.FunctionCall) goja.Value {
			return catch(rejected.Argument(0))
		}))
		if err != nil {
			l.throw(err)
		}
		return caught
	})
}

// switchCase takes [predicate, result, ..., default] and returns the result
// paired with the first predicate that holds
func (l *library) switchCase(call goja.FunctionCall) goja.Value {
	cases := l.array(call.Argument(0), "switchCase")

	return l.native(func(inner goja.FunctionCall) goja.Value {
		args := inner.Arguments
		i := 0
		for ; i+1 < len(cases); i += 2 {
			if l.resolve(cases[i], args).ToBoolean() {
				return l.resolve(cases[i+1], args)
			}
		}
		if i < len(cases) {
			return l.resolve(cases[i], args)
		}
		return goja.Undefined()
	})
}
