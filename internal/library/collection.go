package library

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/rubico-playground/internal/format"
)

// mapping is map(mapper)
func (l *library) mapping(call goja.FunctionCall) goja.Value {
	mapper := l.function(call.Argument(0), "map")
	return l.native(func(inner goja.FunctionCall) goja.Value {
		return l.mapValue(mapper, inner.Argument(0), false)
	})
}

// mapWithIndex is map.withIndex(mapper); mapper also receives the index (or
// key) and the collection
func (l *library) mapWithIndex(call goja.FunctionCall) goja.Value {
	mapper := l.function(call.Argument(0), "map.withIndex")
	return l.native(func(inner goja.FunctionCall) goja.Value {
		return l.mapValue(mapper, inner.Argument(0), true)
	})
}

// mapPool is map.pool(concurrency, mapper). Execution is sequential, so the
// concurrency limit has no effect.
func (l *library) mapPool(call goja.FunctionCall) goja.Value {
	mapper := l.function(call.Argument(1), "map.pool")
	return l.native(func(inner goja.FunctionCall) goja.Value {
		return l.mapValue(mapper, inner.Argument(0), false)
	})
}

func (l *library) mapValue(mapper goja.Callable, value goja.Value, withIndex bool) goja.Value {
	apply := func(item, key goja.Value) goja.Value {
		if withIndex {
			return l.call(mapper, item, key, value)
		}
		return l.call(mapper, item)
	}

	if reducer, ok := goja.AssertFunction(value); ok {
		return l.native(func(step goja.FunctionCall) goja.Value {
			return l.call(reducer, step.Argument(0), l.call(mapper, step.Argument(1)))
		})
	}
	if isNil(value) {
		return value
	}

	switch l.kind(value) {
	case format.KindSequence:
		items := l.classifier.Elements(value.(*goja.Object))
		out := make([]goja.Value, len(items))
		for i, item := range items {
			out[i] = apply(item, l.vm.ToValue(i))
		}
		return l.settle(out, l.newArrayValue)

	case format.KindString:
		chars := l.chars(value.String())
		out := make([]goja.Value, len(chars))
		for i, ch := range chars {
			out[i] = apply(ch, l.vm.ToValue(i))
		}
		return l.settle(out, func(mapped []goja.Value) goja.Value {
			var b strings.Builder
			for _, v := range mapped {
				b.WriteString(v.String())
			}
			return l.vm.ToValue(b.String())
		})

	case format.KindSet:
		items := l.classifier.Elements(value.(*goja.Object))
		out := make([]goja.Value, len(items))
		for i, item := range items {
			out[i] = apply(item, item)
		}
		return l.settle(out, l.newSet)

	case format.KindMap:
		keys, values := l.entries(value.(*goja.Object))
		out := make([]goja.Value, len(values))
		for i := range values {
			out[i] = apply(values[i], keys[i])
		}
		return l.settle(out, func(mapped []goja.Value) goja.Value {
			return l.newMap(keys, mapped)
		})

	case format.KindMapping:
		obj := value.(*goja.Object)
		keys := obj.Keys()
		out := make([]goja.Value, len(keys))
		for i, key := range keys {
			out[i] = apply(obj.Get(key), l.vm.ToValue(key))
		}
		return l.settle(out, func(mapped []goja.Value) goja.Value {
			return l.newObject(keys, mapped)
		})
	}

	return l.call(mapper, value)
}

// filter is filter(predicate)
func (l *library) filter(call goja.FunctionCall) goja.Value {
	predicate := l.function(call.Argument(0), "filter")
	return l.native(func(inner goja.FunctionCall) goja.Value {
		return l.filterValue(predicate, inner.Argument(0), false)
	})
}

// filterWithIndex is filter.withIndex(predicate)
func (l *library) filterWithIndex(call goja.FunctionCall) goja.Value {
	predicate := l.function(call.Argument(0), "filter.withIndex")
	return l.native(func(inner goja.FunctionCall) goja.Value {
		return l.filterValue(predicate, inner.Argument(0), true)
	})
}

func (l *library) filterValue(predicate goja.Callable, value goja.Value, withIndex bool) goja.Value {
	test := func(item, key goja.Value) goja.Value {
		if withIndex {
			return l.call(predicate, item, key, value)
		}
		return l.call(predicate, item)
	}

	if reducer, ok := goja.AssertFunction(value); ok {
		return l.native(func(step goja.FunctionCall) goja.Value {
			if l.call(predicate, step.Argument(1)).ToBoolean() {
				return l.call(reducer, step.Argument(0), step.Argument(1))
			}
			return step.Argument(0)
		})
	}
	if isNil(value) {
		return value
	}

	// keep tests every item and hands the survivors to build once the
	// results have settled
	keep := func(items, keys []goja.Value, build func(kept []int) goja.Value) goja.Value {
		results := make([]goja.Value, len(items))
		for i, item := range items {
			results[i] = test(item, keys[i])
		}
		return l.settle(results, func(settled []goja.Value) goja.Value {
			var kept []int
			for i, v := range settled {
				if v.ToBoolean() {
					kept = append(kept, i)
				}
			}
			return build(kept)
		})
	}
	indexes := func(n int) []goja.Value {
		out := make([]goja.Value, n)
		for i := range out {
			out[i] = l.vm.ToValue(i)
		}
		return out
	}
	pick := func(items []goja.Value, kept []int) []goja.Value {
		out := make([]goja.Value, 0, len(kept))
		for _, i := range kept {
			out = append(out, items[i])
		}
		return out
	}

	switch l.kind(value) {
	case format.KindSequence:
		items := l.classifier.Elements(value.(*goja.Object))
		return keep(items, indexes(len(items)), func(kept []int) goja.Value {
			return l.newArray(pick(items, kept))
		})

	case format.KindString:
		chars := l.chars(value.String())
		return keep(chars, indexes(len(chars)), func(kept []int) goja.Value {
			var b strings.Builder
			for _, ch := range pick(chars, kept) {
				b.WriteString(ch.String())
			}
			return l.vm.ToValue(b.String())
		})

	case format.KindSet:
		items := l.classifier.Elements(value.(*goja.Object))
		return keep(items, items, func(kept []int) goja.Value {
			return l.newSet(pick(items, kept))
		})

	case format.KindMap:
		keys, values := l.entries(value.(*goja.Object))
		return keep(values, keys, func(kept []int) goja.Value {
			return l.newMap(pick(keys, kept), pick(values, kept))
		})

	case format.KindMapping:
		obj := value.(*goja.Object)
		names := obj.Keys()
		keys := make([]goja.Value, len(names))
		values := make([]goja.Value, len(names))
		for i, name := range names {
			keys[i] = l.vm.ToValue(name)
			values[i] = obj.Get(name)
		}
		return keep(values, keys, func(kept []int) goja.Value {
			out := l.vm.NewObject()
			for _, i := range kept {
				_ = out.Set(names[i], values[i])
			}
			return out
		})
	}

	return value
}

// reduce is reduce(reducer, init). A function init is called with the
// collection; without init the first item seeds the accumulator.
func (l *library) reduce(call goja.FunctionCall) goja.Value {
	reducer := l.function(call.Argument(0), "reduce")
	init := call.Argument(1)
	seeded := len(call.Arguments) > 1 && !goja.IsUndefined(init)

	return l.native(func(inner goja.FunctionCall) goja.Value {
		collection := inner.Argument(0)
		items, ok := l.items(collection)
		if !ok {
			items = []goja.Value{collection}
		}

		start := 0
		var acc goja.Value = goja.Undefined()
		switch {
		case seeded:
			acc = l.resolve(init, []goja.Value{collection})
		case len(items) > 0:
			acc = items[0]
			start = 1
		default:
			return goja.Undefined()
		}

		return l.fold(reducer, acc, items, start, collection)
	})
}

// fold reduces items[start:] into acc, waiting on an accumulator that is a
// promise before the next step
func (l *library) fold(reducer goja.Callable, acc goja.Value, items []goja.Value, start int, collection goja.Value) goja.Value {
	for i := start; i < len(items); i++ {
		if _, ok := l.thenable(acc); ok {
			next := i
			return l.then(acc, func(v goja.Value) goja.Value {
				return l.fold(reducer, v, items, next, collection)
			})
		}
		acc = l.call(reducer, acc, items[i], l.vm.ToValue(i), collection)
	}
	return acc
}

// transform is transform(transducer, init): the collection is reduced into
// a value of the same kind as init (array, string or Set)
func (l *library) transform(call goja.FunctionCall) goja.Value {
	transducer := l.function(call.Argument(0), "transform")
	init := call.Argument(1)

	return l.native(func(inner goja.FunctionCall) goja.Value {
		collection := inner.Argument(0)
		seed := l.resolve(init, []goja.Value{collection})

		items, ok := l.items(collection)
		if !ok {
			items = []goja.Value{collection}
		}

		var collected []goja.Value
		var final native
		var acc goja.Value = seed

		switch l.kind(seed) {
		case format.KindSequence, format.KindSet:
			final = func(step goja.FunctionCall) goja.Value {
				collected = append(collected, step.Argument(1))
				return step.Argument(0)
			}
		case format.KindString:
			final = func(step goja.FunctionCall) goja.Value {
				return l.vm.ToValue(step.Argument(0).String() + step.Argument(1).String())
			}
		default:
			if isNil(seed) {
				return seed
			}
			panic(l.vm.NewTypeError("transform: init must be an array, string or Set"))
		}

		reducer := l.function(l.call(transducer, l.native(final)), "transform")
		for _, item := range items {
			acc = l.call(reducer, acc, item)
		}

		switch l.kind(seed) {
		case format.KindSequence:
			return l.newArray(append(l.classifier.Elements(seed.(*goja.Object)), collected...))
		case format.KindSet:
			return l.newSet(append(l.classifier.Elements(seed.(*goja.Object)), collected...))
		}
		return acc
	})
}

// flatMap maps each item and flattens array and Set results one level
func (l *library) flatMap(call goja.FunctionCall) goja.Value {
	mapper := l.function(call.Argument(0), "flatMap")

	return l.native(func(inner goja.FunctionCall) goja.Value {
		value := inner.Argument(0)

		if reducer, ok := goja.AssertFunction(value); ok {
			return l.native(func(step goja.FunctionCall) goja.Value {
				acc := step.Argument(0)
				for _, item := range l.flatten(l.call(mapper, step.Argument(1))) {
					acc = l.call(reducer, acc, item)
				}
				return acc
			})
		}
		if isNil(value) {
			return value
		}

		switch l.kind(value) {
		case format.KindSequence, format.KindSet:
			var out []goja.Value
			for _, item := range l.classifier.Elements(value.(*goja.Object)) {
				out = append(out, l.flatten(l.call(mapper, item))...)
			}
			if l.kind(value) == format.KindSet {
				return l.newSet(out)
			}
			return l.newArray(out)
		}

		return l.call(mapper, value)
	})
}

func (l *library) flatten(v goja.Value) []goja.Value {
	switch l.kind(v) {
	case format.KindSequence, format.KindSet:
		return l.classifier.Elements(v.(*goja.Object))
	}
	return []goja.Value{v}
}
