package library

import (
	"math"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/rubico-playground/internal/format"
)

// any reports whether predicate holds for some item of the collection
func (l *library) any(call goja.FunctionCall) goja.Value {
	predicate := l.function(call.Argument(0), "any")
	return l.native(func(inner goja.FunctionCall) goja.Value {
		items, ok := l.items(inner.Argument(0))
		if !ok {
			items = []goja.Value{inner.Argument(0)}
		}
		for _, item := range items {
			if l.call(predicate, item).ToBoolean() {
				return l.vm.ToValue(true)
			}
		}
		return l.vm.ToValue(false)
	})
}

// all reports whether predicate holds for every item of the collection
func (l *library) all(call goja.FunctionCall) goja.Value {
	predicate := l.function(call.Argument(0), "all")
	return l.native(func(inner goja.FunctionCall) goja.Value {
		items, ok := l.items(inner.Argument(0))
		if !ok {
			items = []goja.Value{inner.Argument(0)}
		}
		for _, item := range items {
			if !l.call(predicate, item).ToBoolean() {
				return l.vm.ToValue(false)
			}
		}
		return l.vm.ToValue(true)
	})
}

// predicates accepts and([f, g]) as well as and(f, g)
func (l *library) predicates(call goja.FunctionCall) []goja.Value {
	if len(call.Arguments) == 1 && l.kind(call.Argument(0)) == format.KindSequence {
		return l.classifier.Elements(call.Argument(0).(*goja.Object))
	}
	return copyArgs(call)
}

// and holds when every predicate holds, evaluated left to right
func (l *library) and(call goja.FunctionCall) goja.Value {
	preds := l.predicates(call)
	return l.native(func(inner goja.FunctionCall) goja.Value {
		for _, pred := range preds {
			if !l.resolve(pred, inner.Arguments).ToBoolean() {
				return l.vm.ToValue(false)
			}
		}
		return l.vm.ToValue(true)
	})
}

// or holds when some predicate holds, evaluated left to right
func (l *library) or(call goja.FunctionCall) goja.Value {
	preds := l.predicates(call)
	return l.native(func(inner goja.FunctionCall) goja.Value {
		for _, pred := range preds {
			if l.resolve(pred, inner.Arguments).ToBoolean() {
				return l.vm.ToValue(true)
			}
		}
		return l.vm.ToValue(false)
	})
}

// not negates a predicate; a non-function value is negated immediately
func (l *library) not(call goja.FunctionCall) goja.Value {
	pred := call.Argument(0)
	fn, ok := goja.AssertFunction(pred)
	if !ok {
		return l.vm.ToValue(!pred.ToBoolean())
	}
	return l.native(func(inner goja.FunctionCall) goja.Value {
		return l.vm.ToValue(!l.call(fn, inner.Arguments...).ToBoolean())
	})
}

// comparison builds eq, gt, lt, gte and lte. Each side is either a value or a
// function of the arguments.
func (l *library) comparison(call goja.FunctionCall, cmp func(a, b goja.Value) bool) goja.Value {
	left, right := call.Argument(0), call.Argument(1)
	return l.native(func(inner goja.FunctionCall) goja.Value {
		a := l.resolve(left, inner.Arguments)
		b := l.resolve(right, inner.Arguments)
		return l.vm.ToValue(cmp(a, b))
	})
}

func (l *library) eq(call goja.FunctionCall) goja.Value {
	return l.comparison(call, func(a, b goja.Value) bool {
		return a.StrictEquals(b)
	})
}

func (l *library) gt(call goja.FunctionCall) goja.Value {
	return l.comparison(call, func(a, b goja.Value) bool {
		c, ok := compare(a, b)
		return ok && c > 0
	})
}

func (l *library) lt(call goja.FunctionCall) goja.Value {
	return l.comparison(call, func(a, b goja.Value) bool {
		c, ok := compare(a, b)
		return ok && c < 0
	})
}

func (l *library) gte(call goja.FunctionCall) goja.Value {
	return l.comparison(call, func(a, b goja.Value) bool {
		c, ok := compare(a, b)
		return ok && c >= 0
	})
}

func (l *library) lte(call goja.FunctionCall) goja.Value {
	return l.comparison(call, func(a, b goja.Value) bool {
		c, ok := compare(a, b)
		return ok && c <= 0
	})
}

// compare orders a and b like the relational operators: two strings compare
// by code unit, anything else numerically. ok is false when either side is
// NaN.
func compare(a, b goja.Value) (int, bool) {
	sa, aString := a.Export().(string)
	sb, bString := b.Export().(string)
	if aString && bString {
		switch {
		case sa < sb:
			return -1, true
		case sa > sb:
			return 1, true
		}
		return 0, true
	}

	fa, fb := a.ToFloat(), b.ToFloat()
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, false
	}
	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	}
	return 0, true
}
