package format

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluate(t *testing.T, vm *goja.Runtime, src string) goja.Value {
	t.Helper()
	v, err := vm.RunString(src)
	require.NoError(t, err)
	return v
}

func TestFromGoja(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"string", `'hello'`, "hello"},
		{"number", `42`, "42"},
		{"fraction", `0.5`, "0.5"},
		{"null", `null`, "null"},
		{"undefined", `undefined`, "undefined"},
		{"array", `[1, 2, 3]`, "[1, 2, 3]"},
		{"empty array", `[]`, "[]"},
		{"nested string", `['hello']`, "['hello']"},
		{"object", `({a: 1, b: 2})`, "{ a: 1, b: 2 }"},
		{"set order", `new Set([3, 1, 2])`, "Set { 3, 1, 2 }"},
		{"map", `new Map([['a', 1], ['b', [2]]])`, "Map { a => 1, b => [2] }"},
		{"typed array", `new Uint8Array([1, 2, 3])`, "Uint8Array(3) [1, 2, 3]"},
		{"float array", `new Float32Array([0.5])`, "Float32Array(1) [0.5]"},
		{"error", `new Error('boom')`, "Error: boom"},
		{"null prototype", `Object.create(null)`, "[object Object]"},
		{"self reference", `(() => { const a = [1]; a.push(a); return a })()`, "[1, [Circular]]"},
		{
			"shared reference is not circular",
			`(() => { const x = {k: 1}; return [x, x] })()`,
			"[{ k: 1 }, { k: 1 }]",
		},
		{"class instance", `new (class Point { toString() { return 'Point' } })()`, "Point"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := goja.New()
			v := evaluate(t, vm, tt.script)
			assert.Equal(t, tt.want, Format(FromGoja(vm, v), 0))
		})
	}
}

func TestClassifierIgnoresReassignedGlobals(t *testing.T) {
	vm := goja.New()
	c := NewClassifier(vm)

	v := evaluate(t, vm, `const s = new Set([1]); Set = function Fake() {}; s`)
	kind, _ := c.Classify(v)
	assert.Equal(t, KindSet, kind)
}

func TestClassifyBufferName(t *testing.T) {
	vm := goja.New()
	c := NewClassifier(vm)

	kind, name := c.Classify(evaluate(t, vm, `new Int32Array(2)`))
	assert.Equal(t, KindBuffer, kind)
	assert.Equal(t, "Int32Array", name)
}
