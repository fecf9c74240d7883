package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		depth int
		want  string
	}{
		{"top-level string is unquoted", String("hello"), 0, "hello"},
		{"nested string is quoted", String("hello"), 1, "'hello'"},
		{"string inside sequence", Sequence(String("hello")), 0, "['hello']"},
		{"empty sequence", Sequence(), 0, "[]"},
		{"numbers", Sequence(Number(1), Number(2), Number(3)), 0, "[1, 2, 3]"},
		{"nested sequences", Sequence(Sequence(Number(1)), Sequence()), 0, "[[1], []]"},
		{
			"mapping keeps field order",
			Mapping(Field{"a", Number(1)}, Field{"b", Number(2)}),
			0,
			"{ a: 1, b: 2 }",
		},
		{"empty mapping", Mapping(), 0, "{}"},
		{
			"mapping with string values",
			Mapping(Field{"name", String("rubico")}),
			0,
			"{ name: 'rubico' }",
		},
		{"set keeps iteration order", Set(Number(3), Number(1), Number(2)), 0, "Set { 3, 1, 2 }"},
		{"empty set", Set(), 0, "Set {}"},
		{
			"map keys are raw",
			Map(Entry{"a", Number(1)}, Entry{"b", String("x")}),
			0,
			"Map { a => 1, b => 'x' }",
		},
		{"empty map", Map(), 0, "Map {}"},
		{"uint8 buffer", Buffer("Uint8Array", Number(1), Number(2), Number(3)), 0, "Uint8Array(3) [1, 2, 3]"},
		{"float buffer", Buffer("Float32Array", Number(1.5)), 0, "Float32Array(1) [1.5]"},
		{"empty buffer", Buffer("Int16Array"), 0, "Int16Array(0) []"},
		{"null", Null(), 0, "null"},
		{"undefined", Undefined(), 1, "undefined"},
		{"boolean", Bool(true), 0, "true"},
		{"raw passes through", Raw("Error: boom"), 2, "Error: boom"},
		{"circular", Sequence(Number(1), Circular()), 0, "[1, [Circular]]"},
		{
			"deep nesting quotes every level",
			Mapping(Field{"list", Sequence(String("a"), Set(String("b")))}),
			0,
			"{ list: ['a', Set { 'b' }] }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.value, tt.depth))
		})
	}
}

func TestLine(t *testing.T) {
	assert.Equal(t, "", Line())
	assert.Equal(t, "hey", Line(String("hey")))
	assert.Equal(t, "a 1 ['b']", Line(String("a"), Number(1), Sequence(String("b"))))
}

func TestNumberText(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-42, "-42"},
		{1.5, "1.5"},
		{0.1, "0.1"},
		{123456789, "123456789"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberText(tt.in), "NumberText(%v)", tt.in)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "sequence", KindSequence.String())
	assert.Equal(t, "other", Kind(99).String())
}
