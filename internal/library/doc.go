/*
Package library binds a Go implementation of the rubico function surface
into a goja runtime.

# Overview

Instantiate builds the namespace object a module import resolves to. Its
default export is the namespace itself, so both of these forms work:

	import rubico from 'https://unpkg.com/rubico@1.5.15/es.js'
	import { pipe, map } from 'https://unpkg.com/rubico@1.5.15/es.js'

All functions are synchronous. Collections are recognised by constructor
identity (arrays, plain objects, Set, Map, typed arrays, strings) and map,
filter and flatMap act as transducers when given a reducer function:

	transform(pipe([map(x => x * 2), filter(x => x > 2)]), [])([1, 2, 3])
	// [4, 6]

Errors thrown by callbacks propagate to the caller unchanged. An interrupt
raised while a callback runs is re-armed on the runtime so it still aborts
the whole script.
*/
package library
