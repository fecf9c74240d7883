/*
Package format renders sandbox values the way a terminal console displays them.

# Overview

Values are modelled as a tagged variant (Value) with a closed set of kinds:

  - KindString: text, unquoted at the top level and single-quoted when nested
  - KindSequence: ordered elements, rendered as [a, b, c]
  - KindBuffer: fixed-width numeric arrays, rendered as Uint8Array(3) [1, 2, 3]
  - KindMapping: plain key/value objects, rendered as { a: 1, b: 2 }
  - KindSet: rendered as Set { 1, 2 }
  - KindMap: rendered as Map { a => 1 }
  - KindCircular: a container that contains itself, rendered as [Circular]
  - KindOther: anything else, rendered by its default textual form

# Usage Example

	line := format.Line(format.String("total"), format.Sequence(format.Number(1), format.Number(2)))
	// total [1, 2]

Live JavaScript values are converted with FromGoja, which dispatches on the
constructor identity of each object against the runtime's own built-ins.
*/
package format
