// Package document assembles the Execution Document for a sandbox run.
//
// An Execution Document is an ES module script body that:
//   - imports the rubico library and binds its public surface into scope
//   - appends an output surface (a <pre> element) to document.body
//   - replaces console.log with a formatter that appends to that surface
//   - runs the snippet inside a failure boundary, logging anything it throws
//
// Module scripts execute only after their imports resolve, so no snippet code
// runs before the bound functions exist.
//
// Assembly is a pure function of the snippet text: the same snippet always
// produces a byte-identical document.
//
// Example Usage:
//
//	doc := document.Assemble("console.log(map(x => x + 1)([1, 2]))")
package document
