// Package bridge turns an Execution Document into a Render Target Reference.
//
// The document is wrapped in a minimal <html><body><script type="module">
// page, serialized, percent-escaped and embedded in a data URI:
//
//	data:text/html;charset=utf-8,%3C!DOCTYPE%20html%3E%3Chtml%3E...
//
// The bridge performs no loading. A display surface (a browser iframe, or
// the in-process sandbox.Frame) fetches and executes the reference, which
// gives the run its own global scope and console.
package bridge
