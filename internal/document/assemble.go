package document

import (
	_ "embed"
	"encoding/json"
	"strings"
)

//go:embed assets/console.js
var consoleScript string

const (
	// DefaultLibraryURL is the pinned rubico ES module the document imports
	DefaultLibraryURL = "https://unpkg.com/rubico@1.5.15/es.js"

	// DefaultOutputID is the element id of the output surface
	DefaultOutputID = "sandbox-output"

	// LibraryBinding is the local name the library's default export is bound to
	LibraryBinding = "rubico"
)

// Options configures an Assembler
type Options struct {
	LibraryURL string // Module specifier of the bound library
	OutputID   string // id given to the output surface element
}

// DefaultOptions returns the options used by the package-level Assemble
func DefaultOptions() Options {
	return Options{
		LibraryURL: DefaultLibraryURL,
		OutputID:   DefaultOutputID,
	}
}

// Assembler builds Execution Documents. It is immutable and safe for
// concurrent use.
type Assembler struct {
	opts     Options
	prologue string
}

var defaultAssembler = New(DefaultOptions())

// New creates an assembler. Empty options fall back to the defaults.
func New(opts Options) *Assembler {
	if opts.LibraryURL == "" {
		opts.LibraryURL = DefaultLibraryURL
	}
	if opts.OutputID == "" {
		opts.OutputID = DefaultOutputID
	}
	return &Assembler{
		opts:     opts,
		prologue: prologue(opts),
	}
}

// Assemble builds the Execution Document for snippet with the default options
func Assemble(snippet string) string {
	return defaultAssembler.Assemble(snippet)
}

// Options returns the assembler configuration
func (a *Assembler) Options() Options {
	return a.opts
}

// Assemble builds the Execution Document for snippet.
//
// The snippet is embedded as an escaped string literal and compiled with the
// Function constructor inside the failure boundary. Syntax errors are thrown
// (and logged) like any other error, and no snippet text can terminate the
// enclosing <script> element.
func (a *Assembler) Assemble(snippet string) string {
	var b strings.Builder
	b.Grow(len(a.prologue) + len(snippet) + 256)

	b.WriteString(a.prologue)
	b.WriteString("\ntry {\n")
	b.WriteString("  const scope = { ")
	b.WriteString(strings.Join(Names(), ", "))
	b.WriteString(" }\n")
	b.WriteString("  Function(...Object.keys(scope), ")
	b.WriteString(literal(snippet))
	b.WriteString(")(...Object.values(scope))\n")
	b.WriteString("} catch (error) {\n")
	b.WriteString("  console.log(error)\n")
	b.WriteString("}\n")
	return b.String()
}

// prologue renders everything that precedes the snippet. It depends only on
// the options, so it is computed once per assembler.
func prologue(opts Options) string {
	var b strings.Builder

	b.WriteString("import ")
	b.WriteString(LibraryBinding)
	b.WriteString(" from ")
	b.WriteString(literal(opts.LibraryURL))
	b.WriteString("\n\nconst {\n")
	for _, group := range Surface {
		b.WriteString("  ")
		b.WriteString(strings.Join(group, ", "))
		b.WriteString(",\n")
	}
	b.WriteString("} = ")
	b.WriteString(LibraryBinding)
	b.WriteString("\n\n")

	b.WriteString("const output = document.createElement('pre')\n")
	b.WriteString("output.id = ")
	b.WriteString(literal(opts.OutputID))
	b.WriteString("\ndocument.body.appendChild(output)\n\n")

	b.WriteString(consoleScript)
	return b.String()
}

// literal encodes s as a JavaScript string literal. encoding/json escapes
// <, > and & as well as U+2028 and U+2029, which keeps the result safe inside
// an HTML script element.
func literal(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}
