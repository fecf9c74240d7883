package bridge

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/rubico-playground/internal/shared/utils"
)

// Prefix is the scheme and media type of every Reference
const Prefix = "data:text/html;charset=utf-8,"

// Reference names a generated Execution Document. It is replaced, never
// mutated, by each run.
type Reference string

// String returns the URI
func (r Reference) String() string {
	return string(r)
}

// Digest returns the sha256 of the URI
func (r Reference) Digest() string {
	return utils.DefaultHasher().HashString(string(r))
}

// ToRenderableReference wraps documentText in a page and returns its data URI
func ToRenderableReference(documentText string) Reference {
	return Reference(Prefix + Escape(Markup(documentText)))
}

// Markup serializes the page that hosts documentText as a module script
func Markup(documentText string) string {
	script := element(atom.Script, html.Attribute{Key: "type", Val: "module"})
	script.AppendChild(&html.Node{Type: html.TextNode, Data: documentText})

	body := element(atom.Body)
	body.AppendChild(script)

	root := element(atom.Html)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)

	var b strings.Builder
	// strings.Builder never fails, and Render only rejects plaintext nodes
	_ = html.Render(&b, doc)
	return b.String()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}
