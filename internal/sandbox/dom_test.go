package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOMQuery(t *testing.T) {
	dom := NewDOM()

	elem := dom.CreateElement("DIV")
	elem.SetAttribute("id", "test-id")
	elem.SetAttribute("class", "test-class other")
	dom.Append(dom.Body(), elem)

	tests := []struct {
		name     string
		selector string
		wantLen  int
	}{
		{name: "ID selector", selector: "#test-id", wantLen: 1},
		{name: "class selector", selector: ".test-class", wantLen: 1},
		{name: "second class", selector: ".other", wantLen: 1},
		{name: "tag selector", selector: "div", wantLen: 1},
		{name: "tag selector case", selector: "DIV", wantLen: 1},
		{name: "non-existent", selector: "#not-found", wantLen: 0},
		{name: "empty id", selector: "#", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, dom.Query(tt.selector), tt.wantLen)
		})
	}
}

func TestDOMDetachedElementsAreNotQueried(t *testing.T) {
	dom := NewDOM()
	elem := dom.CreateElement("p")
	elem.SetAttribute("id", "floating")

	assert.Empty(t, dom.Query("#floating"))
}

func TestDOMSetTextDropsChildren(t *testing.T) {
	dom := NewDOM()
	parent := dom.CreateElement("div")
	child := dom.CreateElement("span")
	dom.Append(dom.Body(), parent)
	dom.Append(parent, child)
	dom.SetText(child, "inner")

	assert.Equal(t, "inner", parent.Text())

	dom.SetText(parent, "replaced")
	assert.Equal(t, "replaced", parent.Text())
	assert.Empty(t, parent.Children)
	assert.Nil(t, child.Parent)
}

func TestDOMAppendMovesElement(t *testing.T) {
	dom := NewDOM()
	a := dom.CreateElement("div")
	b := dom.CreateElement("div")
	child := dom.CreateElement("span")
	dom.Append(a, child)
	dom.Append(b, child)

	assert.Empty(t, a.Children)
	require.Len(t, b.Children, 1)
	assert.Same(t, b, child.Parent)
}

func TestDOMLines(t *testing.T) {
	dom := NewDOM()
	assert.Equal(t, []string{}, dom.Lines())

	script := dom.CreateElement("script")
	dom.Append(dom.Body(), script)
	dom.SetText(script, "ignored()")

	pre := dom.CreateElement("pre")
	dom.Append(dom.Body(), pre)
	dom.SetText(pre, "one\n\nthree\n")

	assert.Equal(t, []string{"one", "", "three"}, dom.Lines())
}

func TestDOMChanges(t *testing.T) {
	dom := NewDOM()
	var observed int
	dom.Observe(func(DOMChange) { observed++ })

	pre := dom.CreateElement("pre")
	dom.SetAttribute(pre, "id", "out")
	dom.Append(dom.Body(), pre)
	dom.SetText(pre, "x")

	changes := dom.GetChanges()
	require.Len(t, changes, 3)
	assert.Equal(t, DOMChange{Type: "set_attribute", Selector: "#out", Property: "id", Value: "out"}, changes[0])
	assert.Equal(t, DOMChange{Type: "append_child", Selector: "body", Property: "children", Value: "#out"}, changes[1])
	assert.Equal(t, DOMChange{Type: "set_text", Selector: "#out", Property: "textContent", Value: "x"}, changes[2])
	assert.Equal(t, 3, observed)

	dom.Observe(nil)
	dom.SetText(pre, "y")
	assert.Equal(t, 3, observed)
}
