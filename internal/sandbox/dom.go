package sandbox

import (
	"strings"
	"sync"
)

// DOM provides a lightweight document proxy for sandboxed JavaScript
type DOM struct {
	root     *Element
	body     *Element
	changes  []DOMChange
	observer func(DOMChange)
	mu       sync.RWMutex
}

// Element represents a DOM element.
//
// TextContent holds the element's own text; descendants keep theirs.
type Element struct {
	TagName     string
	ID          string
	ClassName   string
	TextContent string
	Attributes  map[string]string
	Children    []*Element
	Parent      *Element
}

// NewDOM creates an empty document with html and body elements
func NewDOM() *DOM {
	root := newElement("document")
	html := newElement("html")
	body := newElement("body")
	root.AddElement(html)
	html.AddElement(body)

	return &DOM{
		root:    root,
		body:    body,
		changes: []DOMChange{},
	}
}

func newElement(tag string) *Element {
	return &Element{
		TagName:    strings.ToLower(tag),
		Attributes: make(map[string]string),
		Children:   []*Element{},
	}
}

// Body returns the body element
func (d *DOM) Body() *Element {
	return d.body
}

// CreateElement creates a detached element
func (d *DOM) CreateElement(tag string) *Element {
	return newElement(tag)
}

// Query finds attached elements by selector (simplified)
func (d *DOM) Query(selector string) []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()

	selector = strings.TrimSpace(selector)
	switch {
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		if id == "" {
			return []*Element{}
		}
		if elem := d.findByID(d.root, id); elem != nil {
			return []*Element{elem}
		}
		return []*Element{}
	case strings.HasPrefix(selector, "."):
		return d.findByClass(d.root, strings.TrimPrefix(selector, "."))
	default:
		return d.findByTag(d.root, selector)
	}
}

// Observe registers fn to receive every recorded change. A nil fn removes
// the observer.
func (d *DOM) Observe(fn func(DOMChange)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = fn
}

// GetChanges returns accumulated DOM changes
func (d *DOM) GetChanges() []DOMChange {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]DOMChange{}, d.changes...)
}

// RecordChange adds a DOM change and notifies the observer
func (d *DOM) RecordChange(change DOMChange) {
	d.mu.Lock()
	d.changes = append(d.changes, change)
	observer := d.observer
	d.mu.Unlock()

	if observer != nil {
		observer(change)
	}
}

// Append attaches child to parent and records the change
func (d *DOM) Append(parent, child *Element) {
	d.mu.Lock()
	child.Remove()
	parent.AddElement(child)
	d.mu.Unlock()

	d.RecordChange(DOMChange{
		Type:     "append_child",
		Selector: parent.Selector(),
		Property: "children",
		Value:    child.Selector(),
	})
}

// SetText replaces the text of e, dropping its children as textContent does
func (d *DOM) SetText(e *Element, text string) {
	d.mu.Lock()
	for _, child := range e.Children {
		child.Parent = nil
	}
	e.Children = []*Element{}
	e.TextContent = text
	d.mu.Unlock()

	d.RecordChange(DOMChange{
		Type:     "set_text",
		Selector: e.Selector(),
		Property: "textContent",
		Value:    text,
	})
}

// SetAttribute sets an attribute of e and records the change
func (d *DOM) SetAttribute(e *Element, name, value string) {
	d.mu.Lock()
	e.SetAttribute(name, value)
	d.mu.Unlock()

	d.RecordChange(DOMChange{
		Type:     "set_attribute",
		Selector: e.Selector(),
		Property: name,
		Value:    value,
	})
}

// Lines returns the visible body text split into lines. A trailing newline
// does not produce an empty final line.
func (d *DOM) Lines() []string {
	d.mu.RLock()
	text := d.body.VisibleText()
	d.mu.RUnlock()

	if text == "" {
		return []string{}
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// Element methods

// GetAttribute retrieves attribute value
func (e *Element) GetAttribute(name string) string {
	return e.Attributes[name]
}

// SetAttribute sets attribute value, keeping ID and ClassName in sync
func (e *Element) SetAttribute(name, value string) {
	e.Attributes[name] = value
	switch name {
	case "id":
		e.ID = value
	case "class":
		e.ClassName = value
	}
}

// Text returns the text of e and all its descendants
func (e *Element) Text() string {
	var b strings.Builder
	e.writeText(&b, false)
	return b.String()
}

// VisibleText is Text without script, style and template contents
func (e *Element) VisibleText() string {
	var b strings.Builder
	e.writeText(&b, true)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder, visibleOnly bool) {
	if visibleOnly {
		switch e.TagName {
		case "script", "style", "template":
			return
		}
	}
	b.WriteString(e.TextContent)
	for _, child := range e.Children {
		child.writeText(b, visibleOnly)
	}
}

// Selector returns a CSS selector identifying e
func (e *Element) Selector() string {
	if e.ID != "" {
		return "#" + e.ID
	}
	return e.TagName
}

// AddElement adds a child element
func (e *Element) AddElement(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// Remove removes element from parent
func (e *Element) Remove() {
	if e.Parent == nil {
		return
	}
	children := e.Parent.Children[:0]
	for _, child := range e.Parent.Children {
		if child != e {
			children = append(children, child)
		}
	}
	e.Parent.Children = children
	e.Parent = nil
}

// Helper methods for querying

func (d *DOM) findByID(elem *Element, id string) *Element {
	if elem.ID == id {
		return elem
	}
	for _, child := range elem.Children {
		if found := d.findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

func (d *DOM) findByClass(elem *Element, class string) []*Element {
	var result []*Element
	for _, name := range strings.Fields(elem.ClassName) {
		if name == class {
			result = append(result, elem)
			break
		}
	}
	for _, child := range elem.Children {
		result = append(result, d.findByClass(child, class)...)
	}
	return result
}

func (d *DOM) findByTag(elem *Element, tag string) []*Element {
	var result []*Element
	if strings.EqualFold(elem.TagName, tag) {
		result = append(result, elem)
	}
	for _, child := range elem.Children {
		result = append(result, d.findByTag(child, tag)...)
	}
	return result
}
