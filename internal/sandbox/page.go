package sandbox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/html"
)

var (
	ErrUnsupportedScheme    = errors.New("unsupported reference scheme")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// Script is one <script> element of a page
type Script struct {
	Src    string // External source, empty for inline scripts
	Module bool   // type="module"; runs after all classic scripts
	Text   string // Inline source
}

// Page is a parsed document ready to load
type Page struct {
	DOM     *DOM
	Scripts []Script
}

// Open fetches and parses a reference
func Open(ref string) (*Page, error) {
	markup, err := Fetch(ref)
	if err != nil {
		return nil, err
	}
	return ParsePage(markup)
}

// Fetch returns the markup named by ref. Only data: URIs with an HTML media
// type are supported; the sandbox has no network access.
func Fetch(ref string) (string, error) {
	scheme, _, ok := strings.Cut(ref, ":")
	if !ok || !strings.EqualFold(scheme, "data") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	du, err := dataurl.DecodeString(ref)
	if err != nil {
		return "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	if contentType := du.ContentType(); contentType != "text/html" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType)
	}
	return string(du.Data), nil
}

// ParsePage parses markup into a DOM tree and its scripts in document order
func ParsePage(markup string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	page := &Page{DOM: NewDOM()}

	if body := doc.Find("body").First(); len(body.Nodes) > 0 {
		for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			buildElement(page.DOM.Body(), c)
		}
	}

	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		src, _ := s.Attr("src")
		page.Scripts = append(page.Scripts, Script{
			Src:    strings.TrimSpace(src),
			Module: strings.EqualFold(strings.TrimSpace(typ), "module"),
			Text:   s.Text(),
		})
	})

	return page, nil
}

// Ordered returns the indexes of Scripts in execution order: classic scripts
// first, then deferred module scripts, each group in document order
func (p *Page) Ordered() []int {
	order := make([]int, 0, len(p.Scripts))
	for i, s := range p.Scripts {
		if !s.Module {
			order = append(order, i)
		}
	}
	for i, s := range p.Scripts {
		if s.Module {
			order = append(order, i)
		}
	}
	return order
}

func buildElement(parent *Element, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		parent.TextContent += n.Data
	case html.ElementNode:
		elem := newElement(n.Data)
		for _, attr := range n.Attr {
			elem.SetAttribute(attr.Key, attr.Val)
		}
		parent.AddElement(elem)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			buildElement(elem, c)
		}
	}
}
