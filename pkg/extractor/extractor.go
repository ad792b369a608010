// Package extractor pulls the human-readable text out of parsed HTML
// documents.
package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// skippedParents are the elements whose direct text children are never
// visible to a reader.
var skippedParents = map[string]bool{
	"style":  true,
	"script": true,
	"head":   true,
	"title":  true,
	"meta":   true,
}

// VisibleText returns the visible text of a parsed document: every text
// node in document order whose parent element is not style, script, head,
// title or meta. Each node's content is trimmed and the results are
// joined with single spaces. Whitespace between nodes is not collapsed
// further, so whitespace-only nodes still contribute a join slot.
func VisibleText(doc *html.Node) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && visible(n) {
			parts = append(parts, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, " ")
}

// visible reports whether a text node should appear in the output.
// Comments are a distinct node type and never reach this check.
func visible(n *html.Node) bool {
	p := n.Parent
	if p == nil || p.Type != html.ElementNode {
		return false
	}
	return !skippedParents[p.Data]
}

// Title returns the text content of the document's first title element,
// or nil when the document has none.
func Title(doc *html.Node) *string {
	node := findElement(doc, "title")
	if node == nil {
		return nil
	}
	var b strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	title := b.String()
	return &title
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}
