// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package htmlq holds node predicates and walkers over pages parsed with
// golang.org/x/net/html. The profile clients select elements by tag, class,
// and id; nothing here needs a full CSS selector engine.
package htmlq

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of attribute key, or empty.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether n is an element carrying class.
func HasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// IsElem reports whether n is an element with tag, or any element when tag
// is empty.
func IsElem(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && (tag == "" || n.Data == tag)
}

// Match selects elements by tag (empty for any) and class.
func Match(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return IsElem(n, tag) && HasClass(n, class) }
}

// ByID selects the element with the given id.
func ByID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && Attr(n, "id") == id }
}

// FindAll returns every node under root, root included, matching pred in
// document order.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// FindFirst returns the first node matching pred in document order, or nil.
func FindFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if pred(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := FindFirst(c, pred); n != nil {
			return n
		}
	}
	return nil
}

// Text returns the whitespace-collapsed text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

