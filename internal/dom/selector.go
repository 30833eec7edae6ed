// internal/dom/selector.go
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute on an element node, or ""
// when absent.
func Attr(n *html.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// FirstClass returns the first whitespace-separated token of the element's
// class attribute, or "".
func FirstClass(n *html.Node) string {
	for _, token := range strings.Fields(Attr(n, "class")) {
		if token != "" {
			return token
		}
	}
	return ""
}

// ElementIndex returns the 1-based position of n among its parent's element
// children, or 0 when n has no parent element siblings context.
func ElementIndex(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return 0
	}
	index := 0
	for sib := n.Parent.FirstChild; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		index++
		if sib == n {
			return index
		}
	}
	return 0
}

// TextContent returns the concatenated text of the node's descendants,
// whitespace-trimmed.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	if n != nil {
		walk(n)
	}
	return strings.TrimSpace(sb.String())
}

// GenerateSelector derives a CSS selector for an element in strict priority
// order: #id, then the first class token, then tag:nth-child(n), then the
// bare lowercase tag when the element has no parent. The result is not
// guaranteed unique against siblings sharing the same first class; that is
// an accepted heuristic limitation, and the generated selector resolves back
// to the originating element only modulo such collisions.
func GenerateSelector(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	if id := Attr(n, "id"); id != "" {
		return "#" + id
	}

	if class := FirstClass(n); class != "" {
		return "." + class
	}

	tag := strings.ToLower(n.Data)
	if idx := ElementIndex(n); idx > 0 {
		return fmt.Sprintf("%s:nth-child(%d)", tag, idx)
	}
	return tag
}

// GenerateXPath derives an XPath locator for an element. Elements with an id
// resolve directly to an id predicate. Otherwise the path is accumulated from
// tag[index] segments (index is the 1-based position among all element
// siblings) walking up the ancestor chain; the walk stops early and anchors
// on the id form the moment an ancestor carrying an id is found.
func GenerateXPath(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	if id := Attr(n, "id"); id != "" {
		return fmt.Sprintf(`//*[@id=%q]`, id)
	}

	var path []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		tag := strings.ToLower(cur.Data)
		if id := Attr(cur, "id"); id != "" {
			path = append(path, fmt.Sprintf(`//*[@id=%q]`, id))
			break
		}
		if idx := ElementIndex(cur); idx > 0 {
			path = append(path, fmt.Sprintf("%s[%d]", tag, idx))
		} else {
			path = append(path, fmt.Sprintf("%s[1]", tag))
		}
	}

	// Reverse into document order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	xpath := strings.Join(path, "/")
	if !strings.HasPrefix(xpath, "//*[@id=") {
		xpath = "/" + xpath
	}
	return xpath
}
