// internal/extract/rules.go
package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/dom"
)

// rule buckets elements into a semantic component type. Rules run in table
// order, semantically meaningful structures first, so a <header> is claimed
// as a header before the generic container rule could see it.
type rule struct {
	name          string
	componentType schemas.ComponentType
	match         func(*html.Node) bool
}

func hasClassToken(n *html.Node, tokens ...string) bool {
	for _, class := range strings.Fields(dom.Attr(n, "class")) {
		for _, token := range tokens {
			if class == token {
				return true
			}
		}
	}
	return false
}

func isTag(n *html.Node, tags ...string) bool {
	tag := strings.ToLower(n.Data)
	for _, t := range tags {
		if tag == t {
			return true
		}
	}
	return false
}

func hasRole(n *html.Node, role string) bool {
	return dom.Attr(n, "role") == role
}

// componentRules mirrors the selector-priority table of the extraction
// engine: landmark structures, then headings and text, then media and
// interactive elements, then generic grouping containers.
var componentRules = []rule{
	{
		name:          "Header",
		componentType: schemas.TypeHeader,
		match: func(n *html.Node) bool {
			return isTag(n, "header") || hasRole(n, "banner") ||
				hasClassToken(n, "header") || dom.Attr(n, "id") == "header"
		},
	},
	{
		name:          "Navigation",
		componentType: schemas.TypeNavigation,
		match: func(n *html.Node) bool {
			return isTag(n, "nav") || hasRole(n, "navigation") ||
				hasClassToken(n, "nav", "navbar", "navigation")
		},
	},
	{
		name:          "Hero Section",
		componentType: schemas.TypeHero,
		match: func(n *html.Node) bool {
			return hasClassToken(n, "hero", "hero-section", "banner", "jumbotron", "hero-banner")
		},
	},
	{
		name:          "Main Content",
		componentType: schemas.TypeMainContent,
		match: func(n *html.Node) bool {
			return isTag(n, "main") || hasRole(n, "main") ||
				hasClassToken(n, "main", "content", "main-content")
		},
	},
	{
		name:          "Footer",
		componentType: schemas.TypeFooter,
		match: func(n *html.Node) bool {
			return isTag(n, "footer") || hasRole(n, "contentinfo") ||
				hasClassToken(n, "footer") || dom.Attr(n, "id") == "footer"
		},
	},
	{
		name:          "Main Heading",
		componentType: schemas.TypeHeading,
		match:         func(n *html.Node) bool { return isTag(n, "h1") },
	},
	{
		name:          "Heading",
		componentType: schemas.TypeHeading,
		match:         func(n *html.Node) bool { return isTag(n, "h2", "h3", "h4") },
	},
	{
		name:          "Paragraph",
		componentType: schemas.TypeParagraph,
		match: func(n *html.Node) bool {
			return isTag(n, "p") && n.FirstChild != nil
		},
	},
	{
		name:          "Image",
		componentType: schemas.TypeImage,
		match: func(n *html.Node) bool {
			return isTag(n, "img") && dom.Attr(n, "src") != ""
		},
	},
	{
		name:          "Link",
		componentType: schemas.TypeLink,
		match: func(n *html.Node) bool {
			return isTag(n, "a") && dom.Attr(n, "href") != "" && n.FirstChild != nil
		},
	},
	{
		name:          "Button",
		componentType: schemas.TypeButton,
		match: func(n *html.Node) bool {
			if isTag(n, "button") || hasClassToken(n, "btn") {
				return true
			}
			if !isTag(n, "input") {
				return false
			}
			typ := dom.Attr(n, "type")
			return typ == "button" || typ == "submit"
		},
	},
	{
		name:          "Section",
		componentType: schemas.TypeSection,
		match:         func(n *html.Node) bool { return isTag(n, "section") },
	},
	{
		name:          "Article",
		componentType: schemas.TypeArticle,
		match:         func(n *html.Node) bool { return isTag(n, "article") },
	},
	{
		name:          "Sidebar",
		componentType: schemas.TypeSidebar,
		match: func(n *html.Node) bool {
			return isTag(n, "aside") || hasClassToken(n, "sidebar")
		},
	},
	{
		name:          "Form",
		componentType: schemas.TypeForm,
		match:         func(n *html.Node) bool { return isTag(n, "form") },
	},
	{
		name:          "Card Component",
		componentType: schemas.TypeCard,
		match: func(n *html.Node) bool {
			return hasClassToken(n, "card", "panel", "widget")
		},
	},
	{
		name:          "Container",
		componentType: schemas.TypeContainer,
		match: func(n *html.Node) bool {
			return hasClassToken(n, "container", "wrapper", "row")
		},
	},
}
