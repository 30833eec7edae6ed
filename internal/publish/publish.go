// internal/publish/publish.go

// Package publish renders a project's component list into override
// artifacts: a CSS blob, a JS blob, and an HTML snippet combining both for
// manual placement into the target site.
package publish

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/karstfell/siteforge/api/schemas"
)

// GenerateCSS emits one rule block per component that has styles to apply.
// User-edited overrides win over styles extracted from the page. Every
// declaration carries !important so the overrides beat the site's own
// stylesheets without needing to out-specialize them.
func GenerateCSS(components []schemas.Component) string {
	var b strings.Builder
	b.WriteString("/* Generated style overrides */\n")

	for _, c := range components {
		if c.Content.Selector == "" {
			continue
		}
		styles := mergeStyles(c.Content.Styles, c.Styles)
		if len(styles) == 0 {
			continue
		}

		props := make([]string, 0, len(styles))
		for prop := range styles {
			props = append(props, prop)
		}
		sort.Strings(props)

		b.WriteString(fmt.Sprintf("%s {\n", c.Content.Selector))
		for _, prop := range props {
			b.WriteString(fmt.Sprintf("  %s: %s !important;\n", prop, styles[prop]))
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// GenerateJavaScript emits a script that rewrites text content and the
// navigational attributes of each component's element. Text overwrite is
// skipped for img tags, which have no meaningful textContent.
func GenerateJavaScript(components []schemas.Component) string {
	var b strings.Builder
	b.WriteString("// Generated content overrides\n")
	b.WriteString("(function () {\n")

	for _, c := range components {
		if c.Content.Selector == "" {
			continue
		}
		var stmts []string
		if c.Content.Text != "" && c.Content.Tag != "img" {
			stmts = append(stmts, fmt.Sprintf("    el.textContent = %s;", jsString(c.Content.Text)))
		}
		for _, attr := range []string{"src", "href", "alt"} {
			if value, ok := c.Content.Attributes[attr]; ok {
				stmts = append(stmts, fmt.Sprintf("    el.setAttribute(%s, %s);", jsString(attr), jsString(value)))
			}
		}
		if len(stmts) == 0 {
			continue
		}

		b.WriteString(fmt.Sprintf("  var el = document.querySelector(%s);\n", jsString(c.Content.Selector)))
		b.WriteString("  if (el) {\n")
		b.WriteString(strings.Join(stmts, "\n"))
		b.WriteString("\n  }\n")
	}

	b.WriteString("})();\n")
	return b.String()
}

// GenerateHTMLOverrides wraps both blobs into one snippet. The style block
// belongs in <head>, the script before </body>; the snippet works either way
// because the script defers element lookup until it runs.
func GenerateHTMLOverrides(components []schemas.Component) string {
	return fmt.Sprintf("<style>\n%s</style>\n<script>\n%s</script>\n",
		GenerateCSS(components), GenerateJavaScript(components))
}

// mergeStyles layers override on top of base without mutating either.
func mergeStyles(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for prop, value := range base {
		merged[prop] = value
	}
	for prop, value := range override {
		merged[prop] = value
	}
	return merged
}

// jsString renders s as a double-quoted JS string literal. Go's quoting
// rules produce escapes that are valid JS.
func jsString(s string) string {
	return strconv.Quote(s)
}
