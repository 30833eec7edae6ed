// internal/dom/styles.go
package dom

import "strings"

// ExtractInlineStyles parses a raw inline style attribute string into a
// property -> value map. Rules are split on ";", each rule on the first ":",
// and both sides are trimmed. Fragments with an empty property or value are
// dropped. Values pass through as opaque strings; no unit conversion or
// validation happens here.
func ExtractInlineStyles(styleAttr string) map[string]string {
	styles := make(map[string]string)
	if styleAttr == "" {
		return styles
	}

	for _, rule := range strings.Split(styleAttr, ";") {
		property, value, found := strings.Cut(rule, ":")
		if !found {
			continue
		}
		property = strings.TrimSpace(property)
		value = strings.TrimSpace(value)
		if property == "" || value == "" {
			continue
		}
		styles[property] = value
	}

	return styles
}
