// internal/extract/normalize.go
package extract

import "strings"

// NormalizeType rewrites a component type into a safe identifier before it
// reaches any persistence layer with a constrained vocabulary: lowercase,
// non-alphanumeric runs collapsed to a single underscore, leading and
// trailing underscores trimmed, empty results replaced with "element".
func NormalizeType(componentType string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(componentType) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}

	normalized := strings.Trim(sb.String(), "_")
	if normalized == "" {
		return "element"
	}
	return normalized
}
