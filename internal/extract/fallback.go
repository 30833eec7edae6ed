// internal/extract/fallback.go
package extract

import (
	"regexp"
	"strings"

	"github.com/karstfell/siteforge/api/schemas"
)

// fallbackPattern approximates a tag matcher for the small set of structural
// tags worth salvaging when no DOM tree could be built. It cannot handle
// nesting of the same tag and ignores attributes beyond the opening tag, so
// it is strictly less correct than the tree walker in Extract; it exists only
// so a mangled document still yields something editable.
var fallbackPattern = regexp.MustCompile(
	`(?is)<(header|nav|main|footer|h1|h2|h3|p|section|article|form)\b[^>]*>(.*?)</\s*(?:header|nav|main|footer|h1|h2|h3|p|section|article|form)\s*>`)

var fallbackTypes = map[string]schemas.ComponentType{
	"header":  schemas.TypeHeader,
	"nav":     schemas.TypeNavigation,
	"main":    schemas.TypeMainContent,
	"footer":  schemas.TypeFooter,
	"h1":      schemas.TypeHeading,
	"h2":      schemas.TypeHeading,
	"h3":      schemas.TypeHeading,
	"p":       schemas.TypeParagraph,
	"section": schemas.TypeSection,
	"article": schemas.TypeArticle,
	"form":    schemas.TypeForm,
}

var stripTags = regexp.MustCompile(`<[^>]*>`)

// fallbackExtract is the degraded extraction mode.
func (e *Extractor) fallbackExtract(rawHTML, projectID string) []schemas.ComponentDraft {
	e.log.Info("Running degraded regex extraction")

	var drafts []schemas.ComponentDraft
	position := 0

	for _, m := range fallbackPattern.FindAllStringSubmatch(rawHTML, -1) {
		if len(drafts) >= e.cfg.MaxComponents {
			break
		}
		tag := strings.ToLower(m[1])
		text := strings.TrimSpace(stripTags.ReplaceAllString(m[2], " "))
		text = strings.Join(strings.Fields(text), " ")
		if len(text) < e.cfg.MinTextLen {
			continue
		}

		componentType, okType := fallbackTypes[tag]
		if !okType {
			componentType = schemas.TypeElement
		}

		drafts = append(drafts, schemas.ComponentDraft{
			ProjectID:     projectID,
			ComponentType: NormalizeType(string(componentType)),
			Content: schemas.ComponentContent{
				Tag:      tag,
				Text:     Truncate(text, e.cfg.MaxTextLen),
				Styles:   map[string]string{"display": "block", "minHeight": "20px"},
				Selector: tag,
				// No tree, no reliable ancestry.
				ElementIndex: -1,
				ParentTag:    "body",
			},
			Position:  position,
			IsVisible: true,
		})
		position++
	}

	return drafts
}
