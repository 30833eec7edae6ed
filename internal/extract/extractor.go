// internal/extract/extractor.go
package extract

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/config"
	"github.com/karstfell/siteforge/internal/dom"
)

// Extractor walks a parsed HTML document, buckets elements into semantic
// component types via the rule table, and emits an ordered sequence of
// component drafts. Extraction is best effort: a broken element is skipped,
// a broken document yields an empty sequence, and neither is ever fatal to
// the surrounding project-creation flow.
type Extractor struct {
	cfg config.ExtractConfig
	log *zap.Logger
}

// New creates an Extractor bounded by the given configuration.
func New(cfg config.ExtractConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, log: logger.Named("extract")}
}

// typeExemptFromTextFilter lists component types that are meaningful even
// without text content.
var typeExemptFromTextFilter = map[schemas.ComponentType]bool{
	schemas.TypeImage:     true,
	schemas.TypeContainer: true,
}

// Extract parses raw HTML and returns up to MaxComponents component drafts
// for the given project, positions assigned as a strictly increasing counter
// across the whole sequence.
func (e *Extractor) Extract(rawHTML, projectID string) []schemas.ComponentDraft {
	if strings.TrimSpace(rawHTML) == "" {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil || doc == nil {
		// Degraded mode: no DOM tree available, approximate with regex.
		e.log.Warn("DOM parse failed, falling back to regex extraction", zap.Error(err))
		return e.fallbackExtract(rawHTML, projectID)
	}

	elements := collectElements(doc)
	drafts := make([]schemas.ComponentDraft, 0, e.cfg.MaxComponents)
	position := 0

	for _, r := range componentRules {
		matched := 0
		for _, el := range elements {
			if matched >= e.cfg.MaxPerRule {
				break
			}
			if !r.match(el) {
				continue
			}
			matched++

			draft, ok := e.buildDraft(el, projectID, r.componentType, position)
			if !ok {
				continue
			}
			drafts = append(drafts, draft)
			position++
		}
	}

	if len(drafts) > e.cfg.MaxComponents {
		drafts = drafts[:e.cfg.MaxComponents]
	}

	byType := map[string]int{}
	for _, d := range drafts {
		byType[d.ComponentType]++
	}
	e.log.Debug("Extraction complete",
		zap.Int("components", len(drafts)),
		zap.Any("by_type", byType))

	return drafts
}

// buildDraft converts one matched element into a component draft. Returns
// ok=false when the element is filtered out or its processing panics.
func (e *Extractor) buildDraft(el *html.Node, projectID string, componentType schemas.ComponentType, position int) (draft schemas.ComponentDraft, ok bool) {
	// A hostile node must never abort the whole parse.
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("Skipping element after panic during draft build",
				zap.Any("panic", r), zap.String("tag", el.Data))
			ok = false
		}
	}()

	text := dom.TextContent(el)
	if len(text) < e.cfg.MinTextLen && !typeExemptFromTextFilter[componentType] {
		return draft, false
	}

	styles := dom.ExtractInlineStyles(dom.Attr(el, "style"))
	if styles["display"] == "" {
		styles["display"] = "block"
	}
	if componentType == schemas.TypeImage {
		styles["minHeight"] = "auto"
	} else if styles["minHeight"] == "" {
		styles["minHeight"] = "20px"
	}

	attributes := make(map[string]string, len(el.Attr))
	for _, a := range el.Attr {
		attributes[a.Key] = a.Val
	}

	parentTag := "body"
	if el.Parent != nil && el.Parent.Type == html.ElementNode {
		parentTag = strings.ToLower(el.Parent.Data)
	}

	draft = schemas.ComponentDraft{
		ProjectID:     projectID,
		ComponentType: NormalizeType(string(componentType)),
		Content: schemas.ComponentContent{
			Tag:          strings.ToLower(el.Data),
			Text:         Truncate(text, e.cfg.MaxTextLen),
			OriginalHTML: Truncate(renderNode(el), e.cfg.MaxOriginalHTML),
			Styles:       styles,
			Attributes:   attributes,
			Selector:     dom.GenerateSelector(el),
			XPath:        dom.GenerateXPath(el),
			ElementIndex: dom.ElementIndex(el) - 1,
			ParentTag:    parentTag,
		},
		Position:  position,
		IsVisible: true,
	}
	return draft, true
}

// collectElements flattens the tree into document order.
func collectElements(doc *html.Node) []*html.Node {
	var elements []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			elements = append(elements, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return elements
}

func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// Truncate cuts s to at most max bytes without splitting a rune: the cut
// point walks back to the nearest rune start so the result stays valid UTF-8.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
