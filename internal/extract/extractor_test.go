package extract

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/config"
)

func testExtractConfig() config.ExtractConfig {
	return config.ExtractConfig{
		MaxComponents:   30,
		MaxPerRule:      5,
		MinTextLen:      3,
		MaxTextLen:      200,
		MaxOriginalHTML: 500,
	}
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return New(testExtractConfig(), zap.NewNop())
}

func TestExtractEmptyInput(t *testing.T) {
	e := newTestExtractor(t)
	assert.Empty(t, e.Extract("", "proj-1"))
	assert.Empty(t, e.Extract("   \n\t  ", "proj-1"))
}

func TestExtractEndToEnd(t *testing.T) {
	e := newTestExtractor(t)
	rawHTML := `<html><body><header id="h">Nav</header><p>Hello world this is long enough text</p></body></html>`

	drafts := e.Extract(rawHTML, "proj-1")
	require.Len(t, drafts, 2)

	header := drafts[0]
	assert.Equal(t, "header", header.ComponentType)
	assert.Equal(t, "#h", header.Content.Selector)
	assert.Equal(t, "Nav", header.Content.Text)
	assert.Equal(t, `//*[@id="h"]`, header.Content.XPath)
	assert.Equal(t, 0, header.Position)
	assert.True(t, header.IsVisible)

	para := drafts[1]
	assert.Equal(t, "paragraph", para.ComponentType)
	assert.Equal(t, "p:nth-child(2)", para.Content.Selector)
	assert.Equal(t, 1, para.Position)

	// Both emitted types survive normalization unchanged.
	for _, d := range drafts {
		assert.Equal(t, d.ComponentType, NormalizeType(d.ComponentType))
	}
}

func TestExtractPositionsAreContiguous(t *testing.T) {
	e := newTestExtractor(t)
	rawHTML := `<html><body>
		<header id="top">Site header here</header>
		<nav class="navbar">Nav links</nav>
		<h1>Big headline text</h1>
		<p>First paragraph with plenty of text.</p>
		<p>Second paragraph with plenty of text.</p>
		<footer>Footer text content</footer>
	</body></html>`

	drafts := e.Extract(rawHTML, "proj-1")
	require.NotEmpty(t, drafts)
	for i, d := range drafts {
		assert.Equal(t, i, d.Position, "positions must be a strictly increasing counter")
		assert.Equal(t, "proj-1", d.ProjectID)
	}
}

func TestExtractRespectsHardCap(t *testing.T) {
	cfg := testExtractConfig()
	cfg.MaxPerRule = 100 // force the total cap to be the binding constraint
	e := New(cfg, zap.NewNop())

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "<p>Paragraph number %d with enough text to pass</p>", i)
	}
	sb.WriteString("</body></html>")

	drafts := e.Extract(sb.String(), "proj-1")
	assert.LessOrEqual(t, len(drafts), cfg.MaxComponents)
	assert.Len(t, drafts, cfg.MaxComponents)
}

func TestExtractPerRuleCap(t *testing.T) {
	e := newTestExtractor(t)
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "<h2>Heading number %d right here</h2>", i)
	}
	sb.WriteString("</body></html>")

	drafts := e.Extract(sb.String(), "proj-1")
	assert.Len(t, drafts, 5)
}

func TestExtractFiltersShortTextWithExemptions(t *testing.T) {
	e := newTestExtractor(t)
	rawHTML := `<html><body>
		<p>ab</p>
		<img src="/logo.png" alt="">
		<div class="container"></div>
	</body></html>`

	drafts := e.Extract(rawHTML, "proj-1")

	types := make([]string, 0, len(drafts))
	for _, d := range drafts {
		types = append(types, d.ComponentType)
	}
	assert.NotContains(t, types, "paragraph", "two-char paragraph must be filtered")
	assert.Contains(t, types, "image", "images are exempt from the text length filter")
	assert.Contains(t, types, "container", "containers are exempt from the text length filter")
}

func TestExtractDraftShape(t *testing.T) {
	e := newTestExtractor(t)
	rawHTML := `<html><body><header id="h" class="site-head" style="color: red; display: flex" data-x="1">Welcome home</header></body></html>`

	drafts := e.Extract(rawHTML, "proj-1")
	require.Len(t, drafts, 1)

	want := schemas.ComponentContent{
		Tag:  "header",
		Text: "Welcome home",
		Styles: map[string]string{
			"color":     "red",
			"display":   "flex",
			"minHeight": "20px",
		},
		Attributes: map[string]string{
			"id":     "h",
			"class":  "site-head",
			"style":  "color: red; display: flex",
			"data-x": "1",
		},
		Selector:     "#h",
		XPath:        `//*[@id="h"]`,
		ElementIndex: 0,
		ParentTag:    "body",
	}
	got := drafts[0].Content
	got.OriginalHTML = "" // rendered markup shape is checked separately

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("draft content mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, drafts[0].Content.Selector, "#h")
}

func TestExtractOriginalHTMLTruncated(t *testing.T) {
	cfg := testExtractConfig()
	cfg.MaxOriginalHTML = 40
	e := New(cfg, zap.NewNop())

	rawHTML := `<html><body><p>` + strings.Repeat("long text ", 50) + `</p></body></html>`
	drafts := e.Extract(rawHTML, "proj-1")
	require.NotEmpty(t, drafts)
	assert.LessOrEqual(t, len(drafts[0].Content.OriginalHTML), 40)
	assert.LessOrEqual(t, len(drafts[0].Content.Text), cfg.MaxTextLen)
}

func TestExtractTextTruncatedTo200(t *testing.T) {
	e := newTestExtractor(t)
	rawHTML := `<html><body><p>` + strings.Repeat("x", 500) + `</p></body></html>`
	drafts := e.Extract(rawHTML, "proj-1")
	require.NotEmpty(t, drafts)
	assert.Len(t, drafts[0].Content.Text, 200)
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	// 100 three-byte runes: a naive 200-byte cut would split the 67th rune.
	multibyte := strings.Repeat("世", 100)

	got := Truncate(multibyte, 200)
	assert.LessOrEqual(t, len(got), 200)
	assert.True(t, utf8.ValidString(got), "cut must land on a rune boundary")
	assert.Equal(t, strings.Repeat("世", 66), got)

	assert.Equal(t, "abc", Truncate("abc", 200), "short strings pass through")
	assert.Equal(t, "abc", Truncate("abc", 0), "non-positive max disables truncation")
}

func TestExtractTruncatedTextStaysValidUTF8(t *testing.T) {
	e := newTestExtractor(t)
	rawHTML := `<html><body><p>` + strings.Repeat("日本語テキスト", 50) + `</p></body></html>`

	drafts := e.Extract(rawHTML, "proj-1")
	require.NotEmpty(t, drafts)
	assert.LessOrEqual(t, len(drafts[0].Content.Text), 200)
	assert.True(t, utf8.ValidString(drafts[0].Content.Text))
}

func TestExtractSemanticRulesRunBeforeGenericOnes(t *testing.T) {
	e := newTestExtractor(t)
	rawHTML := `<html><body>
		<div class="hero">Shiny hero banner copy</div>
		<p>A paragraph with plenty of text in it.</p>
	</body></html>`

	drafts := e.Extract(rawHTML, "proj-1")
	require.GreaterOrEqual(t, len(drafts), 2)
	assert.Equal(t, "hero", drafts[0].ComponentType)
}
