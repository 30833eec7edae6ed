package publish

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karstfell/siteforge/api/schemas"
)

func component(selector, tag, text string, contentStyles, overrides, attrs map[string]string) schemas.Component {
	return schemas.Component{
		ID:            "c-" + selector,
		ComponentType: "element",
		Content: schemas.ComponentContent{
			Tag:        tag,
			Text:       text,
			Selector:   selector,
			Styles:     contentStyles,
			Attributes: attrs,
		},
		Styles:    overrides,
		IsVisible: true,
	}
}

func TestGenerateCSSMergesOverridesOverExtractedStyles(t *testing.T) {
	css := GenerateCSS([]schemas.Component{
		component("#hero", "section", "",
			map[string]string{"color": "black", "display": "block"},
			map[string]string{"color": "red"},
			nil),
	})

	assert.Contains(t, css, "#hero {\n")
	assert.Contains(t, css, "  color: red !important;\n", "user edit wins over extracted value")
	assert.Contains(t, css, "  display: block !important;\n")
	assert.NotContains(t, css, "color: black")
}

func TestGenerateCSSSortsDeclarations(t *testing.T) {
	css := GenerateCSS([]schemas.Component{
		component(".card", "div", "", map[string]string{"z-index": "2", "background": "white", "margin": "0"}, nil, nil),
	})

	background := strings.Index(css, "background")
	margin := strings.Index(css, "margin")
	zIndex := strings.Index(css, "z-index")
	assert.True(t, background < margin && margin < zIndex, "declarations emitted in sorted order")
}

func TestGenerateCSSSkipsComponentsWithNothingToEmit(t *testing.T) {
	css := GenerateCSS([]schemas.Component{
		component("", "p", "", map[string]string{"color": "red"}, nil, nil),
		component("#empty", "p", "", nil, nil, nil),
	})

	assert.NotContains(t, css, "{")
}

func TestGenerateJavaScriptOverwritesTextAndAttributes(t *testing.T) {
	js := GenerateJavaScript([]schemas.Component{
		component("#title", "h1", `Say "hello"`, nil, nil, nil),
		component(".cta", "a", "Buy now", nil, nil, map[string]string{"href": "https://shop.example.com"}),
	})

	assert.Contains(t, js, `document.querySelector("#title")`)
	assert.Contains(t, js, `el.textContent = "Say \"hello\"";`)
	assert.Contains(t, js, `el.setAttribute("href", "https://shop.example.com");`)
	assert.Contains(t, js, "if (el) {")
}

func TestGenerateJavaScriptSkipsTextForImages(t *testing.T) {
	js := GenerateJavaScript([]schemas.Component{
		component("img.logo", "img", "alt text leaked into content", nil, nil,
			map[string]string{"src": "/new-logo.png", "alt": "New logo"}),
	})

	assert.NotContains(t, js, "textContent")
	assert.Contains(t, js, `el.setAttribute("src", "/new-logo.png");`)
	assert.Contains(t, js, `el.setAttribute("alt", "New logo");`)
}

func TestGenerateJavaScriptSkipsComponentsWithNoOverrides(t *testing.T) {
	js := GenerateJavaScript([]schemas.Component{
		component("#inert", "div", "", nil, nil, map[string]string{"class": "wrapper"}),
	})

	assert.NotContains(t, js, "querySelector")
}

func TestGenerateHTMLOverridesWrapsBothBlobs(t *testing.T) {
	snippet := GenerateHTMLOverrides([]schemas.Component{
		component("#hero", "section", "Welcome", map[string]string{"color": "red"}, nil, nil),
	})

	assert.True(t, strings.HasPrefix(snippet, "<style>\n"))
	assert.Contains(t, snippet, "</style>\n<script>\n")
	assert.True(t, strings.HasSuffix(snippet, "</script>\n"))
	assert.Contains(t, snippet, "color: red !important;")
	assert.Contains(t, snippet, `el.textContent = "Welcome";`)
}
