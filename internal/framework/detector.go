// internal/framework/detector.go
package framework

import (
	"net/url"
	"strings"

	"github.com/karstfell/siteforge/api/schemas"
)

// DefaultLabel is reported when no framework-identifying rule matches.
const DefaultLabel = "HTML/CSS/JS"

const (
	htmlBaseConfidence = 50
	urlBaseConfidence  = 30
	maxConfidence      = 100
)

// rule is a single detection signal. A rule with a non-empty label is
// framework-identifying and overwrites the result label on match; rules with
// an empty label only boost confidence (library-present signals).
type rule struct {
	patterns  []string // substrings; any hit counts as a match
	label     string
	delta     int
	indicator string
}

// rules are evaluated in order from weakest to strongest signal, so a
// high-confidence match (Next.js) overwrites a label set by a generic one
// (bare "react" substring).
var rules = []rule{
	{patterns: []string{"react", "React"}, delta: 30, indicator: "React references found"},
	{patterns: []string{"data-reactroot", `id="root"`}, label: "React", delta: 40, indicator: "React root element found"},
	{patterns: []string{"_next", "__NEXT_DATA__"}, label: "Next.js", delta: 60, indicator: "Next.js markers found"},
	{patterns: []string{"vue", "Vue"}, delta: 30, indicator: "Vue references found"},
	{patterns: []string{"v-if", "v-for", "v-model"}, label: "Vue", delta: 50, indicator: "Vue directives found"},
	{patterns: []string{"angular", "ng-"}, label: "Angular", delta: 50, indicator: "Angular markers found"},
	{patterns: []string{"wp-content", "wordpress"}, label: "WordPress", delta: 60, indicator: "WordPress markers found"},
	{patterns: []string{"bootstrap"}, delta: 20, indicator: "Bootstrap CSS framework"},
	{patterns: []string{"jquery", "jQuery"}, delta: 20, indicator: "jQuery library found"},
}

// Detect scans raw HTML text for signature substrings and returns the best
// guess of the authoring framework with a clamped confidence score.
func Detect(rawHTML string) schemas.FrameworkDetection {
	result := schemas.FrameworkDetection{
		Framework:  DefaultLabel,
		Confidence: htmlBaseConfidence,
		Indicators: []string{},
	}

	for _, r := range rules {
		matched := false
		for _, p := range r.patterns {
			if strings.Contains(rawHTML, p) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		result.Indicators = append(result.Indicators, r.indicator)
		result.Confidence += r.delta
		if r.label != "" {
			result.Framework = r.label
		}
	}

	if result.Confidence > maxConfidence {
		result.Confidence = maxConfidence
	}
	return result
}

// DetectFromURL guesses the framework from the hostname alone. Used when no
// HTML could be fetched at all.
func DetectFromURL(rawURL string) schemas.FrameworkDetection {
	result := schemas.FrameworkDetection{
		Framework:  DefaultLabel,
		Confidence: urlBaseConfidence,
		Indicators: []string{"URL-based detection"},
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return result
	}
	host := parsed.Hostname()

	if strings.Contains(host, "github.io") || strings.Contains(host, "netlify") || strings.Contains(host, "vercel") {
		result.Indicators = append(result.Indicators, "Static hosting detected")
		result.Confidence += 20
	}
	if strings.Contains(host, "wordpress") || strings.Contains(host, "wp.com") {
		result.Framework = "WordPress"
		result.Confidence += 50
		result.Indicators = append(result.Indicators, "WordPress hosting detected")
	}

	if result.Confidence > maxConfidence {
		result.Confidence = maxConfidence
	}
	return result
}
