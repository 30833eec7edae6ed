package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hero Section!!", "hero_section"},
		{"", "element"},
		{"header", "header"},
		{"main-content", "main_content"},
		{"form-element", "form_element"},
		{"___", "element"},
		{"  Card   Component  ", "card_component"},
		{"UPPER", "upper"},
		{"a--b__c", "a_b_c"},
		{"123", "123"},
		{"!!!weird???type!!!", "weird_type"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeType(tt.input))
		})
	}
}

func TestNormalizeTypeIdempotent(t *testing.T) {
	inputs := []string{"Hero Section!!", "navigation", "a b c", ""}
	for _, input := range inputs {
		once := NormalizeType(input)
		assert.Equal(t, once, NormalizeType(once))
	}
}
