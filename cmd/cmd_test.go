package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karstfell/siteforge/api/schemas"
)

func TestParseReorderArgs(t *testing.T) {
	entries, err := parseReorderArgs([]string{"c1=2", "c2=0", "c3=1"})
	require.NoError(t, err)
	assert.Equal(t, []schemas.ReorderEntry{
		{ID: "c1", Position: 2},
		{ID: "c2", Position: 0},
		{ID: "c3", Position: 1},
	}, entries)
}

func TestParseReorderArgsRejectsMalformedInput(t *testing.T) {
	cases := []string{"c1", "=2", "c1=abc", "c1=-1"}
	for _, arg := range cases {
		_, err := parseReorderArgs([]string{arg})
		assert.Error(t, err, arg)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"create", "components", "projects", "inspect", "publish"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
