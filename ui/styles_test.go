package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aurzex/NyanTheme/config"
	"github.com/Aurzex/NyanTheme/rules"
	"github.com/Aurzex/NyanTheme/testing/snapshot"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))

	long := Truncate("abcdefghij", 4)
	assert.True(t, strings.HasSuffix(long, "…"))
	assert.LessOrEqual(t, runewidth.StringWidth(long), 4)

	// Wide runes count by display width, not byte length.
	wide := Truncate("你好世界你好世界", 6)
	assert.LessOrEqual(t, runewidth.StringWidth(wide), 6)
}

func TestRenderRuleTable(t *testing.T) {
	set, err := rules.Compile([]config.Replacement{
		{Pattern: "foo", Replacement: "bar", FilterCommands: []string{"python3"}},
		{Pattern: "baz", Replacement: "qux"},
	}, "default")
	require.NoError(t, err)

	table := snapshot.StripANSI(RenderRuleTable(set))

	assert.Contains(t, table, "PATTERN")
	assert.Contains(t, table, "foo")
	assert.Contains(t, table, "bar")
	assert.Contains(t, table, "python3")
	assert.Contains(t, table, "(all)")

	// Header plus one row per rule.
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	assert.Len(t, lines, 3)
}

func TestRenderStatusLines(t *testing.T) {
	assert.Contains(t, snapshot.StripANSI(RenderOK("2 rules compiled")), "+ 2 rules compiled")
	assert.Contains(t, snapshot.StripANSI(RenderError("bad pattern")), "x bad pattern")
}
