package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTheme(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "theme.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTheme(t *testing.T) {
	path := writeTheme(t, `{
		"replacements": [
			{"pattern": "foo", "replacement": "bar"},
			{"pattern": "x(\\d+)", "replacement": "n=$1", "locale": "zh", "filter_commands": ["python3", "bash"]}
		]
	}`)

	theme, err := LoadTheme(path)
	require.NoError(t, err)
	require.Len(t, theme.Replacements, 2)

	// Missing locale defaults.
	assert.Equal(t, DefaultLocale, theme.Replacements[0].Locale)
	assert.Empty(t, theme.Replacements[0].FilterCommands)

	assert.Equal(t, "zh", theme.Replacements[1].Locale)
	assert.Equal(t, []string{"python3", "bash"}, theme.Replacements[1].FilterCommands)
}

func TestLoadThemeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "malformed json",
			content: `{"replacements": [`,
		},
		{
			name:    "missing replacements section",
			content: `{"rules": []}`,
		},
		{
			name:    "rule missing pattern",
			content: `{"replacements": [{"replacement": "bar"}]}`,
		},
		{
			name:    "rule missing replacement",
			content: `{"replacements": [{"pattern": "foo"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTheme(t, tt.content)
			_, err := LoadTheme(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadThemeMissingFile(t *testing.T) {
	_, err := LoadTheme(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestExampleThemeIsValid(t *testing.T) {
	theme := ExampleTheme()
	require.NotEmpty(t, theme.Replacements)
	for _, r := range theme.Replacements {
		assert.NotEmpty(t, r.Pattern)
		assert.NotEmpty(t, r.Replacement)
	}
}
