package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ThemeFileName is the default theme file looked up when --apply is omitted.
	ThemeFileName = "theme.json"

	// DefaultLocale is assumed for replacements that don't declare one.
	DefaultLocale = "default"
)

// Replacement is one raw substitution rule as it appears in a theme file.
// Patterns use Go regexp syntax; replacement templates may reference capture
// groups with $1, $2, ... or ${name}. The replacement text must be non-empty:
// rules restyle output, they don't delete it, and LoadTheme rejects a rule
// with an empty replacement.
type Replacement struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	// Locale restricts the rule to one locale. Empty means "default".
	Locale string `json:"locale,omitempty"`
	// FilterCommands restricts the rule to specific child program names
	// (base name, case-insensitive). Empty means the rule applies to all.
	FilterCommands []string `json:"filter_commands,omitempty"`
}

// Theme is a parsed theme file: an ordered list of replacements.
// Order matters; rules cascade first-to-last.
type Theme struct {
	Replacements []Replacement `json:"replacements"`
}

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".nyantheme"), nil
}

// DefaultThemePath returns the fallback theme path under the config dir.
func DefaultThemePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ThemeFileName), nil
}

// LoadTheme reads and validates a theme file. Any problem is fatal to the
// caller: a broken theme must be rejected before the child is spawned, not
// discovered mid-session.
func LoadTheme(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file %s: %w", path, err)
	}

	var theme Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("failed to parse theme file %s: %w", path, err)
	}

	if theme.Replacements == nil {
		return nil, fmt.Errorf("theme file %s is missing the 'replacements' section", path)
	}

	for i, r := range theme.Replacements {
		if r.Pattern == "" {
			return nil, fmt.Errorf("replacement %d is missing 'pattern'", i)
		}
		if r.Replacement == "" {
			return nil, fmt.Errorf("replacement %d is missing 'replacement'", i)
		}
		if r.Locale == "" {
			theme.Replacements[i].Locale = DefaultLocale
		}
	}

	return &theme, nil
}

// ExampleTheme returns a small built-in theme, used by the debug command to
// show the expected file shape.
func ExampleTheme() *Theme {
	return &Theme{
		Replacements: []Replacement{
			{
				Pattern:        `NameError: name '(.+)' is not defined`,
				Replacement:    "(NameError): $1 is undefined",
				FilterCommands: []string{"python3"},
			},
			{
				Pattern:     `command not found`,
				Replacement: "no such command",
			},
		},
	}
}
