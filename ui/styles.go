// Package ui styles the human-facing output of the check and debug
// subcommands. The proxy itself never goes through here: proxied child
// output must reach the terminal byte-exact apart from rule rewrites.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Aurzex/NyanTheme/rules"
)

// Status colors, colorblind-safe pairings with a shape cue in the text.
var (
	StatusSuccess = lipgloss.AdaptiveColor{Light: "#22C55E", Dark: "#22C55E"}
	StatusError   = lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#EF4444"}

	TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(StatusSuccess)
	errStyle    = lipgloss.NewStyle().Foreground(StatusError)
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(TextMuted)
)

const (
	patternColWidth     = 40
	replacementColWidth = 30
)

// RenderOK formats a success line.
func RenderOK(msg string) string {
	return okStyle.Render("+ " + msg)
}

// RenderError formats an error line.
func RenderError(msg string) string {
	return errStyle.Render("x " + msg)
}

// Truncate shortens s to max display columns, by rune width rather than
// byte length so wide characters don't overflow the table.
func Truncate(s string, max int) string {
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "…")
}

// RenderRuleTable renders a compiled rule set as an aligned table in theme
// order: index, pattern, replacement, command filter.
func RenderRuleTable(set *rules.RuleSet) string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %s %s %s",
		"#", pad("PATTERN", patternColWidth), pad("REPLACEMENT", replacementColWidth), "COMMANDS")))
	sb.WriteString("\n")

	for i, rule := range set.Rules() {
		commands := "(all)"
		if len(rule.Commands()) > 0 {
			commands = strings.Join(rule.Commands(), ", ")
		}
		pattern := Truncate(rule.Pattern.String(), patternColWidth)
		replacement := Truncate(rule.Replacement, replacementColWidth)

		sb.WriteString(fmt.Sprintf("%-4d %s %s %s\n",
			i, pad(pattern, patternColWidth), pad(replacement, replacementColWidth),
			mutedStyle.Render(commands)))
	}

	return sb.String()
}

// pad right-pads by display width; fmt's %-*s pads by byte count and
// misaligns columns containing wide runes.
func pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
