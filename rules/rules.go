// Package rules compiles a theme into an immutable rule set and applies it
// to reassembled output units. Patterns operate on the raw text of a unit;
// escape sequences are not interpreted or protected, so rule authors must
// write patterns that don't straddle them.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Aurzex/NyanTheme/config"
	"github.com/Aurzex/NyanTheme/log"
)

// Rule is one compiled substitution. Immutable after Compile.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
	// commands is the lowercased filter set; empty means the rule applies
	// to every command.
	commands []string
}

// Commands returns the lowercased filter set; empty means unrestricted.
func (r *Rule) Commands() []string {
	return r.commands
}

// AppliesTo reports whether the rule is active for the given command name.
// The name must already be normalized (base name, lowercase).
func (r *Rule) AppliesTo(command string) bool {
	if len(r.commands) == 0 {
		return true
	}
	for _, c := range r.commands {
		if c == command {
			return true
		}
	}
	return false
}

// RuleSet is an ordered sequence of compiled rules for one locale.
// Read-only after Compile; safe to share without locking.
type RuleSet struct {
	rules  []Rule
	locale string
}

// Compile validates and compiles every replacement in theme order, keeping
// only rules for the given locale. An invalid pattern fails the whole
// compile: a broken theme is rejected at startup, not at first match.
func Compile(replacements []config.Replacement, locale string) (*RuleSet, error) {
	if locale == "" {
		locale = config.DefaultLocale
	}

	set := &RuleSet{locale: locale}
	for i, r := range replacements {
		pattern, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern in replacement %d (%q): %w", i, r.Pattern, err)
		}

		ruleLocale := r.Locale
		if ruleLocale == "" {
			ruleLocale = config.DefaultLocale
		}
		if ruleLocale != locale {
			continue
		}

		commands := make([]string, 0, len(r.FilterCommands))
		for _, c := range r.FilterCommands {
			commands = append(commands, strings.ToLower(c))
		}

		set.rules = append(set.rules, Rule{
			Pattern:     pattern,
			Replacement: r.Replacement,
			commands:    commands,
		})
	}
	return set, nil
}

// Len returns the number of active rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Locale returns the locale this set was compiled for.
func (s *RuleSet) Locale() string {
	return s.locale
}

// Rules returns the compiled rules in theme order.
func (s *RuleSet) Rules() []Rule {
	return s.rules
}

// Apply runs the cascade: every rule whose filter matches the command
// rewrites the output of the previous rule, in theme order. Input that no
// pattern matches comes back unchanged. A panic while rewriting degrades to
// pass-through for this unit only.
func (s *RuleSet) Apply(unit []byte, command string) (out []byte) {
	if len(s.rules) == 0 || len(unit) == 0 {
		return unit
	}

	defer func() {
		if r := recover(); r != nil {
			if log.WarningLog != nil {
				log.WarningLog.Printf("rewrite panic, passing unit through unchanged: %v", r)
			}
			out = unit
		}
	}()

	out = unit
	for i := range s.rules {
		rule := &s.rules[i]
		if !rule.AppliesTo(command) {
			continue
		}
		out = rule.Pattern.ReplaceAll(out, []byte(rule.Replacement))
	}
	return out
}

// NormalizeCommand reduces a command path to the name rules filter on:
// the path base, lowercased.
func NormalizeCommand(command string) string {
	if i := strings.LastIndexByte(command, '/'); i >= 0 {
		command = command[i+1:]
	}
	return strings.ToLower(command)
}
