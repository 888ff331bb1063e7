package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aurzex/NyanTheme/config"
	"github.com/Aurzex/NyanTheme/log"
	"github.com/Aurzex/NyanTheme/rules"
	"github.com/Aurzex/NyanTheme/session"
	"github.com/Aurzex/NyanTheme/ui"
)

// exitConfig is returned for theme/spawn failures, distinct from any likely
// child exit code.
const exitConfig = 2

var (
	version    = "0.1.0"
	applyFlag  string
	localeFlag string
	exitCode   int

	rootCmd = &cobra.Command{
		Use:   "nyantheme --apply <theme.json> -- <command> [args...]",
		Short: "Nyan Theme - run a command under a pty and retheme its output with regex rules.",
		Long: "Nyan Theme runs an interactive command attached to a pseudo-terminal and\n" +
			"applies a theme (ordered regex substitution rules from a JSON file) to its\n" +
			"output stream. Input, prompts, colors, and signals pass through untouched.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize()
			defer log.Close()

			set, err := loadRuleSet()
			if err != nil {
				exitCode = exitConfig
				return err
			}

			if len(args) == 0 {
				exitCode = exitConfig
				return fmt.Errorf("no command specified\nexample: nyantheme --apply theme.json -- python3 -i")
			}

			sess, err := session.Start(args[0], args[1:])
			if err != nil {
				exitCode = exitConfig
				return err
			}
			defer sess.Close()

			log.InfoLog.Printf("session started: command=%s pid=%d rules=%d locale=%s",
				sess.Command(), sess.Pid(), set.Len(), set.Locale())

			// The child's exit code becomes ours, errors or not.
			code, err := session.NewProxy(sess, set).Run()
			exitCode = code
			if err != nil {
				if exitCode == 0 {
					exitCode = 1
				}
				return err
			}
			return nil
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check [theme.json]",
		Short: "Validate a theme file and print its compiled rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize()
			defer log.Close()

			if len(args) > 0 {
				applyFlag = args[0]
			}
			set, err := loadRuleSet()
			if err != nil {
				exitCode = exitConfig
				fmt.Fprintln(os.Stderr, ui.RenderError(err.Error()))
				return nil
			}

			fmt.Print(ui.RenderRuleTable(set))
			fmt.Println(ui.RenderOK(fmt.Sprintf("%d rules compiled for locale %q", set.Len(), set.Locale())))
			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like theme paths and an example theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize()
			defer log.Close()

			themePath, err := config.DefaultThemePath()
			if err != nil {
				return fmt.Errorf("failed to resolve default theme path: %w", err)
			}

			exampleJSON, _ := json.MarshalIndent(config.ExampleTheme(), "", "  ")
			fmt.Printf("Default theme: %s\nExample theme:\n%s\n", themePath, exampleJSON)
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nyantheme",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("nyantheme version %s\n", version)
		},
	}
)

// loadRuleSet resolves the theme path, loads the theme, and compiles it for
// the active locale. All failures here are ConfigError: fatal before any
// child is spawned.
func loadRuleSet() (*rules.RuleSet, error) {
	themePath := applyFlag
	if themePath == "" {
		fallback, err := config.DefaultThemePath()
		if err == nil {
			if _, statErr := os.Stat(fallback); statErr == nil {
				themePath = fallback
			}
		}
	}
	if themePath == "" {
		return nil, fmt.Errorf("no theme file: pass --apply <theme.json> or create the default theme (see 'nyantheme debug')")
	}

	theme, err := config.LoadTheme(themePath)
	if err != nil {
		return nil, err
	}
	return rules.Compile(theme.Replacements, localeFlag)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&applyFlag, "apply", "a", "",
		"JSON theme file with the replacement rules to apply")
	rootCmd.PersistentFlags().StringVarP(&localeFlag, "locale", "l", config.DefaultLocale,
		"Locale whose rules are active (rules without a locale use 'default')")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
