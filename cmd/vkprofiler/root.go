package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"vkprofiler/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "vkprofiler",
	Short: "Score VK users against a reference audience",
	Long: `vkprofiler collects the wall posts and group subscriptions of a set of
reference VK users, builds a TF-IDF profile from them and scores how closely
a new user matches it.

Two scores are reported:
  - text similarity: cosine between the new user's posts and the reference mean
  - group similarity: how often the reference users share the new user's groups

An access token is required. Store one with 'vkprofiler auth login'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || !ui.IsTerminal() {
			ui.DisableColor()
		}
		if quiet || cmd.Name() == "help" || cmd.Name() == "version" {
			return
		}
		// machine readable reports go to stdout untouched
		if cmd.Name() == "compare" && (jsonOutput || reportFormat != ui.FormatText) {
			return
		}
		ui.PrintLogo()
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Red("Error: "+err.Error()))
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, ui.Yellow("Hint: "+hint))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.vkprofiler.yaml or ~/.config/vkprofiler/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress the logo and progress output")

	rootCmd.SetVersionTemplate(`vkprofiler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
