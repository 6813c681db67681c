// Package main provides the tarmerge CLI. It merges compressed tar archives
// into a deduplicated file tree (versioned names where paths collide with
// differing content) and generates a Markdown setup guide for an extracted
// Python source tree.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tarmerge/cmd/tarmerge/commands"
)

var (
	verbose bool
	quiet   bool
)

const version = "0.4.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tarmerge",
		Short: "Archive version merging and setup-guide generation",
		Long: `tarmerge processes exported source archives.

Commands:
  merge   Extract archives and merge file versions by content hash
  guide   Generate a Markdown setup guide for an extracted source tree`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(commands.NewMergeCommand())
	rootCmd.AddCommand(commands.NewGuideCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "tarmerge %s\n", version)
		},
	}
}
