package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardforge/cardforge/version"
)

var (
	cfgFile string
	homeDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cardforge",
	Short: "Turn extracted documents into layered learning artifacts",
	Long: `Cardforge turns an extracted document (text plus page structure) into a
layered set of learning artifacts: flashcards, applied scenarios,
multiple-choice quizzes, chapter summaries, and a book overview.

The pipeline includes:
  - Chapter structure detection with model-assisted mapping and fallbacks
  - Overlap-preserving chunking and a semantic retrieval index
  - Dependency-ordered card synthesis across four tiers
  - A validation gate with model-escalation regeneration
  - Content-addressed caching so reruns are lookups`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.cardforge/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "cardforge home directory (default: ~/.cardforge)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}
