package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// configPath is the optional YAML config file.
	configPath string

	// debug switches to the development logger.
	debug bool

	logger = zap.NewNop()
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfprep",
	Short: "Ask questions about a PDF",
	Long: `pdfprep extracts the text of a PDF, picks the sentences that share words
with your question, and asks an OpenAI model to answer from them.

Answers are cached on disk by prompt, so asking the same question about the
same document again does not call the API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(debug)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "",
		"Path to a YAML config file",
	)
	rootCmd.PersistentFlags().BoolVar(
		&debug, "debug", false,
		"Enable development logging",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(cacheCmd)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
