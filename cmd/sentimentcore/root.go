// Package main implements the sentimentcore CLI: the host that wires the
// Aggregator, CRF-Tagger, and their supporting packages (tokenizer, sink,
// config, jobrunner) into two subcommands, analyze and tag.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/crawlserv-go/sentimentcore/config"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sentimentcore",
	Short: "Lexicon and CRF sentiment analysis over time-bucketed text corpora",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(tagCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// zapField is a small convenience wrapper so call sites can pass loggable
// values without importing zap's field constructors directly.
func zapField(key, value string) zap.Field {
	return zap.String(key, value)
}
