// Package main provides the entry point for the Voice API server and its tooling.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/voice-api/internal/config"
	"github.com/jonathan/voice-api/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	debug  bool
	logger *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "voice_api",
	Short: "Voice API - Brand Voice Management Service",
	Long:  "Voice API registers brands, derives versioned voice profiles from their websites and writing samples, and scores text against those profiles via REST API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(debug || config.ParseBool(os.Getenv("DEBUG")))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
