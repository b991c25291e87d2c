package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/voice-api/internal/config"
	"github.com/jonathan/voice-api/internal/db"
	"github.com/spf13/cobra"
)

var migratePrint bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  "Creates the brands, voice_profiles and voice_evaluations tables in DATABASE_URL. The schema is idempotent and safe to re-apply.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrint {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), db.Schema())
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Infow("database schema applied")
	_, _ = fmt.Fprintf(os.Stdout, "Schema applied\n")
	return nil
}
