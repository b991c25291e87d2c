package main

import (
	"fmt"

	"github.com/jonathan/voice-api/internal/config"
	"github.com/jonathan/voice-api/internal/server"
	"github.com/spf13/cobra"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for an API client",
	Long:  "Signs a JWT for the given subject with JWT_SECRET. The token is accepted by a server started with the same secret.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "API client name to embed in the token (required)")
	if err := tokenCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(tokenSubject)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
