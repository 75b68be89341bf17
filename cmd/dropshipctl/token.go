package main

import (
	"fmt"
	"time"

	"github.com/erp/dropship/internal/infrastructure/auth"
	"github.com/erp/dropship/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
	tokenScopes  []string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin API token",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject, usually an operator email")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scope", nil, "Scopes to grant (default: read and write)")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	for _, s := range tokenScopes {
		if s != auth.ScopeRead && s != auth.ScopeWrite {
			return fmt.Errorf("unknown scope %q", s)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	token, err := auth.NewJWTService(cfg.JWT).Issue(tokenSubject, tokenTTL, tokenScopes...)
	if err != nil {
		return err
	}
	return printJSON(cmd, token)
}
