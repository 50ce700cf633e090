package commands

import (
	"fmt"
	"time"

	"github.com/mindwell/wellness-api/internal/auth"
	"github.com/mindwell/wellness-api/internal/config"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command
func NewTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <email>",
		Short: "Issue an access token for a user",
		Long:  "Issue a signed access token for a user, for testing authenticated endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			verifier, err := auth.NewVerifier(cfg.JWTSecret)
			if err != nil {
				return fmt.Errorf("JWT_SECRET must be set: %w", err)
			}

			token, err := verifier.Issue(args[0], ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")

	return cmd
}
