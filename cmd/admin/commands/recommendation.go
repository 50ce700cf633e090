package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mindwell/wellness-api/internal/config"
	"github.com/mindwell/wellness-api/internal/database"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewRecommendationCmd creates the recommendation command group
func NewRecommendationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommendation",
		Short: "Inspect and manage stored recommendations",
	}

	cmd.AddCommand(newRecommendationGetCmd())
	cmd.AddCommand(newRecommendationClearCmd())
	cmd.AddCommand(newRecommendationSweepCmd())

	return cmd
}

func newRecommendationGetCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "get <email>",
		Short: "Print the stored recommendation for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecommendationRepo(func(ctx context.Context, repo *database.RecommendationRepository) error {
				rec, err := repo.GetByEmail(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get recommendation: %w", err)
				}
				if rec == nil {
					fmt.Printf("No stored recommendation for %s\n", args[0])
					return nil
				}

				if asYAML {
					out, err := yaml.Marshal(rec)
					if err != nil {
						return fmt.Errorf("failed to marshal recommendation: %w", err)
					}
					fmt.Print(string(out))
					return nil
				}

				fmt.Printf("Recommendation for %s:\n", rec.Email)
				fmt.Printf("  Page:         %s (%s)\n", rec.Payload.Page, rec.Payload.PageDisplayName)
				fmt.Printf("  Message:      %s\n", rec.Payload.Message)
				fmt.Printf("  Confidence:   %.2f\n", rec.Payload.Confidence)
				fmt.Printf("  Generated at: %s\n", rec.GeneratedAt.Format(time.RFC3339))
				fmt.Printf("  Expires at:   %s\n", rec.ExpiresAt.Format(time.RFC3339))
				if rec.Expired(time.Now()) {
					fmt.Println("  (expired; will be removed on next read or sweep)")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the full record as YAML")

	return cmd
}

func newRecommendationClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <email>",
		Short: "Delete the stored recommendation for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecommendationRepo(func(ctx context.Context, repo *database.RecommendationRepository) error {
				if err := repo.Delete(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to delete recommendation: %w", err)
				}
				fmt.Printf("Cleared recommendation for %s\n", args[0])
				return nil
			})
		},
	}
}

func newRecommendationSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete all expired recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecommendationRepo(func(ctx context.Context, repo *database.RecommendationRepository) error {
				removed, err := repo.DeleteExpired(ctx, time.Now())
				if err != nil {
					return fmt.Errorf("failed to sweep recommendations: %w", err)
				}
				fmt.Printf("Removed %d expired recommendation(s)\n", removed)
				return nil
			})
		},
	}
}

func withRecommendationRepo(fn func(context.Context, *database.RecommendationRepository) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	return fn(ctx, database.NewRecommendationRepository(db))
}
