package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mindwell/wellness-api/internal/config"
	"github.com/mindwell/wellness-api/internal/database"
	"github.com/mindwell/wellness-api/internal/engine"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <email>",
		Short: "Run the recommendation pipeline for one user",
		Long:  "Run the recommendation pipeline synchronously for one user and print the result without persisting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]

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

			trackingRepo := database.NewTrackingRepository(db)
			doc, err := trackingRepo.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("failed to load tracking data: %w", err)
			}
			if doc == nil {
				fmt.Printf("No tracking data for %s\n", email)
				return nil
			}

			eng := engine.New(engine.Thresholds{
				ConfidenceThreshold: cfg.ConfidenceThreshold,
				MinEngagementTime:   cfg.MinEngagementSeconds,
				MinVisitCount:       1,
				MinScore:            cfg.MinScoreThreshold,
			})
			result := eng.Analyze(doc, time.Now())

			if !result.ShouldRecommend {
				fmt.Printf("No recommendation: %s\n", result.Message)
				if result.TopPage != "" {
					fmt.Printf("Top page: %s (confidence %.2f)\n", result.TopPage, result.Confidence)
				}
				return nil
			}

			fmt.Printf("Recommendation for %s:\n", email)
			fmt.Printf("  Page:         %s (%s)\n", result.Page, engine.DisplayName(result.Page))
			fmt.Printf("  Confidence:   %.2f\n", result.Confidence)
			fmt.Printf("  Score:        %.2f\n", result.Score)
			fmt.Printf("  Total time:   %.1fs over %d visits\n", result.TotalTime, result.VisitCount)
			fmt.Printf("  Category:     %s\n", result.Category)
			return nil
		},
	}

	return cmd
}
