package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/mindwell/wellness-api/internal/config"
	"github.com/mindwell/wellness-api/internal/database"
	"github.com/spf13/cobra"
)

// NewTrackingCmd creates the tracking command group
func NewTrackingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracking",
		Short: "Inspect stored visit tracking data",
	}

	cmd.AddCommand(newTrackingShowCmd())
	cmd.AddCommand(newTrackingListCmd())

	return cmd
}

func newTrackingShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <email>",
		Short: "Print the visit history for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTrackingRepo(func(ctx context.Context, repo *database.TrackingRepository) error {
				doc, err := repo.GetByEmail(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to load tracking data: %w", err)
				}
				if doc == nil {
					fmt.Printf("No tracking data for %s\n", args[0])
					return nil
				}

				fmt.Printf("Visit history for %s (%d visits in %d groups):\n", doc.Email, doc.TotalVisits(), len(doc.UserVisits))
				for _, group := range doc.UserVisits {
					if len(group.Visits) == 0 {
						continue
					}
					fmt.Printf("  %s: %d visit(s)\n", group.Visits[0].Page, group.Count)
					for _, visit := range group.Visits {
						fmt.Printf("    %s  %s\n", visit.Timestamp, visit.TimeSpent)
					}
				}
				return nil
			})
		},
	}
}

func newTrackingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracked users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTrackingRepo(func(ctx context.Context, repo *database.TrackingRepository) error {
				emails, err := repo.ListEmails(ctx)
				if err != nil {
					return fmt.Errorf("failed to list tracked users: %w", err)
				}
				if len(emails) == 0 {
					fmt.Println("No tracked users")
					return nil
				}
				for _, email := range emails {
					fmt.Println(email)
				}
				return nil
			})
		},
	}
}

func withTrackingRepo(fn func(context.Context, *database.TrackingRepository) error) error {
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

	return fn(ctx, database.NewTrackingRepository(db))
}
