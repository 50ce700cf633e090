package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/mindwell/wellness-api/internal/config"
	"github.com/mindwell/wellness-api/internal/database"
	"github.com/mindwell/wellness-api/internal/services/ai"
	"github.com/spf13/cobra"
)

// NewPromptCmd creates the prompt command group
func NewPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Generate prompts from a user's chat history",
	}

	cmd.AddCommand(newPromptMusicCmd())

	return cmd
}

func newPromptMusicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "music <email>",
		Short: "Print the mood-based music prompt for a user",
		Long:  "Average the sentiment of the user's recent chat entries and print the matching mood prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			chatRepo := database.NewChatRepository(db)
			history, err := chatRepo.RecentByEmail(ctx, args[0], ai.MaxSentimentEntries)
			if err != nil {
				return fmt.Errorf("failed to load chat history: %w", err)
			}

			prompt, err := ai.NewStaticProvider().MusicPrompt(ctx, history)
			if err != nil {
				return fmt.Errorf("failed to build music prompt: %w", err)
			}

			fmt.Println(prompt)
			return nil
		},
	}
}
