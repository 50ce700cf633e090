package main

import (
	"fmt"
	"os"

	"github.com/mindwell/wellness-api/cmd/admin/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "wellness-admin",
		Short: "Admin tool for the wellness API",
		Long:  "CLI tool for inspecting tracking data, running analyses, and managing recommendations",
	}

	rootCmd.AddCommand(commands.NewAnalyzeCmd())
	rootCmd.AddCommand(commands.NewRecommendationCmd())
	rootCmd.AddCommand(commands.NewTrackingCmd())
	rootCmd.AddCommand(commands.NewTokenCmd())
	rootCmd.AddCommand(commands.NewPromptCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
