package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/institute-portal/internal/db"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List recently captured chatbot leads",
	Long:  "Prints the newest leads saved by the postgres lead sink, one JSON object per line.",
	RunE:  runLeads,
}

var (
	leadsDatabaseURL string
	leadsLimit       int
)

func init() {
	leadsCmd.Flags().StringVar(&leadsDatabaseURL, "db-url", "", "Database URL (default: DATABASE_URL)")
	leadsCmd.Flags().IntVarP(&leadsLimit, "limit", "n", 20, "Number of leads to list")
	rootCmd.AddCommand(leadsCmd)
}

func runLeads(cmd *cobra.Command, _ []string) error {
	url := databaseURL(leadsDatabaseURL)
	if url == "" {
		return fmt.Errorf("--db-url or DATABASE_URL is required")
	}
	if leadsLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	database, err := db.Connect(cmd.Context(), url)
	if err != nil {
		return err
	}
	defer database.Close()

	recent, err := database.RecentLeads(cmd.Context(), leadsLimit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, lead := range recent {
		if err := enc.Encode(lead); err != nil {
			return err
		}
	}
	return nil
}
