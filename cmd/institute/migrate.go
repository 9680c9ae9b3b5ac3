package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/institute-portal/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	Long:  "Creates the leads, payment order and admission tables if they do not exist. Safe to run repeatedly.",
	RunE:  runMigrate,
}

var (
	migrateDatabaseURL string
	migratePrint       bool
)

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "Database URL (default: DATABASE_URL)")
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the statements instead of applying them")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if migratePrint {
		for _, stmt := range db.Statements() {
			fmt.Fprintf(out, "%s;\n\n", stmt)
		}
		return nil
	}

	url := databaseURL(migrateDatabaseURL)
	if url == "" {
		return fmt.Errorf("--db-url or DATABASE_URL is required")
	}

	database, err := db.Connect(cmd.Context(), url)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Applied %d statements\n", len(db.Statements()))
	return nil
}

func databaseURL(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("DATABASE_URL")
}
