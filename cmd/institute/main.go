// Package main provides the entry point for the institute portal API server and its tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "institute",
	Short:        "Institute portal HTTP API server",
	Long:         "Serves the institute site's chatbot, résumé composer, course catalog, payments and admissions API, plus maintenance tools.",
	SilenceUsage: true,
}

// @title						Institute Portal API
// @version					1.0
// @description				Chatbot, résumé composer, courses, payments and admissions for the institute site.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
