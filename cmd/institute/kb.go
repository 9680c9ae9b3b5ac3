package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/institute-portal/internal/catalog"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the chatbot knowledge base and course catalog",
}

var kbValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the knowledge base and course catalog",
	Long:  "Loads the knowledge base and course catalog (embedded, or from the given files) and checks them against their schemas.",
	RunE:  runKBValidate,
}

var (
	kbKnowledgeFile string
	kbCatalogFile   string
)

func init() {
	kbValidateCmd.Flags().StringVarP(&kbKnowledgeFile, "knowledge", "k", "", "Knowledge base YAML file (default: embedded)")
	kbValidateCmd.Flags().StringVarP(&kbCatalogFile, "catalog", "c", "", "Course catalog YAML file (default: embedded)")

	kbCmd.AddCommand(kbValidateCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBValidate(cmd *cobra.Command, _ []string) error {
	kb, err := loadKnowledge(kbKnowledgeFile)
	if err != nil {
		return err
	}

	var courses *catalog.Catalog
	if kbCatalogFile == "" {
		courses, err = catalog.Default()
	} else {
		var data []byte
		data, err = os.ReadFile(kbCatalogFile)
		if err != nil {
			return fmt.Errorf("failed to read course catalog %s: %w", kbCatalogFile, err)
		}
		courses, err = catalog.Parse(data)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Knowledge base OK: %d initial prompts, %d follow-up questions\n",
		len(kb.InitialPrompts()), len(kb.FollowUpIDs()))
	fmt.Fprintf(out, "Course catalog OK: %d courses in %d categories\n",
		len(courses.List()), len(courses.Categories()))
	return nil
}
