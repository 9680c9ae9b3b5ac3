package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/institute-portal/internal/resume"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a résumé document to HTML, LaTeX or PDF",
	Long:  "Reads a résumé document JSON file, validates it and writes the rendered résumé. PDF output drives a headless Chrome.",
	RunE:  runRender,
}

var (
	renderInputFile string
	renderFormat    string
	renderTemplate  string
	renderOutput    string
	renderTimeout   time.Duration
)

func init() {
	renderCmd.Flags().StringVarP(&renderInputFile, "in", "i", "", "Path to résumé document JSON file (required)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "pdf", "Output format: html, tex or pdf")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Template to use instead of the document's own")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output path (default: derived from the candidate name)")
	renderCmd.Flags().DurationVar(&renderTimeout, "chrome-timeout", 30*time.Second, "Time limit for PDF export")

	_ = renderCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	doc, err := resume.LoadDocument(renderInputFile)
	if err != nil {
		return err
	}
	format, err := resume.ParseFormat(renderFormat)
	if err != nil {
		return err
	}
	if renderTemplate != "" {
		tmpl, err := resume.ParseTemplate(renderTemplate)
		if err != nil {
			return err
		}
		doc.Template = tmpl
	}

	var exporter resume.PDFExporter
	if format == resume.FormatPDF {
		exporter = resume.ChromeExporter{Timeout: renderTimeout}
	}
	artifact, err := resume.Generate(cmd.Context(), doc, format, exporter)
	if err != nil {
		return err
	}

	out := renderOutput
	if out == "" {
		out = artifact.Filename
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(artifact.Data))
	return nil
}
