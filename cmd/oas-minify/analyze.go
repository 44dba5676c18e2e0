package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/prasenjit/oas-minify/internal/minify"
	"github.com/prasenjit/oas-minify/internal/parser"
	"github.com/prasenjit/oas-minify/internal/render"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize the operations of an OpenAPI document",
	Long: `Lists every operation of an OpenAPI 3 document grouped by tag and path, the
operations whose reference closure holds five or more components, and how many
operations use each schema.`,
	RunE: runAnalyze,
}

var (
	analyzeInput string
	analyzeJSON  bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "OpenAPI document path or URL")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the analysis as JSON")
	analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	doc, err := parser.NewParser().Load(cmd.Context(), analyzeInput)
	if err != nil {
		return err
	}
	return writeAnalysis(cmd.OutOrStdout(), minify.Analyze(doc), analyzeJSON)
}

func writeAnalysis(w io.Writer, a *minify.Analysis, asJSON bool) error {
	if !asJSON {
		return render.WriteAnalysis(w, a)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}
