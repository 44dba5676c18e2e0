package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prasenjit/oas-minify/internal/minify"
	"github.com/prasenjit/oas-minify/internal/parser"
	"github.com/prasenjit/oas-minify/internal/render"
)

var minifyCmd = &cobra.Command{
	Use:   "minify",
	Short: "Extract operations from an OpenAPI document",
	Long: `Reads an OpenAPI 3 document from a file or http(s) URL, keeps the requested
operations and the components they reference, and writes the result.

Operations are requested by operationId, by "METHOD /path", or by a text that
appears in an operation's summary or description. The minimal document goes to
--output (or stdout) and a report goes to stderr. The command fails when no
operation could be selected or strict validation rejects the result.`,
	Example: `  oas-minify minify --input petstore.yaml --ops listPets,"POST /pets" --output min.yaml
  oas-minify minify -i https://example.com/openapi.json --ops getUser --format json`,
	RunE: runMinify,
}

var (
	minifyInput          string
	minifyOps            []string
	minifyOutput         string
	minifyNoDescriptions bool
)

func init() {
	flags := minifyCmd.Flags()
	flags.StringVarP(&minifyInput, "input", "i", "", "OpenAPI document path or URL")
	flags.StringSliceVar(&minifyOps, "ops", nil, "Operations to keep (comma separated)")
	flags.StringVarP(&minifyOutput, "output", "o", "", "Output file (default: stdout)")
	flags.String("format", "", "Output format: yaml or json (default: from --output or config)")
	flags.BoolVar(&minifyNoDescriptions, "no-descriptions", false, "Strip descriptions")
	flags.Bool("examples", false, "Keep examples")
	flags.Bool("strict", false, "Validate the result against the OpenAPI specification")

	minifyCmd.MarkFlagRequired("input")
	minifyCmd.MarkFlagRequired("ops")

	viper.BindPFlag("minify.includeExamples", flags.Lookup("examples"))
	viper.BindPFlag("minify.strictValidation", flags.Lookup("strict"))
}

// minifyParams are the resolved inputs of one minify invocation.
type minifyParams struct {
	Input   string
	Ops     []string
	Output  string
	Format  render.Format
	Options minify.Options
}

func runMinify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := cfg.MinifyOptions()
	if minifyNoDescriptions {
		opts.IncludeDescriptions = false
	}

	formatName := cfg.Minify.Format
	if cmd.Flags().Changed("format") {
		formatName, _ = cmd.Flags().GetString("format")
	} else if minifyOutput != "" {
		formatName = string(render.FormatFor(minifyOutput))
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return err
	}

	params := minifyParams{
		Input:   minifyInput,
		Ops:     minifyOps,
		Output:  minifyOutput,
		Format:  format,
		Options: opts,
	}
	m := minify.New(opts,
		minify.WithValidator(parser.NewValidator()),
		minify.WithLogger(newLogger(cfg)))

	return executeMinify(cmd.Context(), m, params, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// executeMinify loads the input, minifies it and writes the document to the
// output file or stdout and the report to stderr.
func executeMinify(ctx context.Context, m *minify.Minifier, p minifyParams, stdout, stderr io.Writer) error {
	doc, err := parser.NewParser().Load(ctx, p.Input)
	if err != nil {
		return err
	}

	ops := make([]string, 0, len(p.Ops))
	for _, op := range p.Ops {
		if op = strings.TrimSpace(op); op != "" {
			ops = append(ops, op)
		}
	}

	result := m.Minify(ctx, doc, ops)
	if err := render.WriteReport(stderr, result); err != nil {
		return err
	}
	if !result.Success {
		return errors.New("minification failed")
	}

	if p.Output == "" {
		return render.Render(stdout, result.Document, p.Format)
	}

	data, err := render.Marshal(result.Document, p.Format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.Output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.Output, err)
	}
	fmt.Fprintf(stderr, "Wrote %s\n", p.Output)
	return nil
}
