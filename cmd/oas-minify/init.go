package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration and data directory",
	Long: `Creates the default configuration file (config.yaml) and data directory structure.

This command will:
  - Create config.yaml with default settings and file storage
  - Create data/specs/ for stored OpenAPI documents
  - Create data/runs/ for recorded minification runs

If config.yaml already exists, it will not be overwritten unless --force is used.`,
	RunE: runInit,
}

var (
	initForce bool
	initPath  string
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
	initCmd.Flags().StringVarP(&initPath, "path", "p", ".", "Path where to initialize (default: current directory)")
}

func runInit(cmd *cobra.Command, args []string) error {
	absPath, err := filepath.Abs(initPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	configFile, err := writeInitialLayout(absPath, initForce)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file: %s\n", configFile)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Initialization complete! You can now start the server with:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", absPath)
	fmt.Fprintln(out, "  oas-minify serve")
	fmt.Fprintln(out)

	return nil
}

// writeInitialLayout creates the data directories and config.yaml under dir
// and returns the config file path.
func writeInitialLayout(dir string, force bool) (string, error) {
	configFile := filepath.Join(dir, "config.yaml")
	dataDir := filepath.Join(dir, "data")

	if _, err := os.Stat(configFile); err == nil && !force {
		return "", fmt.Errorf("config.yaml already exists. Use --force to overwrite")
	}

	for _, d := range []string{
		filepath.Join(dataDir, "specs"),
		filepath.Join(dataDir, "runs"),
	} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Storage.Type = "file"
	cfg.Storage.Path = "./data"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate config: %w", err)
	}

	header := "# oas-minify configuration\n" +
		"# Every key can be overridden with an OAS_MINIFY_ environment variable,\n" +
		"# e.g. OAS_MINIFY_SERVER_PORT=9090\n\n"

	if err := os.WriteFile(configFile, append([]byte(header), data...), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configFile, nil
}
