package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prasenjit/oas-minify/internal/config"
	"github.com/prasenjit/oas-minify/internal/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "oas-minify",
		Short: "oas-minify - cut OpenAPI 3 documents down to the operations you need",
		Long: `oas-minify extracts a subset of operations from an OpenAPI 3 document and keeps
only the components those operations reference, directly or transitively.

It runs as a one-shot CLI (minify, analyze) or as an HTTP service (serve) that
stores documents and records every minification run.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(minifyCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// OAS_MINIFY_SERVER_PORT overrides server.port
	viper.SetEnvPrefix("OAS_MINIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(config.Default())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so that environment
// variables and Unmarshal see it.
func setDefaults(cfg *config.Config) {
	// Server defaults
	viper.SetDefault("server.port", cfg.Server.Port)
	viper.SetDefault("server.host", cfg.Server.Host)
	viper.SetDefault("server.shutdownTimeout", cfg.Server.ShutdownTimeout)

	// Storage defaults
	viper.SetDefault("storage.type", cfg.Storage.Type)
	viper.SetDefault("storage.path", cfg.Storage.Path)

	// Minify defaults
	viper.SetDefault("minify.includeDescriptions", cfg.Minify.IncludeDescriptions)
	viper.SetDefault("minify.includeExamples", cfg.Minify.IncludeExamples)
	viper.SetDefault("minify.strictValidation", cfg.Minify.StrictValidation)
	viper.SetDefault("minify.format", cfg.Minify.Format)

	// Events defaults
	viper.SetDefault("events.maxRuns", cfg.Events.MaxRuns)

	// Logging defaults
	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("logging.format", cfg.Logging.Format)
}

// loadConfig decodes the merged viper settings and validates them.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes structured logs to stderr so stdout stays free for documents.
func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(os.Stderr, cfg.Logging)
}
