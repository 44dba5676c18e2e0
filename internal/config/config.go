package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prasenjit/oas-minify/internal/minify"
	"github.com/prasenjit/oas-minify/internal/render"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Minify  MinifyConfig  `yaml:"minify" mapstructure:"minify"`
	Events  EventsConfig  `yaml:"events" mapstructure:"events"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	Host            string        `yaml:"host" mapstructure:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" mapstructure:"shutdownTimeout"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	Type string `yaml:"type" mapstructure:"type"` // "memory" or "file"
	Path string `yaml:"path" mapstructure:"path"` // Path for file storage
}

// MinifyConfig holds the default minification options.
type MinifyConfig struct {
	IncludeDescriptions bool   `yaml:"includeDescriptions" mapstructure:"includeDescriptions"`
	IncludeExamples     bool   `yaml:"includeExamples" mapstructure:"includeExamples"`
	StrictValidation    bool   `yaml:"strictValidation" mapstructure:"strictValidation"`
	Format              string `yaml:"format" mapstructure:"format"` // "yaml" or "json"
}

// EventsConfig holds the run event feed configuration.
type EventsConfig struct {
	MaxRuns int `yaml:"maxRuns" mapstructure:"maxRuns"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	opts := minify.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Path: "./data",
		},
		Minify: MinifyConfig{
			IncludeDescriptions: opts.IncludeDescriptions,
			IncludeExamples:     opts.IncludeExamples,
			StrictValidation:    opts.StrictValidation,
			Format:              string(render.FormatYAML),
		},
		Events: EventsConfig{
			MaxRuns: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Type {
	case "memory", "file":
	default:
		errs = append(errs, fmt.Errorf("storage.type must be memory or file, got %q", c.Storage.Type))
	}
	if c.Storage.Type == "file" && c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required for file storage"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if _, err := render.ParseFormat(c.Minify.Format); err != nil {
		errs = append(errs, fmt.Errorf("minify.format: %w", err))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// MinifyOptions returns the configured default minification options.
func (c *Config) MinifyOptions() minify.Options {
	return minify.Options{
		IncludeDescriptions: c.Minify.IncludeDescriptions,
		IncludeExamples:     c.Minify.IncludeExamples,
		StrictValidation:    c.Minify.StrictValidation,
	}
}
