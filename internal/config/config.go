// Package config loads indexer settings from the environment (and an
// optional .env file).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired      = errors.New("missing required configuration")
	ErrInvalidConfiguration = errors.New("invalid build configuration list")
)

type Config struct {
	StorePath string `envconfig:"INDEXER_STORE_PATH" default:"tmp/.symindex"`
	InMemory  bool   `envconfig:"INDEXER_IN_MEMORY" default:"false"`
	Workers   int    `envconfig:"INDEXER_WORKERS" default:"4"`

	// name[:DEFINE,DEFINE=1];name...
	Configurations string `envconfig:"INDEXER_CONFIGURATIONS" default:"default"`

	Extensions   []string `envconfig:"INDEXER_EXTENSIONS" default:".go,.c,.cc,.cpp,.cxx,.h,.hh,.hpp"`
	Exclude      []string `envconfig:"INDEXER_EXCLUDE" default:".git,node_modules,vendor,build,out"`
	UseGitignore bool     `envconfig:"INDEXER_USE_GITIGNORE" default:"true"`
	MaxFileBytes int64    `envconfig:"INDEXER_MAX_FILE_BYTES" default:"2000000"`

	LogLevel    string `envconfig:"INDEXER_LOG_LEVEL" default:"info"`
	MetricsAddr string `envconfig:"INDEXER_METRICS_ADDR"`
}

// Configuration is one build configuration: a name plus the preprocessor
// defines (or Go build tags) files are indexed under.
type Configuration struct {
	Name    string
	Defines []string
}

func Load() (*Config, error) {
	// Ignore errors, the variables may come from the shell.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.StorePath == "" && !c.InMemory {
		return fmt.Errorf("%w: INDEXER_STORE_PATH", ErrMissingRequired)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: INDEXER_WORKERS must be >= 1", ErrMissingRequired)
	}
	if _, err := ParseConfigurations(c.Configurations); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("INDEXER_LOG_LEVEL: %w", err)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}

// BuildConfigurations parses the Configurations setting.
func (c *Config) BuildConfigurations() ([]Configuration, error) {
	return ParseConfigurations(c.Configurations)
}

// ParseConfigurations parses "debug:DEBUG,TRACE;release:NDEBUG". Names
// must be non-empty and unique; defines are optional.
func ParseConfigurations(s string) ([]Configuration, error) {
	var out []Configuration
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, defs, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name in %q", ErrInvalidConfiguration, part)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidConfiguration, name)
		}
		seen[name] = true
		cfg := Configuration{Name: name}
		for _, d := range strings.Split(defs, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.Defines = append(cfg.Defines, d)
			}
		}
		out = append(out, cfg)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: INDEXER_CONFIGURATIONS", ErrMissingRequired)
	}
	return out, nil
}
