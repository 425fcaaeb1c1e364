// Package config loads optional CLI defaults (a schema path and an output
// format) from a .unibuf.yaml file. The unibuf subcommands do not call Load:
// --schema and --format are taken from the command-line flags alone.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the schema and format defaults returned by Load.
type Config struct {
	Schema string `mapstructure:"schema"`
	Format string `mapstructure:"format"`
}

// Load reads .unibuf.yaml/.unibuf.yml from the current directory. A missing
// file is not an error: Load returns the built-in defaults ("" schema,
// "json" format).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("schema", "")
	v.SetDefault("format", "json")

	v.SetConfigName(".unibuf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read .unibuf.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal .unibuf.yaml: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	switch strings.ToLower(cfg.Format) {
	case "json", "yaml", "textproto", "binpb", "text":
		return nil
	default:
		return fmt.Errorf("format must be one of json|yaml|textproto|binpb|text, got: %s", cfg.Format)
	}
}
