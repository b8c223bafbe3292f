// Package config loads propgraph settings from propgraph.yaml, PROPGRAPH_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// DB is the path of the SQLite database.
	DB string `mapstructure:"db"`

	// DefaultLimit caps queries that pass no limit. 0 means unlimited.
	DefaultLimit int `mapstructure:"default_limit"`

	// EscapeStrings doubles single quotes in rendered string literals.
	EscapeStrings bool `mapstructure:"escape_strings"`

	// Variable is the record variable of rendered expressions.
	Variable string `mapstructure:"variable"`

	// Format is the CLI output format: "text" or "json".
	Format string `mapstructure:"format"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// Configuration keys.
const (
	KeyDB            = "db"
	KeyDefaultLimit  = "default_limit"
	KeyEscapeStrings = "escape_strings"
	KeyVariable      = "variable"
	KeyFormat        = "format"
	KeyVerbose       = "verbose"
)

// EnvPrefix prefixes environment overrides, e.g. PROPGRAPH_DEFAULT_LIMIT.
const EnvPrefix = "PROPGRAPH"

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// GetDefaults returns a Config with all default values.
func GetDefaults() *Config {
	return &Config{
		DB:            "propgraph.db",
		DefaultLimit:  0,
		EscapeStrings: false,
		Variable:      "n",
		Format:        "text",
		Verbose:       false,
	}
}

// New returns a viper instance with defaults, the config search path and
// environment overrides set up. Flags are bound separately with BindFlags.
func New() *viper.Viper {
	v := viper.New()

	v.SetConfigName("propgraph")
	v.SetConfigType("yaml")

	// Add config paths in priority order
	// 1. Current directory
	v.AddConfigPath(".")

	// 2. User config directory
	if dir, err := GetConfigPath(); err == nil {
		v.AddConfigPath(dir)
	}

	d := GetDefaults()
	v.SetDefault(KeyDB, d.DB)
	v.SetDefault(KeyDefaultLimit, d.DefaultLimit)
	v.SetDefault(KeyEscapeStrings, d.EscapeStrings)
	v.SetDefault(KeyVariable, d.Variable)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyVerbose, d.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// BindFlags binds each named flag to the key of the same name, with
// dashes read as underscores (--default-limit binds default_limit). Only
// flags the user set override lower layers.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(strings.ReplaceAll(name, "-", "_"), f); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the config file and returns the merged configuration. An
// explicit path must exist; without one, a missing propgraph.yaml is not
// an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(ValidFormats, c.Format) {
		errs = append(errs, fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats))
	}
	if c.DefaultLimit < 0 {
		errs = append(errs, fmt.Errorf("default_limit must be non-negative, got %d", c.DefaultLimit))
	}
	if c.Variable == "" {
		errs = append(errs, errors.New("variable must not be empty"))
	}
	return errors.Join(errs...)
}

// GetConfigPath returns the user config directory path.
func GetConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "propgraph"), nil
}
