// Package config loads CLI settings from flags, SQLITEURL_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/sqliteurl/internal/store"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "SQLITEURL_"

// DefaultName is the config file name searched for when none is given.
const DefaultName = "sqliteurl"

// Formats are the accepted output formats.
var Formats = []string{"text", "json"}

// Config holds resolved CLI settings.
type Config struct {
	DB      string `mapstructure:"db"`
	Driver  string `mapstructure:"driver"`
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`
	Test    Test   `mapstructure:"test"`
}

// Test holds defaults for the test command.
type Test struct {
	Paths  []string `mapstructure:"paths"`
	Filter string   `mapstructure:"filter"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DB:     ":memory:",
		Driver: string(store.DriverCGO),
		Format: "text",
		Test:   Test{Paths: []string{"."}},
	}
}

// Load resolves settings. file names an explicit config file and must exist
// when set; otherwise sqliteurl.{yaml,yml,json,toml} is looked up in the
// working directory and skipped when absent. flags may be nil; only flags
// the user changed override lower layers.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("db", def.DB)
	v.SetDefault("driver", def.Driver)
	v.SetDefault("format", def.Format)
	v.SetDefault("verbose", def.Verbose)
	v.SetDefault("test.paths", def.Test.Paths)
	v.SetDefault("test.filter", def.Test.Filter)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName(DefaultName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// SQLITEURL_TEST_FILTER -> test.filter
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		prop := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		prop = strings.ReplaceAll(prop, "_", ".")
		if prop == "test.paths" {
			v.Set(prop, strings.Split(value, string(os.PathListSeparator)))
			continue
		}
		v.Set(prop, value)
	}

	if flags != nil {
		for _, name := range []string{"db", "driver", "format", "verbose"} {
			if f := flags.Lookup(name); f != nil && f.Changed {
				v.Set(name, f.Value.String())
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, Formats)
	}
	if _, err := store.ParseDriver(c.Driver); err != nil {
		return err
	}
	if c.DB == "" {
		return errors.New("db must not be empty")
	}
	return nil
}

// StoreDriver returns the validated driver.
func (c Config) StoreDriver() store.Driver {
	d, err := store.ParseDriver(c.Driver)
	if err != nil {
		return store.DriverCGO
	}
	return d
}
