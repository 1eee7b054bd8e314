// Package config loads ripdoc's settings from a TOML config file plus
// RIPDOC_-prefixed environment variables, and resolves the cache directory
// layout beneath it. Generalized from the teacher's internal/config/config.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// ToolchainConfig names the rustdoc-producing toolchain and an optional path
// override for locating it, mirroring the teacher's ApiKeyConfig shape (a
// plain string that may also be given as a file path to resolve against).
type ToolchainConfig struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// FeaturesConfig holds the default cargo feature selection applied when a
// target spec doesn't pin its own.
type FeaturesConfig struct {
	Default           []string `mapstructure:"default"`
	AllFeatures       bool     `mapstructure:"all_features"`
	NoDefaultFeatures bool     `mapstructure:"no_default_features"`
}

// RenderConfig holds default render options, overridable per-command.
type RenderConfig struct {
	Format       string `mapstructure:"format"`
	PrivateItems bool   `mapstructure:"private_items"`
	AutoImpls    bool   `mapstructure:"auto_impls"`
	SourceLabels bool   `mapstructure:"source_labels"`
}

// Config is the full decoded settings tree.
type Config struct {
	Toolchain ToolchainConfig `mapstructure:"toolchain"`
	Features  FeaturesConfig  `mapstructure:"features"`
	Render    RenderConfig    `mapstructure:"render"`
}

// cacheBase returns ripdoc's base cache directory.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/ripdoc as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "ripdoc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "ripdoc")
	}
	return filepath.Join(os.TempDir(), "ripdoc")
}

// CacheDBPath is the cache catalog database (internal/cachedb).
func CacheDBPath() string {
	return filepath.Join(cacheBase(), "catalog.db")
}

// CASDir is the root of the sha256/zstd blob store (internal/cache).
func CASDir() string {
	return filepath.Join(cacheBase(), "cas")
}

// LogPath is where internal/rlog writes diagnostics when file logging is
// enabled.
func LogPath() string {
	return filepath.Join(cacheBase(), "ripdoc.log")
}

// InitializeViper wires up config discovery: a TOML file named config.toml
// under the working directory or XDG_CONFIG_HOME/ripdoc (falling back to
// ~/.config/ripdoc), plus RIPDOC_-prefixed environment variable overrides.
func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "ripdoc"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "ripdoc"))
	}

	viper.SetDefault("toolchain.name", "cargo")
	viper.SetDefault("features.default", []string{})
	viper.SetDefault("render.format", "rust")
	viper.SetDefault("render.private_items", false)
	viper.SetDefault("render.auto_impls", false)
	viper.SetDefault("render.source_labels", true)

	viper.SetEnvPrefix("RIPDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func stringToToolchainConfigHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(ToolchainConfig{}) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return ToolchainConfig{Name: data.(string)}, nil
		}
		return data, nil
	}
}

// Load reads and decodes the full configuration, resolving the toolchain
// path the same way the teacher resolves its VoyageAI API key: a bare name
// passes through, a path-looking value is checked for existence on disk.
func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToToolchainConfigHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := resolveToolchainPath(&config.Toolchain); err != nil {
		return nil, fmt.Errorf("failed to resolve toolchain path: %w", err)
	}

	return &config, nil
}

func resolveToolchainPath(tc *ToolchainConfig) error {
	if tc.Path == "" {
		return nil
	}
	if strings.HasPrefix(tc.Path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			tc.Path = filepath.Join(home, tc.Path[2:])
		}
	}
	if _, err := os.Stat(tc.Path); err != nil {
		return fmt.Errorf("toolchain path %s: %w", tc.Path, err)
	}
	return nil
}
