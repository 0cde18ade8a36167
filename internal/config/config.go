// Package config loads micals settings from defaults, an optional TOML
// file, and MICALS_-prefixed environment variables, in that precedence
// order.
package config

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/knadh/koanf/parsers/toml/v2"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "micals.toml"

// envPrefix prefixes environment variables, e.g. MICALS_STDLIB_ROOT.
const envPrefix = "MICALS_"

// Config holds the micals server settings.
type Config struct {
	// StdlibRoot is the directory of the Mica standard library sources.
	// Empty means the embedded prelude.
	StdlibRoot string `koanf:"stdlib_root"`

	// LogLevel is the logrus level name for stderr logging.
	LogLevel string `koanf:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "warning",
	}
}

// Load resolves the configuration. An explicit path must exist; the default
// file is optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
