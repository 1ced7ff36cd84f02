// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package main

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the serve command's configuration, merged from defaults,
// an optional YAML file, and command-line flags, in that order.
type Config struct {
	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
	} `koanf:"log"`
	Database struct {
		// URL is the PostgreSQL connection string. Empty selects the
		// in-memory backend.
		URL string `koanf:"url"`
	} `koanf:"database"`
	Metrics struct {
		// Addr is the metrics/health HTTP address. Empty disables the
		// observability server.
		Addr string `koanf:"addr"`
	} `koanf:"metrics"`
	// APIVersion is the host service API version providers register
	// against.
	APIVersion string `koanf:"api-version"`
	Currency   struct {
		Locale   string `koanf:"locale"`
		Singular string `koanf:"singular"`
		Plural   string `koanf:"plural"`
		Digits   int    `koanf:"digits"`
	} `koanf:"currency"`
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Currency.Digits < 0 {
		return fmt.Errorf("currency.digits cannot be negative, got %d", c.Currency.Digits)
	}
	return nil
}

// defaultConfig returns the built-in defaults.
func defaultConfig() map[string]any {
	return map[string]any{
		"log.level":         "info",
		"log.format":        "json",
		"metrics.addr":      "127.0.0.1:9100",
		"api-version":       "1.0.0",
		"currency.locale":   "en",
		"currency.singular": "coin",
		"currency.plural":   "coins",
		"currency.digits":   2,
	}
}

// LoadConfig merges defaults, the optional YAML file at path, and the
// given flag set into a Config. Later sources win.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaultConfig() {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
