package litedb

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config governs the ambient knobs a deployment would actually want to
// set. A nil Config passed to Open resolves to the defaults below, so the
// common case of "just read this file" needs no configuration at all.
type Config struct {
	// LogLevel controls the verbosity of the engine's structured logger.
	LogLevel log.Level `yaml:"log_level"`

	// CacheEnabled turns on the opt-in page cache described in the pager
	// package. Off by default: a reader that visits each page once per
	// lookup gains nothing from memoizing it, and a long-lived cache on a
	// large file can grow without bound.
	CacheEnabled bool `yaml:"cache_enabled"`

	// StrictChecks is decoded from the config file and kept on the Engine,
	// but no code path reads it: page parsing performs the same checks
	// whether it is true or false.
	StrictChecks bool `yaml:"strict_checks"`
}

// defaultConfig mirrors the zero-configuration defaults documented on
// Config.
func defaultConfig() *Config {
	return &Config{
		LogLevel:     log.InfoLevel,
		CacheEnabled: false,
		StrictChecks: true,
	}
}

func resolveConfig(c *Config) *Config {
	if c == nil {
		return defaultConfig()
	}
	return c
}

// LoadConfig reads a yaml-encoded Config from path, starting from
// defaultConfig so an omitted field keeps its documented default rather
// than zeroing out.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("litedb: open config %s: %w", path, err)
	}
	defer f.Close()

	cfg := defaultConfig()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("litedb: parse config %s: %w", path, err)
	}
	return cfg, nil
}
