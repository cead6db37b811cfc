// Package config handles Ratatosk configuration via YAML files and
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (RATATOSK_*)
//  2. Config file (ratatosk.yaml)
//  3. Built-in defaults
//
// Environment variables:
//   - RATATOSK_DATA_DIR="./data"
//   - RATATOSK_BACKEND="badger" or "memory"
//   - RATATOSK_IN_MEMORY=true
//   - RATATOSK_SYNC_WRITES=true
//   - RATATOSK_CACHE_CAPACITY=1000
//   - RATATOSK_DECODE_WORKERS=4
//
// Example:
//
//	cfg, err := config.Load("ratatosk.yaml")
//	if err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
//	fmt.Printf("data dir: %s\n", cfg.DataDir)
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by Config.Backend.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config holds all Ratatosk configuration.
type Config struct {
	// DataDir is the directory for the persistent backend.
	DataDir string `yaml:"data_dir"`

	// Backend selects the store implementation: "badger" or "memory".
	Backend string `yaml:"backend"`

	// InMemory runs the badger backend without touching disk. Intended
	// for tests and throwaway sessions.
	InMemory bool `yaml:"in_memory"`

	// SyncWrites forces an fsync after every write.
	SyncWrites bool `yaml:"sync_writes"`

	// CacheCapacity bounds each of the node and edge caches.
	CacheCapacity int `yaml:"cache_capacity"`

	// DecodeWorkers bounds concurrent record decoding in batch gets.
	DecodeWorkers int `yaml:"decode_workers"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:       "./data",
		Backend:       BackendBadger,
		CacheCapacity: 1000,
		DecodeWorkers: 4,
	}
}

// Load reads path as YAML over the defaults, then applies environment
// overrides and validates the result. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %q: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv returns the defaults with environment overrides applied.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// applyEnv overlays RATATOSK_* environment variables onto c.
func (c *Config) applyEnv() {
	if v := os.Getenv("RATATOSK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("RATATOSK_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("RATATOSK_IN_MEMORY"); v != "" {
		c.InMemory = parseBool(v, c.InMemory)
	}
	if v := os.Getenv("RATATOSK_SYNC_WRITES"); v != "" {
		c.SyncWrites = parseBool(v, c.SyncWrites)
	}
	if v := os.Getenv("RATATOSK_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheCapacity = n
		}
	}
	if v := os.Getenv("RATATOSK_DECODE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DecodeWorkers = n
		}
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendBadger, BackendMemory)
	}
	if c.Backend == BackendBadger && !c.InMemory && c.DataDir == "" {
		return fmt.Errorf("data_dir is required for the badger backend")
	}
	if c.CacheCapacity < 1 {
		return fmt.Errorf("cache_capacity must be >= 1, got %d", c.CacheCapacity)
	}
	if c.DecodeWorkers < 1 {
		return fmt.Errorf("decode_workers must be >= 1, got %d", c.DecodeWorkers)
	}
	return nil
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
