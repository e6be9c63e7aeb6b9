// Package config handles the dockfleet configuration file.
//
// Config is stored at $XDG_CONFIG_HOME/dockfleet/config.yaml (defaults to
// ~/.config/dockfleet/config.yaml). A missing file yields defaults, not an
// error, so the CLI works out of the box against ./ as the compose root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultScanDepth       = 3
	DefaultCacheTTLSeconds = 30
)

// Config describes where compose files live and how the engine reaches Docker.
type Config struct {
	// Root is the directory scanned recursively for compose files.
	Root string `yaml:"root"`
	// ScanDepth bounds the recursive scan below Root.
	ScanDepth int `yaml:"scan_depth,omitempty"`
	// CacheTTLSeconds bounds how long one filesystem scan is reused.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds,omitempty"`
	// HostPathMapping is an optional host-side prefix that maps onto Root,
	// for engines reporting paths from a different filesystem view.
	HostPathMapping string `yaml:"host_path_mapping,omitempty"`
	// DockerHost overrides the engine endpoint (DOCKER_HOST wins if set).
	DockerHost string `yaml:"docker_host,omitempty"`
	// DataDir holds local state such as the audit log database.
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Root:            ".",
		ScanDepth:       DefaultScanDepth,
		CacheTTLSeconds: DefaultCacheTTLSeconds,
		DataDir:         defaultDataDir(),
	}
}

// Path returns the config file location. It respects XDG_CONFIG_HOME,
// falling back to ~/.config/dockfleet/config.yaml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "dockfleet", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "dockfleet", "config.yaml")
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "dockfleet")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "dockfleet")
}

// Load reads the config file at path (Path() when empty). A missing file
// returns Default(). Environment variables DOCKFLEET_ROOT and
// DOCKFLEET_DATA_DIR override the file in either case.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("DOCKFLEET_ROOT"); v != "" {
		cfg.Root = v
	}
	if v := os.Getenv("DOCKFLEET_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	cfg.applyFallbacks()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFallbacks() {
	if c.ScanDepth == 0 {
		c.ScanDepth = DefaultScanDepth
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("config: root directory is required")
	}
	if c.ScanDepth < 1 {
		return fmt.Errorf("config: scan_depth must be at least 1, got %d", c.ScanDepth)
	}
	if c.CacheTTLSeconds < 1 {
		return fmt.Errorf("config: cache_ttl_seconds must be at least 1, got %d", c.CacheTTLSeconds)
	}
	return nil
}

// Save writes the config to path (Path() when empty), creating directories
// as needed.
func (c Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// CacheTTL returns the scan cache lifetime as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
