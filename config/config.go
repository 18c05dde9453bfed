// Package config handles favdouble.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked for by Load and FindAndLoad.
const FileName = "favdouble.toml"

// Config represents a favdouble.toml file.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `toml:"-"`
}

// ServerConfig configures the registry server.
type ServerConfig struct {
	Listen string `toml:"listen"`

	// SweepInterval/SweepTTL enable the background handle sweeper when
	// both are nonzero. Off by default: a well-behaved host deletes its
	// own handles, and a sweep behind its back makes that delete fail.
	SweepInterval Duration `toml:"sweep-interval"`
	SweepTTL      Duration `toml:"sweep-ttl"`
}

// StoreConfig configures the durable snapshot store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Duration is a time.Duration that unmarshals from TOML strings like
// "5m" or "1h30m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard-library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Listen: ":4568"},
	}
}

// Load parses a favdouble.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if c.Server.Listen == "" {
		c.Server.Listen = Default().Server.Listen
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find a favdouble.toml file,
// then loads and returns the config. Returns the defaults if no file
// is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
