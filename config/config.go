// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config holds the ledger options, loaded from YAML.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/gemfarm/log"
)

type Config struct {
	// DataDir holds the record store and the event log. Empty means in-memory.
	DataDir  string      `yaml:"data_dir"`
	Store    StoreConfig `yaml:"store"`
	EventLog bool        `yaml:"event_log"`
	Log      LogConfig   `yaml:"log"`
	Metrics  bool        `yaml:"metrics"`
	NTP      NTPConfig   `yaml:"ntp"`
}

type StoreConfig struct {
	CacheSize     int `yaml:"cache_size"` // MiB
	OpenFiles     int `yaml:"open_files"`
	LockCacheSize int `yaml:"lock_cache_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // terminal or json
	Color  bool   `yaml:"color"`
}

type NTPConfig struct {
	Server    string        `yaml:"server"` // empty disables the offset check
	Tolerance time.Duration `yaml:"tolerance"`
}

// Default returns the options used when a field is not set.
func Default() Config {
	return Config{
		Store: StoreConfig{
			CacheSize:     64,
			OpenFiles:     64,
			LockCacheSize: 1024,
		},
		EventLog: true,
		Log: LogConfig{
			Level:  "info",
			Format: "terminal",
		},
		NTP: NTPConfig{
			Tolerance: 5 * time.Second,
		},
	}
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

func (c *Config) Validate() error {
	if c.Store.CacheSize < 0 || c.Store.OpenFiles < 0 {
		return errors.New("store sizes must not be negative")
	}
	if c.Store.LockCacheSize <= 0 {
		return errors.New("lock_cache_size must be positive")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "terminal", "json":
	default:
		return errors.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.NTP.Tolerance < 0 {
		return errors.New("ntp.tolerance must not be negative")
	}
	return nil
}
