package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultConfigPath is used when no path is provided.
const defaultConfigPath = "config.yaml"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address, e.g. ":8317".
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // Postgres URL or SQLite file path.
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"`        // logrus level name; "info" when empty.
	File       string `yaml:"file"`         // Log file path; stdout only when empty.
	MaxSizeMB  int    `yaml:"max-size-mb"`  // Rotate after this size.
	MaxBackups int    `yaml:"max-backups"`  // Rotated files to keep.
	MaxAgeDays int    `yaml:"max-age-days"` // Days to keep rotated files.
}

// Config is the service configuration loaded from a YAML file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ResolveConfigPath picks the config file path: explicit argument first,
// then the CHATMETER_CONFIG environment variable, then the default.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv("CHATMETER_CONFIG")); env != "" {
		return env
	}
	return defaultConfigPath
}

// Load reads and parses the YAML config file, applying defaults.
func Load(path string) (*Config, error) {
	data, errRead := os.ReadFile(path)
	if errRead != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	var cfg Config
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = ":8317"
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, fmt.Errorf("config: %s: database.dsn is required", path)
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 30
	}
	return &cfg, nil
}
