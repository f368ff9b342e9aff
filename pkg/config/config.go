// Package config loads the endpoint alias file used by the CLI, mapping
// short names to service URLs and per-endpoint settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Endpoint is one configured service endpoint.
type Endpoint struct {
	URL     string        `yaml:"url"`
	Version string        `yaml:"version"`
	Timeout time.Duration `yaml:"timeout"`
}

// Database holds the PostGIS connection settings for the feature store.
type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// Config is the parsed endpoint configuration file.
type Config struct {
	Endpoints map[string]Endpoint `yaml:"endpoints"`
	Database  Database            `yaml:"database"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for name, ep := range cfg.Endpoints {
		if ep.URL == "" {
			return nil, fmt.Errorf("endpoint %q has no url", name)
		}
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	return &cfg, nil
}

// Resolve looks up an endpoint by alias. Names that look like URLs are
// returned as ad-hoc endpoints so callers can bypass the config file.
func (c *Config) Resolve(name string) (Endpoint, error) {
	if c != nil {
		if ep, ok := c.Endpoints[name]; ok {
			return ep, nil
		}
	}
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return Endpoint{URL: name}, nil
	}
	return Endpoint{}, fmt.Errorf("unknown endpoint %q", name)
}
