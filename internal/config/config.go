// Package config loads engine configuration from the environment, with an
// optional YAML file layered underneath.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables the engine reads. File values (LABELENGINE_CONFIG)
// fill in anything the environment leaves unset.
var envVars = []string{
	"LABELENGINE_PG_HOST",
	"LABELENGINE_PG_PORT",
	"LABELENGINE_PG_DATABASE",
	"LABELENGINE_PG_USERNAME",
	"LABELENGINE_PG_PASSWORD",
	"LABELENGINE_PG_SSLMODE",
	"LABELENGINE_PG_CONNECT_TIMEOUT",
	"LABELENGINE_THRESHOLD",
	"LABELENGINE_SORT_MODE",
	"LABELENGINE_REMOVE_DUPLICATES",
	"LABELENGINE_LOG_LEVEL",
	"LABELENGINE_LOG_FORMAT",
}

type Config struct {
	values map[string]string
}

// Load reads the environment and, when LABELENGINE_CONFIG points at a YAML
// file, merges its flat key/value pairs under the environment.
func Load() (*Config, error) {
	cfg := &Config{values: make(map[string]string)}

	if path := os.Getenv("LABELENGINE_CONFIG"); path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadFromEnv()

	return cfg, nil
}

func (c *Config) loadFromEnv() {
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			c.values[envVar] = value
		}
	}
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file map[string]string
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// File keys use the env-var names, case-insensitively.
	for key, value := range file {
		c.values[strings.ToUpper(key)] = value
	}
	return nil
}

func (c *Config) GetString(key, defaultValue string) string {
	if value, exists := c.values[key]; exists {
		return value
	}
	return defaultValue
}

func (c *Config) GetInt(key string, defaultValue int) int {
	if value, exists := c.values[key]; exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) GetBool(key string, defaultValue bool) bool {
	if value, exists := c.values[key]; exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (c *Config) GetDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := c.values[key]; exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// HasStore reports whether a PostgreSQL store is configured at all.
func (c *Config) HasStore() bool {
	return c.GetString("LABELENGINE_PG_HOST", "") != ""
}

// GetStoreConfig assembles the connection map for the store client.
func (c *Config) GetStoreConfig() map[string]string {
	return map[string]string{
		"host":            c.GetString("LABELENGINE_PG_HOST", "localhost"),
		"port":            c.GetString("LABELENGINE_PG_PORT", "5432"),
		"database":        c.GetString("LABELENGINE_PG_DATABASE", "labelengine"),
		"username":        c.GetString("LABELENGINE_PG_USERNAME", ""),
		"password":        c.GetString("LABELENGINE_PG_PASSWORD", ""),
		"sslmode":         c.GetString("LABELENGINE_PG_SSLMODE", "prefer"),
		"connect_timeout": c.GetString("LABELENGINE_PG_CONNECT_TIMEOUT", "30s"),
	}
}
