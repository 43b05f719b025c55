package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sensorline/internal/adapters/serialport"
)

type Config struct {
	Transport serialport.Config `yaml:"transport"`
	Log       LogConfig         `yaml:"log"`
	Console   ConsoleConfig     `yaml:"console"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	Postgres  PostgresConfig    `yaml:"postgres"`
}

type LogConfig struct {
	Path string `yaml:"path"`
}

type ConsoleConfig struct {
	Enabled *bool `yaml:"enabled"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// PostgresConfig enables the optional record mirror. Left empty, no
// database connection is opened.
type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	c.Transport.ApplyDefaults()

	if c.Log.Path == "" {
		c.Log.Path = "./data/telemetry.log"
	}
	if c.Console.Enabled == nil {
		enabled := true
		c.Console.Enabled = &enabled
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Postgres.Table == "" {
		c.Postgres.Table = "telemetry"
	}
}

func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return fmt.Errorf("transport config: %w", err)
	}
	if c.Log.Path == "" {
		return fmt.Errorf("log.path is required")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}

// ConsoleEnabled reports whether the human-readable console sink should
// be wired in.
func (c *Config) ConsoleEnabled() bool {
	return c.Console.Enabled == nil || *c.Console.Enabled
}
