package sensorline

import (
	"sensorline/internal/adapters/serialport"
	"sensorline/internal/app/config"
)

// Config re-exports the root configuration struct so embedders can
// construct or modify it programmatically.
type Config = config.Config

type (
	// TransportConfig holds the serial device address, symbol rate, and
	// bounded read timeout.
	TransportConfig = serialport.Config
	// LogConfig configures the append-only log store.
	LogConfig = config.LogConfig
	// ConsoleConfig toggles the human-readable console sink.
	ConsoleConfig = config.ConsoleConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// PostgresConfig configures the optional record mirror.
	PostgresConfig = config.PostgresConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
