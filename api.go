package sensorline

import (
	base "sensorline/pkg/sensorline"
)

// Re-exported errors for convenience.
var (
	ErrReadTimeout       = base.ErrReadTimeout
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
)

// Type aliases so consumers can import the module root directly.
type (
	Config          = base.Config
	TransportConfig = base.TransportConfig
	LogConfig       = base.LogConfig
	ConsoleConfig   = base.ConsoleConfig
	MetricsConfig   = base.MetricsConfig
	PostgresConfig  = base.PostgresConfig
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Record          = base.Record
	Alert           = base.Alert
	AlertKind       = base.AlertKind
	Reading         = base.Reading
	ReadingFunc     = base.ReadingFunc
	LineSource      = base.LineSource
	Sink            = base.Sink
	Observability   = base.Observability
	Field           = base.Field
)

// Alert kinds, in evaluation order.
const (
	AlertHighMotion      = base.AlertHighMotion
	AlertHighTemperature = base.AlertHighTemperature
	AlertLowLight        = base.AlertLowLight
	AlertLowBattery      = base.AlertLowBattery
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithLineSource(src LineSource) RuntimeOption {
	return base.WithLineSource(src)
}

func WithSink(s Sink) RuntimeOption {
	return base.WithSink(s)
}

func WithExtraSink(s Sink) RuntimeOption {
	return base.WithExtraSink(s)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Record helpers.
func Decode(raw string) (*Record, error) {
	return base.Decode(raw)
}

func Magnitude(r *Record) float64 {
	return base.Magnitude(r)
}

func EvaluateAlerts(r *Record, magnitude float64) []Alert {
	return base.EvaluateAlerts(r, magnitude)
}

// Sink adapters.
func NewCallbackSink(name string, fn ReadingFunc) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan Reading, func()) {
	return base.NewChannelSink(name, buffer)
}
