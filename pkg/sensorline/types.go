package sensorline

import (
	"sensorline/internal/domain"
	"sensorline/internal/ports"
)

// Record is one decoded, validated sensor sample.
type Record = domain.Record

// Alert is a threshold condition fired for a single record.
type Alert = domain.Alert

// AlertKind names a threshold condition.
type AlertKind = domain.AlertKind

// Alert kinds, in evaluation order.
const (
	AlertHighMotion      = domain.AlertHighMotion
	AlertHighTemperature = domain.AlertHighTemperature
	AlertLowLight        = domain.AlertLowLight
	AlertLowBattery      = domain.AlertLowBattery
)

// LineSource yields raw text lines from a byte-oriented transport.
type LineSource = ports.LineSource

// ErrReadTimeout is the non-fatal "no line yet" result from a LineSource.
var ErrReadTimeout = ports.ErrReadTimeout

// Sink consumes processed records.
type Sink = ports.Sink

// Observability emits logs and metrics about the pipeline.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Decode parses one wire line into a Record; see internal/domain.Decode.
func Decode(raw string) (*Record, error) {
	return domain.Decode(raw)
}

// Magnitude returns the Euclidean norm of a record's acceleration axes.
func Magnitude(r *Record) float64 {
	return domain.Magnitude(r)
}

// EvaluateAlerts applies the fixed threshold predicates to a record.
func EvaluateAlerts(r *Record, magnitude float64) []Alert {
	return domain.EvaluateAlerts(r, magnitude)
}
