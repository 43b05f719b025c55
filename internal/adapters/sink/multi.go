package sink

import (
	"errors"
	"fmt"
	"strings"

	"sensorline/internal/domain"
	"sensorline/internal/ports"
)

// MultiSink fans each record out to a fixed, ordered set of sinks.
type MultiSink struct {
	sinks []ports.Sink
}

func NewMultiSink(sinks ...ports.Sink) *MultiSink {
	kept := make([]ports.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &MultiSink{sinks: kept}
}

func (m *MultiSink) Name() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

// Start opens every sink; the first failure aborts and closes the sinks
// already started.
func (m *MultiSink) Start() error {
	for i, s := range m.sinks {
		if err := s.Start(); err != nil {
			for j := i - 1; j >= 0; j-- {
				m.sinks[j].Close()
			}
			return fmt.Errorf("start sink %s: %w", s.Name(), err)
		}
	}
	return nil
}

// Emit delivers the record to every sink even when an earlier one
// fails, and joins the failures.
func (m *MultiSink) Emit(r *domain.Record, magnitude float64, alerts []domain.Alert) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(r, magnitude, alerts); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

var _ ports.Sink = (*MultiSink)(nil)
