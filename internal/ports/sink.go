package ports

import "sensorline/internal/domain"

// Sink consumes processed records: rendering, durable logging, or
// mirroring to downstream storage. Start acquires the underlying handle
// before the first record; Close releases it on every exit path.
type Sink interface {
	Start() error
	Emit(r *domain.Record, magnitude float64, alerts []domain.Alert) error
	Close() error
	Name() string
}
