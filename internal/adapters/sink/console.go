package sink

import (
	"fmt"
	"io"
	"time"

	"sensorline/internal/domain"
	"sensorline/internal/ports"
)

// ConsoleSink renders a human-readable block per record to the
// interactive output stream.
type ConsoleSink struct {
	w io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (c *ConsoleSink) Name() string { return "console" }

func (c *ConsoleSink) Start() error { return nil }

func (c *ConsoleSink) Emit(r *domain.Record, magnitude float64, alerts []domain.Alert) error {
	ts := time.Unix(int64(r.Timestamp), 0).UTC().Format(time.RFC3339)

	_, err := fmt.Fprintf(c.w,
		"device=%s time=%s\n  temp: %.2f °C\n  accel: x=%.3f y=%.3f z=%.3f |a|=%.4f g\n  light: %d  battery: %.2f V\n",
		r.DeviceID, ts,
		r.TemperatureC,
		r.AccelX, r.AccelY, r.AccelZ, magnitude,
		r.LightLevel, r.BatteryVoltage,
	)
	if err != nil {
		return fmt.Errorf("console render: %w", err)
	}
	for _, a := range alerts {
		if _, err := fmt.Fprintf(c.w, "  ALERT %s (%.4f)\n", a.Kind, a.Value); err != nil {
			return fmt.Errorf("console render: %w", err)
		}
	}
	return nil
}

func (c *ConsoleSink) Close() error { return nil }

var _ ports.Sink = (*ConsoleSink)(nil)
