package sink

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sensorline/internal/domain"
	"sensorline/internal/ports"
)

// PostgresSink mirrors accepted records into a relational table, one
// idempotent insert per record. It is optional: the pipeline treats its
// failures the same as a log append failure, a warning rather than a
// fault.
type PostgresSink struct {
	db        *sql.DB
	tableName string
}

func NewPostgresSink(db *sql.DB, table string) *PostgresSink {
	return &PostgresSink{db: db, tableName: table}
}

func (p *PostgresSink) Name() string { return "postgres" }

func (p *PostgresSink) Start() error {
	if err := p.db.Ping(); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

func (p *PostgresSink) Emit(r *domain.Record, magnitude float64, alerts []domain.Alert) error {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(p.tableName)
	b.WriteString(" (device_id, recorded_at, temperature_c, accel_x, accel_y, accel_z, light_level, battery_voltage, accel_magnitude, alerts)")
	b.WriteString(" VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)")
	b.WriteString(" ON CONFLICT (device_id, recorded_at) DO NOTHING")

	recordedAt := time.Unix(int64(r.Timestamp), 0).UTC()
	alertSummary := strings.Join(domain.AlertKinds(alerts), ",")

	_, err := p.db.Exec(b.String(),
		r.DeviceID,
		recordedAt,
		r.TemperatureC,
		r.AccelX,
		r.AccelY,
		r.AccelZ,
		r.LightLevel,
		r.BatteryVoltage,
		magnitude,
		alertSummary,
	)
	if err != nil {
		return fmt.Errorf("insert telemetry row: %w", err)
	}
	return nil
}

func (p *PostgresSink) Close() error { return nil }

var _ ports.Sink = (*PostgresSink)(nil)
