package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"sensorline/internal/domain"
	"sensorline/internal/ports"
)

// Metric names recorded by the pipeline and runtime.
const (
	MetricRecordsTotal        = "sensorline_records_total"
	MetricDecodeFailuresTotal = "sensorline_decode_failures_total"
	MetricAlertsTotal         = "sensorline_alerts_total"
	MetricEntriesDroppedTotal = "sensorline_log_entries_dropped_total"
	MetricPipelineState       = "sensorline_pipeline_state"
	MetricLogSizeBytes        = "sensorline_log_size_bytes"
	MetricLogEntries          = "sensorline_log_entries"
	MetricProcessLatency      = "sensorline_record_process_seconds"
)

type PromObs struct {
	logger   *slog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs(logger *slog.Logger) *PromObs {
	if logger == nil {
		logger = slog.Default()
	}

	records := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricRecordsTotal,
		Help: "Total telemetry records decoded and emitted.",
	})
	decodeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricDecodeFailuresTotal,
		Help: "Lines rejected as malformed or incomplete.",
	})
	alerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricAlertsTotal,
		Help: "Threshold alerts fired across all records.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricEntriesDroppedTotal,
		Help: "Log entries lost after the single append retry.",
	})
	state := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricPipelineState,
		Help: "Current pipeline controller state (ordinal).",
	})
	logSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricLogSizeBytes,
		Help: "Bytes appended to the telemetry log this session.",
	})
	logEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricLogEntries,
		Help: "Entries appended to the telemetry log this session.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricProcessLatency,
		Help:    "Per-record latency from raw line to emitted entry.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	prometheus.MustRegister(records, decodeFailures, alerts, dropped, state, logSize, logEntries, latency)

	return &PromObs{
		logger: logger,
		counters: map[string]prometheus.Counter{
			MetricRecordsTotal:        records,
			MetricDecodeFailuresTotal: decodeFailures,
			MetricAlertsTotal:         alerts,
			MetricEntriesDroppedTotal: dropped,
		},
		gauges: map[string]prometheus.Gauge{
			MetricPipelineState: state,
			MetricLogSizeBytes:  logSize,
			MetricLogEntries:    logEntries,
		},
		histos: map[string]prometheus.Observer{
			MetricProcessLatency: latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.logger.Info(msg, attrs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		fields = append(fields, ports.Field{Key: "error", Value: err.Error()})
	}
	p.logger.Error(msg, attrs(fields)...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		fields = append(fields, ports.Field{Key: "error", Value: err.Error()})
	}
	fields = append(fields, ports.Field{Key: "severity", Value: "critical"})
	p.logger.Error(msg, attrs(fields)...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordDropped(r *domain.Record, err error) {
	p.IncCounter(MetricEntriesDroppedTotal, 1)
	var fields []ports.Field
	if r != nil {
		fields = append(fields, ports.Field{Key: "device", Value: r.DeviceID})
	}
	p.LogError("log_entry_dropped", err, fields...)
}

func attrs(fields []ports.Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
