package sensorline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sensorline/internal/adapters/observability"
	"sensorline/internal/adapters/serialport"
	"sensorline/internal/adapters/sink"
	"sensorline/internal/app/pipeline"
	"sensorline/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	source        ports.LineSource
	sink          ports.Sink
	extraSinks    []ports.Sink
	observability ports.Observability
	consoleWriter io.Writer
	logger        *slog.Logger
}

// WithLineSource injects a custom line source (file replay, simulators,
// test fixtures) in place of the serial device.
func WithLineSource(src ports.LineSource) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.source = src
	}
}

// WithSink replaces the entire default sink chain.
func WithSink(s ports.Sink) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.sink = s
	}
}

// WithExtraSink appends a sink to the default chain instead of
// replacing it.
func WithExtraSink(s ports.Sink) RuntimeOption {
	return func(o *runtimeOverrides) {
		if s != nil {
			o.extraSinks = append(o.extraSinks, s)
		}
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs ports.Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithConsoleWriter redirects the human-readable output stream.
func WithConsoleWriter(w io.Writer) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.consoleWriter = w
	}
}

// WithLogger sets the slog logger backing the default observability.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.logger = logger
	}
}

// Runtime wires the serial line source, the pipeline controller, the
// sink chain, and the observability stack into one embeddable unit.
type Runtime struct {
	cfg        *Config
	obs        ports.Observability
	source     ports.LineSource
	sink       ports.Sink
	logSink    *sink.LogFileSink
	controller *pipeline.Controller

	db          *sql.DB
	metricsSrv  *http.Server
	gaugeStopCh chan struct{}
}

// NewRuntime bootstraps the default adapters: serial line source,
// console + append-only log file sinks (plus the Postgres mirror when
// configured), and Prometheus observability. Options override any
// dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs(overrides.logger)
	}

	source := overrides.source
	if source == nil {
		var err error
		source, err = serialport.NewLineSource(cfg.Transport)
		if err != nil {
			return nil, err
		}
	}

	rt := &Runtime{cfg: cfg, obs: obs, source: source}

	if overrides.sink != nil {
		if len(overrides.extraSinks) > 0 {
			rt.sink = sink.NewMultiSink(append([]ports.Sink{overrides.sink}, overrides.extraSinks...)...)
		} else {
			rt.sink = overrides.sink
		}
	} else {
		chain, logSink, db, err := buildDefaultSinks(cfg, overrides)
		if err != nil {
			return nil, err
		}
		rt.sink = chain
		rt.logSink = logSink
		rt.db = db
	}

	rt.controller = pipeline.NewController(rt.source, rt.sink, rt.obs)
	return rt, nil
}

func buildDefaultSinks(cfg *Config, overrides runtimeOverrides) (ports.Sink, *sink.LogFileSink, *sql.DB, error) {
	var sinks []ports.Sink

	if cfg.ConsoleEnabled() {
		w := overrides.consoleWriter
		if w == nil {
			w = os.Stdout
		}
		sinks = append(sinks, sink.NewConsoleSink(w))
	}

	logSink := sink.NewLogFileSink(cfg.Log.Path)
	sinks = append(sinks, logSink)

	var db *sql.DB
	if cfg.Postgres.ConnString != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.ConnString)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres mirror: %w", err)
		}
		sinks = append(sinks, sink.NewPostgresSink(db, cfg.Postgres.Table))
	}

	sinks = append(sinks, overrides.extraSinks...)
	return sink.NewMultiSink(sinks...), logSink, db, nil
}

// State reports the pipeline controller's current lifecycle state.
func (r *Runtime) State() pipeline.State {
	return r.controller.State()
}

// Run starts the metrics server and blocks in the pipeline controller
// until the context is cancelled or the transport fails. The returned
// error follows the controller's contract: nil after a clean drain,
// non-nil when the session faulted.
func (r *Runtime) Run(ctx context.Context) error {
	r.startMetrics()

	runErr := r.controller.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Shutdown(shutdownCtx); err != nil {
		r.obs.LogError("runtime_shutdown", err)
	}
	return runErr
}

// Shutdown stops the metrics server, the gauge loop, and the database
// connection. The pipeline's own handles (transport, log store) are
// released by the controller on every exit path.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.gaugeStopCh != nil {
		close(r.gaugeStopCh)
		r.gaugeStopCh = nil
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		r.metricsSrv = nil
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
		r.db = nil
	}

	return errors.Join(errs...)
}

func (r *Runtime) startMetrics() {
	if r.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func(srv *http.Server) {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("metrics_server_exited", err)
		}
	}(r.metricsSrv)

	r.gaugeStopCh = make(chan struct{})
	go r.recordLogGauges(r.gaugeStopCh, time.Second)
}

func (r *Runtime) recordLogGauges(stop <-chan struct{}, interval time.Duration) {
	if r.logSink == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := r.logSink.Stats()
			r.obs.SetGauge(observability.MetricLogSizeBytes, float64(stats.SizeBytes))
			r.obs.SetGauge(observability.MetricLogEntries, float64(stats.Entries))
		}
	}
}
