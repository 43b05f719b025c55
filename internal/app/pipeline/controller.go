package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sensorline/internal/domain"
	"sensorline/internal/ports"
)

// State is the controller's lifecycle position. The pipeline moves
// Idle → Connecting → Streaming → Draining → Stopped on the happy path;
// Faulted is terminal and reachable from Connecting or Streaming.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateDraining
	StateStopped
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// TransportError marks a fatal transport lifecycle failure: open failed,
// or the read stream broke mid-session. Per-record failures never
// surface as a TransportError.
type TransportError struct {
	Op  string // "open" or "read"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// openHints are the likely causes reported when the transport cannot be
// opened at startup.
var openHints = []string{
	"the device is not connected",
	"the configured port path is wrong",
	"the port is already in use by another process",
}

// Controller owns the run loop: it pulls lines from the source, drives
// decode → metric → alerts → emit for each, routes per-line failures
// back into the loop, and handles graceful shutdown. All per-record
// work is synchronous, so records, alerts, and log entries keep the
// exact order lines arrived in.
type Controller struct {
	source ports.LineSource
	sink   ports.Sink
	obs    ports.Observability

	state State
}

func NewController(source ports.LineSource, sink ports.Sink, obs ports.Observability) *Controller {
	return &Controller{
		source: source,
		sink:   sink,
		obs:    obs,
		state:  StateIdle,
	}
}

// State returns the controller's current lifecycle state. Run mutates
// it from a single goroutine; callers polling from another goroutine
// only get a snapshot.
func (c *Controller) State() State { return c.state }

// Run executes the pipeline until the context is cancelled or the
// transport fails. A nil return means a clean Draining → Stopped
// shutdown; a *TransportError return means the session faulted and the
// process should exit non-zero.
func (c *Controller) Run(ctx context.Context) error {
	c.transition(StateConnecting)

	if err := c.source.Open(); err != nil {
		c.obs.LogCritical("transport_open_failed", err,
			ports.Field{Key: "hints", Value: openHints})
		c.transition(StateFaulted)
		return &TransportError{Op: "open", Err: err}
	}

	if err := c.sink.Start(); err != nil {
		c.source.Close()
		c.obs.LogCritical("sink_start_failed", err)
		c.transition(StateFaulted)
		return fmt.Errorf("start sink %s: %w", c.sink.Name(), err)
	}

	c.transition(StateStreaming)
	c.obs.LogInfo("streaming", ports.Field{Key: "sink", Value: c.sink.Name()})

	var fatal error
loop:
	for {
		select {
		case <-ctx.Done():
			c.transition(StateDraining)
			break loop
		default:
		}

		line, err := c.source.ReadLine()
		switch {
		case errors.Is(err, ports.ErrReadTimeout):
			// no line within the bounded read; loop to observe shutdown
			continue
		case err != nil:
			c.obs.LogCritical("transport_read_failed", err)
			fatal = &TransportError{Op: "read", Err: err}
			break loop
		}

		c.handleLine(line)
	}

	c.release()

	if fatal != nil {
		c.transition(StateFaulted)
		return fatal
	}
	c.transition(StateStopped)
	c.obs.LogInfo("stopped")
	return nil
}

// handleLine runs one line through decode → metric → alerts → emit.
// Failures here are reported once and never escape the loop boundary.
func (c *Controller) handleLine(raw string) {
	start := time.Now()

	rec, err := domain.Decode(raw)
	if err != nil {
		c.obs.IncCounter("sensorline_decode_failures_total", 1)
		var de *domain.DecodeError
		if errors.As(err, &de) {
			c.obs.LogError("decode_failed", err,
				ports.Field{Key: "reason", Value: string(de.Reason)},
				ports.Field{Key: "raw", Value: de.Raw})
		} else {
			c.obs.LogError("decode_failed", err)
		}
		return
	}

	magnitude := domain.Magnitude(rec)
	alerts := domain.EvaluateAlerts(rec, magnitude)

	if err := c.sink.Emit(rec, magnitude, alerts); err != nil {
		c.obs.RecordDropped(rec, err)
	}

	c.obs.IncCounter("sensorline_records_total", 1)
	if len(alerts) > 0 {
		c.obs.IncCounter("sensorline_alerts_total", float64(len(alerts)))
	}
	c.obs.ObserveLatency("sensorline_record_process_seconds", time.Since(start).Seconds())
}

// release closes the sink before the source so the final log entry is
// flushed while the transport is still quiescent. Both closes run on
// every exit path.
func (c *Controller) release() {
	if err := c.sink.Close(); err != nil {
		c.obs.LogError("sink_close_failed", err)
	}
	if err := c.source.Close(); err != nil {
		c.obs.LogError("transport_close_failed", err)
	}
}

func (c *Controller) transition(next State) {
	c.state = next
	c.obs.SetGauge("sensorline_pipeline_state", float64(next))
}
