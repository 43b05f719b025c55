package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"sensorline/internal/domain"
	"sensorline/internal/ports"
)

// scriptedSource replays canned ReadLine results; once exhausted it
// reports timeouts so the controller can observe cancellation.
type scriptedSource struct {
	lines   []string
	readErr error
	openErr error

	// onDrained fires once when the scripted lines run out, before the
	// first timeout is reported. Tests use it to cancel the run context
	// without racing on the line slice.
	onDrained func()

	opened bool
	closed bool
}

func (s *scriptedSource) Open() error {
	if s.openErr != nil {
		return s.openErr
	}
	s.opened = true
	return nil
}

func (s *scriptedSource) ReadLine() (string, error) {
	if len(s.lines) > 0 {
		line := s.lines[0]
		s.lines = s.lines[1:]
		return line, nil
	}
	if s.readErr != nil {
		return "", s.readErr
	}
	if s.onDrained != nil {
		s.onDrained()
		s.onDrained = nil
	}
	return "", ports.ErrReadTimeout
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

type emitted struct {
	record    *domain.Record
	magnitude float64
	alerts    []domain.Alert
}

type recordingSink struct {
	startErr error
	emitErr  error

	started bool
	closed  bool
	got     []emitted
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *recordingSink) Emit(r *domain.Record, magnitude float64, alerts []domain.Alert) error {
	s.got = append(s.got, emitted{record: r, magnitude: magnitude, alerts: alerts})
	return s.emitErr
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

type mockObs struct {
	infos     []string
	errors    []string
	criticals []string
	counters  map[string]float64
	dropped   int
}

func (m *mockObs) LogInfo(msg string, _ ...ports.Field) { m.infos = append(m.infos, msg) }
func (m *mockObs) LogError(msg string, _ error, _ ...ports.Field) {
	m.errors = append(m.errors, msg)
}
func (m *mockObs) LogCritical(msg string, _ error, _ ...ports.Field) {
	m.criticals = append(m.criticals, msg)
}
func (m *mockObs) IncCounter(name string, v float64) {
	if m.counters == nil {
		m.counters = make(map[string]float64)
	}
	m.counters[name] += v
}
func (m *mockObs) ObserveLatency(string, float64)      {}
func (m *mockObs) SetGauge(string, float64)            {}
func (m *mockObs) RecordDropped(*domain.Record, error) { m.dropped++ }

// runUntilDrained runs the controller with a context that cancels once
// the scripted lines are consumed, then returns Run's error.
func runUntilDrained(t *testing.T, c *Controller, src *scriptedSource) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src.onDrained = cancel
	return c.Run(ctx)
}

func TestRunProcessesLinesInOrder(t *testing.T) {
	src := &scriptedSource{lines: []string{
		`{"id":"M1","ts":1699999999,"tempC":27.1,"ax":-0.03,"ay":0.98,"az":0.05,"light":123,"bat":3.01}`,
		`{"id":"M1","ts":1,"tempC":35,"ax":0,"ay":0,"az":0,"light":5,"bat":2.5}`,
	}}
	sink := &recordingSink{}
	obs := &mockObs{}
	c := NewController(src, sink, obs)

	if err := runUntilDrained(t, c, src); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.State() != StateStopped {
		t.Fatalf("expected stopped state, got %s", c.State())
	}
	if len(sink.got) != 2 {
		t.Fatalf("expected 2 emitted records, got %d", len(sink.got))
	}

	first := sink.got[0]
	if first.record.DeviceID != "M1" || len(first.alerts) != 0 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.magnitude < 0.981 || first.magnitude > 0.982 {
		t.Fatalf("expected magnitude ≈ 0.9815, got %f", first.magnitude)
	}

	second := sink.got[1]
	want := []domain.AlertKind{domain.AlertHighTemperature, domain.AlertLowLight, domain.AlertLowBattery}
	if len(second.alerts) != len(want) {
		t.Fatalf("expected %d alerts, got %d", len(want), len(second.alerts))
	}
	for i, kind := range want {
		if second.alerts[i].Kind != kind {
			t.Fatalf("alert %d: expected %s, got %s", i, kind, second.alerts[i].Kind)
		}
	}
}

func TestRunContinuesPastDecodeFailures(t *testing.T) {
	src := &scriptedSource{lines: []string{
		"not-json",
		`{"tempC":10}`,
		`{"id":"M1","tempC":20}`,
	}}
	sink := &recordingSink{}
	obs := &mockObs{}
	c := NewController(src, sink, obs)

	if err := runUntilDrained(t, c, src); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.got) != 1 {
		t.Fatalf("expected only the valid record emitted, got %d", len(sink.got))
	}
	if len(obs.errors) != 2 {
		t.Fatalf("expected one diagnostic per bad line, got %v", obs.errors)
	}
	if got := obs.counters["sensorline_decode_failures_total"]; got != 2 {
		t.Fatalf("expected 2 decode failures counted, got %f", got)
	}
}

func TestRunOpenFailureFaults(t *testing.T) {
	openErr := errors.New("no such device")
	src := &scriptedSource{openErr: openErr}
	sink := &recordingSink{}
	obs := &mockObs{}
	c := NewController(src, sink, obs)

	err := c.Run(context.Background())
	var te *TransportError
	if !errors.As(err, &te) || te.Op != "open" {
		t.Fatalf("expected open TransportError, got %v", err)
	}
	if !errors.Is(err, openErr) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if c.State() != StateFaulted {
		t.Fatalf("expected faulted state, got %s", c.State())
	}
	if sink.started {
		t.Fatalf("sink must not start when transport open fails")
	}
	if len(obs.criticals) == 0 {
		t.Fatalf("expected a critical diagnostic for open failure")
	}
}

func TestRunMidStreamReadErrorFaults(t *testing.T) {
	src := &scriptedSource{
		lines:   []string{`{"id":"M1","tempC":20}`},
		readErr: io.ErrUnexpectedEOF,
	}
	sink := &recordingSink{}
	obs := &mockObs{}
	c := NewController(src, sink, obs)

	err := c.Run(context.Background())
	var te *TransportError
	if !errors.As(err, &te) || te.Op != "read" {
		t.Fatalf("expected read TransportError, got %v", err)
	}
	if c.State() != StateFaulted {
		t.Fatalf("expected faulted state, got %s", c.State())
	}
	// the record before the fault was still processed
	if len(sink.got) != 1 {
		t.Fatalf("expected 1 record before fault, got %d", len(sink.got))
	}
	// resources released best-effort
	if !sink.closed || !src.closed {
		t.Fatalf("expected sink and source released on fault")
	}
}

func TestRunSinkStartFailure(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordingSink{startErr: errors.New("log dir read-only")}
	obs := &mockObs{}
	c := NewController(src, sink, obs)

	if err := c.Run(context.Background()); err == nil {
		t.Fatalf("expected error when sink cannot start")
	}
	if c.State() != StateFaulted {
		t.Fatalf("expected faulted state, got %s", c.State())
	}
	if !src.closed {
		t.Fatalf("expected transport released when sink start fails")
	}
}

func TestRunEmitFailureIsNonFatal(t *testing.T) {
	src := &scriptedSource{lines: []string{
		`{"id":"M1","tempC":20}`,
		`{"id":"M1","tempC":21}`,
	}}
	sink := &recordingSink{emitErr: errors.New("disk unhappy")}
	obs := &mockObs{}
	c := NewController(src, sink, obs)

	if err := runUntilDrained(t, c, src); err != nil {
		t.Fatalf("emit failures must not stop ingestion: %v", err)
	}
	if len(sink.got) != 2 {
		t.Fatalf("expected both records attempted, got %d", len(sink.got))
	}
	if obs.dropped != 2 {
		t.Fatalf("expected 2 dropped entries reported, got %d", obs.dropped)
	}
}

func TestRunGracefulShutdown(t *testing.T) {
	src := &scriptedSource{}
	sink := &recordingSink{}
	obs := &mockObs{}
	c := NewController(src, sink, obs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("controller did not observe stop signal")
	}

	if c.State() != StateStopped {
		t.Fatalf("expected stopped state, got %s", c.State())
	}
	if !sink.closed || !src.closed {
		t.Fatalf("expected handles released on shutdown")
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateIdle:       "idle",
		StateConnecting: "connecting",
		StateStreaming:  "streaming",
		StateDraining:   "draining",
		StateStopped:    "stopped",
		StateFaulted:    "faulted",
	}
	for state, want := range states {
		if state.String() != want {
			t.Fatalf("expected %q, got %q", want, state.String())
		}
	}
}
