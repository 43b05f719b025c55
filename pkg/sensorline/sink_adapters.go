package sensorline

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChannelSinkClosed is returned when a channel sink is written to
// after being closed.
var ErrChannelSinkClosed = errors.New("sensorline: channel sink closed")

// Reading is one processed record together with its derived metric and
// any alerts that fired, as delivered to callback and channel sinks.
type Reading struct {
	Record    *Record
	Magnitude float64
	Alerts    []Alert
}

// ReadingFunc receives each processed record in arrival order.
type ReadingFunc func(Reading) error

// NewCallbackSink adapts a ReadingFunc into a full Sink implementation
// so embedders can plug arbitrary functions without defining structs.
func NewCallbackSink(name string, fn ReadingFunc) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes readings via a channel; it returns the sink,
// the read-only channel, and a close function the caller should invoke
// during shutdown.
func NewChannelSink(name string, buffer int) (Sink, <-chan Reading, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Reading, buffer)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   ReadingFunc
}

func (s *callbackSink) Name() string { return s.name }

func (s *callbackSink) Start() error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	return nil
}

func (s *callbackSink) Emit(r *Record, magnitude float64, alerts []Alert) error {
	return s.fn(Reading{Record: r, Magnitude: magnitude, Alerts: alerts})
}

func (s *callbackSink) Close() error { return nil }

type channelSink struct {
	name   string
	ch     chan Reading
	closed chan struct{}
	once   sync.Once
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) Start() error { return nil }

func (s *channelSink) Emit(r *Record, magnitude float64, alerts []Alert) error {
	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	default:
	}

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- Reading{Record: r, Magnitude: magnitude, Alerts: alerts}:
		return nil
	}
}

func (s *channelSink) Close() error { return nil }

func (s *channelSink) close() {
	s.once.Do(func() {
		close(s.closed)
		close(s.ch)
	})
}
