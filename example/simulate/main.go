// Command simulate replays canned telemetry lines through the public
// runtime API with a callback sink, so the pipeline can be exercised
// without a serial device attached.
package main

import (
	"context"
	"fmt"
	"log"

	"sensorline"
)

var lines = []string{
	`{"id":"M1","ts":1699999999,"tempC":27.1,"ax":-0.03,"ay":0.98,"az":0.05,"light":123,"bat":3.01}`,
	`{"id":"M1","ts":1700000000,"tempC":27.3,"ax":-0.02,"ay":0.99,"az":0.04,"light":119,"bat":3.01}`,
	`{"id":"M1","ts":1700000001,"tempC":35,"ax":1.2,"ay":1.1,"az":0.4,"light":5,"bat":2.5}`,
	`not-json`,
	`{"tempC":10}`,
}

type replaySource struct {
	lines  []string
	cancel context.CancelFunc
}

func (s *replaySource) Open() error { return nil }

func (s *replaySource) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		s.cancel()
		return "", sensorline.ErrReadTimeout
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *replaySource) Close() error { return nil }

func main() {
	cfg := &sensorline.Config{
		Transport: sensorline.TransportConfig{Address: "simulated"},
		Log:       sensorline.LogConfig{Path: "./data/simulated.log"},
		Metrics:   sensorline.MetricsConfig{Addr: ""},
	}
	cfg.ApplyDefaults()
	cfg.Metrics.Addr = ""

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &replaySource{lines: lines, cancel: cancel}

	rt, err := sensorline.NewRuntime(cfg,
		sensorline.WithLineSource(src),
		sensorline.WithExtraSink(sensorline.NewCallbackSink("print-alerts", func(r sensorline.Reading) error {
			for _, a := range r.Alerts {
				fmt.Printf(">> %s on %s (%.3f)\n", a.Kind, r.Record.DeviceID, a.Value)
			}
			return nil
		})),
	)
	if err != nil {
		log.Fatalf("new runtime: %v", err)
	}

	if err := rt.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
