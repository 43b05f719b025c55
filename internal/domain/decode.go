package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeReason classifies why a raw line did not produce a Record.
type DecodeReason string

const (
	// ReasonMalformed means the line was empty or not a parseable JSON object.
	ReasonMalformed DecodeReason = "malformed"
	// ReasonIncomplete means the object parsed but lacked a non-empty device
	// id or a numeric temperature.
	ReasonIncomplete DecodeReason = "incomplete"
)

// DecodeError reports a line that could not be turned into a Record.
type DecodeError struct {
	Reason DecodeReason
	Raw    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %q", e.Reason, e.Raw)
}

// Decode parses one wire line into a Record.
//
// The wire format is one JSON object per line:
//
//	{"id":"M1","ts":1699999999,"tempC":27.1,"ax":-0.03,"ay":0.98,"az":0.05,"light":123,"bat":3.01}
//
// Only "id" and "tempC" are required; every other field defaults to its
// zero value when absent or of the wrong JSON type. Unknown fields are
// ignored. Decode is a pure function with no side effects.
func Decode(raw string) (*Record, error) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil, &DecodeError{Reason: ReasonMalformed, Raw: raw}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return nil, &DecodeError{Reason: ReasonMalformed, Raw: raw}
	}

	id, _ := fields["id"].(string)
	temp, hasTemp := fields["tempC"].(float64)
	if id == "" || !hasTemp {
		return nil, &DecodeError{Reason: ReasonIncomplete, Raw: raw}
	}

	r := &Record{
		DeviceID:     id,
		TemperatureC: temp,
		Raw:          line,
	}
	if v, ok := fields["ts"].(float64); ok {
		r.Timestamp = v
	}
	if v, ok := fields["ax"].(float64); ok {
		r.AccelX = v
	}
	if v, ok := fields["ay"].(float64); ok {
		r.AccelY = v
	}
	if v, ok := fields["az"].(float64); ok {
		r.AccelZ = v
	}
	if v, ok := fields["light"].(float64); ok {
		r.LightLevel = int(v)
	}
	if v, ok := fields["bat"].(float64); ok {
		r.BatteryVoltage = v
	}
	return r, nil
}
