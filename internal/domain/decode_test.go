package domain

import (
	"errors"
	"testing"
)

func TestDecodeFullRecord(t *testing.T) {
	raw := `{"id":"M1","ts":1699999999,"tempC":27.1,"ax":-0.03,"ay":0.98,"az":0.05,"light":123,"bat":3.01}`

	r, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.DeviceID != "M1" {
		t.Fatalf("expected device M1, got %q", r.DeviceID)
	}
	if r.Timestamp != 1699999999 {
		t.Fatalf("expected ts 1699999999, got %f", r.Timestamp)
	}
	if r.TemperatureC != 27.1 {
		t.Fatalf("expected tempC 27.1, got %f", r.TemperatureC)
	}
	if r.AccelX != -0.03 || r.AccelY != 0.98 || r.AccelZ != 0.05 {
		t.Fatalf("accel mismatch: %f %f %f", r.AccelX, r.AccelY, r.AccelZ)
	}
	if r.LightLevel != 123 {
		t.Fatalf("expected light 123, got %d", r.LightLevel)
	}
	if r.BatteryVoltage != 3.01 {
		t.Fatalf("expected bat 3.01, got %f", r.BatteryVoltage)
	}
	if r.Raw != raw {
		t.Fatalf("expected raw line retained, got %q", r.Raw)
	}
}

func TestDecodeTolerantDefaults(t *testing.T) {
	r, err := Decode(`{"id":"M2","tempC":10}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Timestamp != 0 || r.AccelX != 0 || r.AccelY != 0 || r.AccelZ != 0 {
		t.Fatalf("expected zero defaults, got %+v", r)
	}
	if r.LightLevel != 0 || r.BatteryVoltage != 0 {
		t.Fatalf("expected zero defaults, got %+v", r)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	r, err := Decode(`{"id":"M1","tempC":21.5,"firmware":"1.2.0","rssi":-70}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.DeviceID != "M1" || r.TemperatureC != 21.5 {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not-json",
		`{"id":"M1","tempC":`,
		`[1,2,3]`,
		`"just a string"`,
	}
	for _, raw := range cases {
		_, err := Decode(raw)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("input %q: expected DecodeError, got %v", raw, err)
		}
		if de.Reason != ReasonMalformed {
			t.Fatalf("input %q: expected malformed, got %s", raw, de.Reason)
		}
	}
}

func TestDecodeIncomplete(t *testing.T) {
	cases := []string{
		`{"tempC":10}`,
		`{"id":"","tempC":10}`,
		`{"id":"M1"}`,
		`{"id":"M1","tempC":"hot"}`,
		`{"id":"M1","tempC":null}`,
		`{"id":42,"tempC":10}`,
	}
	for _, raw := range cases {
		_, err := Decode(raw)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("input %q: expected DecodeError, got %v", raw, err)
		}
		if de.Reason != ReasonIncomplete {
			t.Fatalf("input %q: expected incomplete, got %s", raw, de.Reason)
		}
		if de.Raw != raw {
			t.Fatalf("input %q: expected raw preserved, got %q", raw, de.Raw)
		}
	}
}

func TestDecodeWrongTypeOptionalFieldsDefault(t *testing.T) {
	r, err := Decode(`{"id":"M1","tempC":22,"ax":"fast","light":"dark"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.AccelX != 0 || r.LightLevel != 0 {
		t.Fatalf("expected wrong-typed optional fields to default, got %+v", r)
	}
}

func TestDecodePreservesPrecision(t *testing.T) {
	r, err := Decode(`{"id":"M1","tempC":27.100000000000001,"bat":3.0099999999999998}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.TemperatureC != 27.100000000000001 {
		t.Fatalf("tempC precision lost: %v", r.TemperatureC)
	}
	if r.BatteryVoltage != 3.0099999999999998 {
		t.Fatalf("bat precision lost: %v", r.BatteryVoltage)
	}
}
