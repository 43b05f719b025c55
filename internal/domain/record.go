package domain

// Record is one decoded, validated sensor sample. It is constructed by
// Decode and treated as read-only by every downstream stage.
type Record struct {
	DeviceID       string  `json:"device_id"`
	Timestamp      float64 `json:"ts"`
	TemperatureC   float64 `json:"temp_c"`
	AccelX         float64 `json:"accel_x"`
	AccelY         float64 `json:"accel_y"`
	AccelZ         float64 `json:"accel_z"`
	LightLevel     int     `json:"light_level"`
	BatteryVoltage float64 `json:"battery_voltage"`

	// Raw is the original wire line the record was decoded from,
	// stripped of surrounding whitespace. The log store appends it
	// verbatim.
	Raw string `json:"-"`
}

// AlertKind names a threshold condition.
type AlertKind string

const (
	AlertHighMotion      AlertKind = "HighMotion"
	AlertHighTemperature AlertKind = "HighTemperature"
	AlertLowLight        AlertKind = "LowLight"
	AlertLowBattery      AlertKind = "LowBattery"
)

// Alert is a threshold condition that fired for a single record. Alerts
// are ephemeral: rendered, logged, then discarded.
type Alert struct {
	Kind   AlertKind
	Value  float64
	Record *Record
}
