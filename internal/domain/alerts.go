package domain

// Threshold values for the fixed alert predicates. Comparisons are
// strict: a reading exactly at a threshold does not fire.
const (
	HighMotionThreshold      = 1.5  // g
	HighTemperatureThreshold = 30.0 // °C
	LowLightThreshold        = 20
	LowBatteryThreshold      = 3.0 // V
)

// EvaluateAlerts applies the fixed predicate set to a record and its
// derived magnitude. The predicates are independent and evaluated in a
// fixed order, so identical inputs always yield an identical,
// identically-ordered alert slice. The evaluator holds no state across
// records: no hysteresis, no debouncing, no rate limiting.
func EvaluateAlerts(r *Record, magnitude float64) []Alert {
	var alerts []Alert
	if magnitude > HighMotionThreshold {
		alerts = append(alerts, Alert{Kind: AlertHighMotion, Value: magnitude, Record: r})
	}
	if r.TemperatureC > HighTemperatureThreshold {
		alerts = append(alerts, Alert{Kind: AlertHighTemperature, Value: r.TemperatureC, Record: r})
	}
	if r.LightLevel < LowLightThreshold {
		alerts = append(alerts, Alert{Kind: AlertLowLight, Value: float64(r.LightLevel), Record: r})
	}
	if r.BatteryVoltage < LowBatteryThreshold {
		alerts = append(alerts, Alert{Kind: AlertLowBattery, Value: r.BatteryVoltage, Record: r})
	}
	return alerts
}

// AlertKinds returns the kinds of the given alerts in order, for the
// "ALERTS:" summary line in the log store.
func AlertKinds(alerts []Alert) []string {
	if len(alerts) == 0 {
		return nil
	}
	kinds := make([]string, len(alerts))
	for i, a := range alerts {
		kinds[i] = string(a.Kind)
	}
	return kinds
}
