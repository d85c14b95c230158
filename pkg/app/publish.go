package app

import (
	"math"
	"time"

	"freqcount/pkg/app/config"
	"freqcount/pkg/monitor"

	"github.com/womat/debug"
)

// setThresholds sets the deltas which trigger an mqtt message.
func (app *App) setThresholds(c config.MQTTConfig) {
	app.published.Lock()
	defer app.published.Unlock()

	app.published.interval = c.Interval
	app.published.deltaHertz = c.DeltaHertz
	app.published.deltaDuty = c.DeltaDuty
	debug.DebugLog.Printf("mqtt thresholds: interval %v, delta %v Hz, delta duty cycle %v", c.Interval, c.DeltaHertz, c.DeltaDuty)
}

// validateMeasurements checks the snapshot by deltaT, delta frequency and delta duty cycle
// and sends the snapshot to mqtt if one of the delta values is exceeded.
// The first snapshot is always sent.
func (app *App) validateMeasurements(s monitor.Snapshot) {
	app.published.Lock()
	defer app.published.Unlock()

	if app.published.valid && !exceeds(app.published.snapshot, s,
		app.published.interval, app.published.deltaHertz, app.published.deltaDuty) {
		debug.TraceLog.Printf("skip mqtt message, frequency %v Hz", s.Frequency)
		return
	}

	if err := app.mqtt.Publish(app.config.MQTT.Topic, s); err != nil {
		debug.ErrorLog.Printf("sendMQTT: %v", err)
		return
	}

	app.published.snapshot = s
	app.published.valid = true
}

// exceeds reports whether current differs enough from last to be published.
func exceeds(last, current monitor.Snapshot, interval time.Duration, deltaHertz, deltaDuty float64) bool {
	if current.Time.Sub(last.Time) >= interval {
		return true
	}
	if changed(last.Frequency, current.Frequency, deltaHertz) {
		return true
	}
	if changed(last.DutyCycle, current.DutyCycle, deltaDuty) {
		return true
	}
	// a measurement starts or stops failing
	return (last.Err == "") != (current.Err == "")
}

// changed reports whether a and b differ by at least delta.
// A change between a finite and an infinite value always counts.
func changed(a, b, delta float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a != b
	}
	return math.Abs(a-b) >= delta
}
