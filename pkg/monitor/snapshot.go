package monitor

import (
	"encoding/json"
	"math"
	"time"

	"freqcount/pkg/counter"
)

// Snapshot is the result of one count of the monitor.
// Periods are seconds, +Inf if no interval was recorded.
type Snapshot struct {
	Time       time.Time
	Frequency  float64
	Period     float64
	LowPeriod  float64
	HighPeriod float64
	DutyCycle  float64
	// Counts is the count of measurements since start.
	Counts uint64
	// Errors is the count of failed measurements since start.
	Errors uint64
	// ErrorsInRow is the count of failed measurements since the last success.
	ErrorsInRow uint64
	// Err is the error of the measurement, empty on success.
	Err string
}

func newSnapshot(m counter.Measurement) Snapshot {
	return Snapshot{
		Frequency:  m.Frequency(),
		Period:     m.Period(),
		LowPeriod:  m.LowPeriod,
		HighPeriod: m.HighPeriod,
		DutyCycle:  m.DutyCycle(),
	}
}

// Valid reports whether the snapshot holds a finite period.
func (s Snapshot) Valid() bool {
	return !math.IsInf(s.Period, 0) && !math.IsNaN(s.Period)
}

// MarshalJSON encodes infinite and NaN values as null, encoding/json
// refuses them.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Time        time.Time `json:"time"`
		Frequency   *float64  `json:"frequency"`
		Period      *float64  `json:"period"`
		LowPeriod   *float64  `json:"lowPeriod"`
		HighPeriod  *float64  `json:"highPeriod"`
		DutyCycle   *float64  `json:"dutyCycle"`
		Counts      uint64    `json:"counts"`
		Errors      uint64    `json:"errors"`
		ErrorsInRow uint64    `json:"errorsInRow"`
		Err         string    `json:"error,omitempty"`
	}{
		Time:        s.Time,
		Frequency:   finite(s.Frequency),
		Period:      finite(s.Period),
		LowPeriod:   finite(s.LowPeriod),
		HighPeriod:  finite(s.HighPeriod),
		DutyCycle:   finite(s.DutyCycle),
		Counts:      s.Counts,
		Errors:      s.Errors,
		ErrorsInRow: s.ErrorsInRow,
		Err:         s.Err,
	})
}

func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}
