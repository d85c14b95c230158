package counter

import "math"

// DutyCycleFallback is the duty cycle reported when the period is zero or
// infinite. The value carries no meaning, it is kept for compatibility with
// the output of earlier versions.
const DutyCycleFallback = 1.0

// Measurement holds the averaged half periods in seconds.
// A half period without valid samples is +Inf.
type Measurement struct {
	LowPeriod  float64
	HighPeriod float64
}

// Unset returns the measurement of a counter without samples.
func Unset() Measurement {
	return Measurement{LowPeriod: math.Inf(1), HighPeriod: math.Inf(1)}
}

// Period returns the sum of both half periods.
func (m Measurement) Period() float64 {
	return m.LowPeriod + m.HighPeriod
}

// Frequency returns 1/Period, 0 for an infinite and +Inf for a zero period.
func (m Measurement) Frequency() float64 {
	period := m.Period()
	switch {
	case math.IsInf(period, 1):
		return 0
	case period == 0:
		return math.Inf(1)
	}
	return 1 / period
}

// DutyCycle returns the ratio of the high half period to the period.
// For zero or infinite periods it returns DutyCycleFallback.
func (m Measurement) DutyCycle() float64 {
	period := m.Period()
	if period == 0 || math.IsInf(period, 1) {
		return DutyCycleFallback
	}
	return m.HighPeriod / period
}
