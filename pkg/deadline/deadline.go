// Package deadline tracks the remaining time of an optional measuring budget.
package deadline

import (
	"math"
	"time"

	"github.com/facebookgo/clock"
)

// Infinite is the remaining time reported without a budget.
// Event sources block indefinitely on a negative timeout.
const Infinite time.Duration = -1

// Tracker computes the remaining time of a fixed budget since Start.
type Tracker struct {
	clock clock.Clock
	// start is the instant captured by Start.
	start time.Time
	// budget is the whole time a measurement may take, zero if unbounded.
	budget time.Duration
}

// New creates a tracker for budget. A budget <= 0 means no deadline.
// A nil clock uses the system clock.
func New(c clock.Clock, budget time.Duration) *Tracker {
	if c == nil {
		c = clock.New()
	}
	if budget < 0 {
		budget = 0
	}

	return &Tracker{clock: c, budget: budget}
}

// Start captures the current instant.
func (t *Tracker) Start() {
	t.start = t.clock.Now()
}

// Bounded reports whether the tracker has a budget.
func (t *Tracker) Bounded() bool {
	return t.budget > 0
}

// Budget returns the configured budget, zero if unbounded.
func (t *Tracker) Budget() time.Duration {
	return t.budget
}

// Elapsed returns the time since Start. It never goes negative.
func (t *Tracker) Elapsed() time.Duration {
	return Sub(t.clock.Now(), t.start)
}

// Remaining returns the time left of the budget and whether it has expired.
// Without a budget it always returns (Infinite, false).
func (t *Tracker) Remaining() (time.Duration, bool) {
	if !t.Bounded() {
		return Infinite, false
	}

	elapsed := t.Elapsed()
	if elapsed >= t.budget {
		return 0, true
	}

	return t.budget - elapsed, false
}

// Sub returns a-b, saturated at zero.
func Sub(a, b time.Time) time.Duration {
	if d := a.Sub(b); d > 0 {
		return d
	}
	return 0
}

// FromTimespec converts a seconds/nanoseconds pair into a budget.
// Only a positive sec, or a zero sec with a positive nsec, sets a deadline,
// anything else means no deadline. A deadline whose total is not positive
// expires at once, budgets beyond the range of a time.Duration saturate.
func FromTimespec(sec, nsec int64) time.Duration {
	if sec < 0 || (sec == 0 && nsec <= 0) {
		return 0
	}

	if sec > math.MaxInt64/int64(time.Second) {
		return math.MaxInt64
	}

	d := time.Duration(sec) * time.Second
	if nsec > 0 && d > math.MaxInt64-time.Duration(nsec) {
		return math.MaxInt64
	}

	d += time.Duration(nsec)
	if d <= 0 {
		return time.Nanosecond
	}
	return d
}
