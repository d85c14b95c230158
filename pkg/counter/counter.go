// Package counter measures frequency, period and duty cycle of a digital
// signal by timestamping its edges.
//
// The intervals between consecutive edges are written to one of two ring
// buffers: the interval after a rising edge is a high half period, the
// interval after a falling edge a low half period. Each Count slides the
// window forward, the averages are refreshed at the end of every Count.
package counter

import (
	"fmt"
	"time"

	"freqcount/pkg/deadline"
	"freqcount/pkg/port"
	"freqcount/pkg/ringbuf"

	"github.com/facebookgo/clock"
	"github.com/womat/debug"
)

// Counter is a frequency counter on a single input line.
// A Counter is not safe for concurrent use: calls to Count and Reset must be
// serialized by the caller.
type Counter struct {
	// src delivers the edge events.
	src Source
	// clock is used to track the deadline.
	clock clock.Clock
	// legacy treats zero intervals as unset.
	legacy bool
	// bufSize is the capacity of both period buffers.
	bufSize int
	// buffers hold the half periods, indexed by port.Low and port.High.
	buffers [2]*ringbuf.Buffer
	// cached holds the averages of the last Count.
	cached Measurement
}

// Option configures a Counter.
type Option func(*Counter)

// WithClock sets the clock used to track deadlines.
// Normally, this is only used for testing.
func WithClock(c clock.Clock) Option {
	return func(cnt *Counter) {
		cnt.clock = c
	}
}

// WithLegacyZeroSentinel treats zero length intervals as unset slots, like
// earlier versions did. A true zero interval is then dropped from the average.
func WithLegacyZeroSentinel() Option {
	return func(cnt *Counter) {
		cnt.legacy = true
	}
}

// New creates a counter on src with bufSize slots per half period buffer.
func New(src Source, bufSize int, options ...Option) (*Counter, error) {
	c := &Counter{
		src:     src,
		clock:   clock.New(),
		bufSize: bufSize,
		cached:  Unset(),
	}

	for _, option := range options {
		option(c)
	}

	for i := range c.buffers {
		b, err := ringbuf.New(bufSize, c.legacy)
		if err != nil {
			return nil, err
		}
		c.buffers[i] = b
	}

	return c, nil
}

// Count measures until waves full waves were recorded or budget elapsed.
// A waves value of 0 uses the buffer size, a budget <= 0 waits without limit.
//
// A timeout is not an error: the averages are refreshed from whatever was
// recorded. If the source fails, the averages are refreshed as well and the
// error is returned. Edge events are released on every exit path.
func (c *Counter) Count(waves int, budget time.Duration) (err error) {
	if waves <= 0 {
		waves = c.bufSize
	}

	if err = c.src.Request(); err != nil {
		debug.ErrorLog.Printf("request both edges events: %v", err)
		return &Error{Kind: ErrClaimFailed, Err: err}
	}

	defer func() {
		if e := c.src.Release(); e != nil {
			debug.ErrorLog.Printf("release line: %v", e)
			if err == nil {
				err = &Error{Kind: ErrReleaseFailed, Err: e}
			}
		}
	}()

	t := deadline.New(c.clock, budget)
	t.Start()

	m := machine{
		src:      c.src,
		deadline: t,
		record:   c.record,
		target:   2 * waves,
	}

	err = m.run()
	c.refresh()

	debug.DebugLog.Printf("count %v: %v/%v edges in %v, low %v, high %v",
		m.state, m.edges, m.target, t.Elapsed(), c.buffers[port.Low].Len(), c.buffers[port.High].Len())

	return err
}

// CountTimespec is Count with the budget given as seconds and nanoseconds.
// Only a positive sec, or a zero sec with a positive nsec, bounds the count,
// other values wait without limit.
func (c *Counter) CountTimespec(waves int, sec, nsec int64) error {
	return c.Count(waves, deadline.FromTimespec(sec, nsec))
}

// Reset clears both buffers and sets the averages to +Inf.
// The line is not touched.
func (c *Counter) Reset() {
	for _, b := range c.buffers {
		b.Reset()
	}
	c.cached = Unset()
}

// record writes an interval to the buffer of the given level.
func (c *Counter) record(level port.StateType, interval time.Duration) {
	c.buffers[level].Put(interval)
}

// refresh recalculates the averages of both buffers.
func (c *Counter) refresh() {
	c.cached = Measurement{
		LowPeriod:  c.buffers[port.Low].Average(),
		HighPeriod: c.buffers[port.High].Average(),
	}
}

// BufSize returns the capacity of the period buffers.
func (c *Counter) BufSize() int {
	return c.bufSize
}

// Measurement returns the averages of the last Count.
func (c *Counter) Measurement() Measurement {
	return c.cached
}

// Period returns the averaged period in seconds, +Inf without samples.
func (c *Counter) Period() float64 {
	return c.cached.Period()
}

// Frequency returns the frequency in hertz, 0 without samples.
func (c *Counter) Frequency() float64 {
	return c.cached.Frequency()
}

// HighPeriod returns the averaged high half period in seconds.
func (c *Counter) HighPeriod() float64 {
	return c.cached.HighPeriod
}

// LowPeriod returns the averaged low half period in seconds.
func (c *Counter) LowPeriod() float64 {
	return c.cached.LowPeriod
}

// DutyCycle returns the ratio of high period to period.
func (c *Counter) DutyCycle() float64 {
	return c.cached.DutyCycle()
}

func (c *Counter) String() string {
	return fmt.Sprintf("FrequencyCounter(line = %v, buf_size = %v)", c.src, c.bufSize)
}
