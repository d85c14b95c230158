package deadline

import (
	"math"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
)

func TestUnbounded(t *testing.T) {
	c := clock.NewMock()
	tr := New(c, 0)
	tr.Start()

	c.Add(time.Hour)
	remaining, expired := tr.Remaining()
	assert.False(t, expired, "an unbounded tracker never expires")
	assert.Equal(t, Infinite, remaining)
	assert.False(t, tr.Bounded())

	assert.False(t, New(c, -time.Second).Bounded(), "negative budgets are unbounded")
}

func TestRemaining(t *testing.T) {
	c := clock.NewMock()
	tr := New(c, 100*time.Millisecond)
	tr.Start()

	remaining, expired := tr.Remaining()
	assert.False(t, expired)
	assert.Equal(t, 100*time.Millisecond, remaining)

	c.Add(30 * time.Millisecond)
	remaining, expired = tr.Remaining()
	assert.False(t, expired)
	assert.Equal(t, 70*time.Millisecond, remaining)
	assert.Equal(t, 30*time.Millisecond, tr.Elapsed())

	c.Add(70 * time.Millisecond)
	remaining, expired = tr.Remaining()
	assert.True(t, expired, "elapsed == budget is expired")
	assert.Zero(t, remaining)

	c.Add(time.Second)
	remaining, expired = tr.Remaining()
	assert.True(t, expired)
	assert.Zero(t, remaining)
}

func TestRestart(t *testing.T) {
	c := clock.NewMock()
	tr := New(c, time.Second)
	tr.Start()
	c.Add(2 * time.Second)

	_, expired := tr.Remaining()
	assert.True(t, expired)

	tr.Start()
	remaining, expired := tr.Remaining()
	assert.False(t, expired, "Start begins a new budget")
	assert.Equal(t, time.Second, remaining)
}

func TestSub(t *testing.T) {
	now := time.Unix(100, 0)
	assert.Equal(t, time.Second, Sub(now, now.Add(-time.Second)))
	assert.Zero(t, Sub(now.Add(-time.Second), now), "Sub saturates at zero")
}

func TestFromTimespec(t *testing.T) {
	assert.Zero(t, FromTimespec(0, 0))
	assert.Zero(t, FromTimespec(-1, 0))
	assert.Equal(t, 1500*time.Millisecond, FromTimespec(1, 500000000))
	assert.Equal(t, 250*time.Microsecond, FromTimespec(0, 250000))
}

func TestFromTimespecWithoutDeadline(t *testing.T) {
	assert.Zero(t, FromTimespec(-1, 2000000000), "a negative sec never sets a deadline")
	assert.Zero(t, FromTimespec(0, -5))
	assert.Zero(t, FromTimespec(math.MinInt64, math.MaxInt64))
}

func TestFromTimespecLimits(t *testing.T) {
	assert.Equal(t, time.Duration(math.MaxInt64), FromTimespec(math.MaxInt64, 0))
	assert.Equal(t, time.Duration(math.MaxInt64), FromTimespec(math.MaxInt64/int64(time.Second), math.MaxInt64))
	assert.Equal(t, time.Nanosecond, FromTimespec(1, -2000000000), "an elapsed deadline expires at once")
	assert.Equal(t, 500*time.Millisecond, FromTimespec(1, -500000000))
}
