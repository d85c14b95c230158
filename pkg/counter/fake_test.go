package counter

import (
	"errors"
	"io"
	"time"

	"freqcount/pkg/port"

	"github.com/facebookgo/clock"
)

// step is one scripted answer of fakeSource.Wait.
type step struct {
	event   port.Event
	timeout time.Duration // advance the clock and report a timed out wait
	waitErr error
	readErr error
}

// fakeSource replays a script of edge events and failures.
// An exhausted script fails the wait with io.EOF.
type fakeSource struct {
	clock   *clock.Mock
	script  []step
	pending *step

	requestErr error
	releaseErr error
	requests   int
	releases   int
	waits      []time.Duration
}

func newFakeSource(c *clock.Mock, script ...step) *fakeSource {
	return &fakeSource{clock: c, script: script}
}

func (f *fakeSource) Request() error {
	if f.requestErr != nil {
		return f.requestErr
	}
	f.requests++
	return nil
}

func (f *fakeSource) Release() error {
	f.releases++
	return f.releaseErr
}

func (f *fakeSource) Wait(timeout time.Duration) (bool, error) {
	f.waits = append(f.waits, timeout)

	if f.requests == f.releases {
		return false, errors.New("wait on a released line")
	}
	if len(f.script) == 0 {
		return false, io.EOF
	}

	s := f.script[0]
	f.script = f.script[1:]

	switch {
	case s.waitErr != nil:
		return false, s.waitErr
	case s.timeout > 0:
		f.clock.Add(s.timeout)
		return false, nil
	}

	f.pending = &s
	return true, nil
}

func (f *fakeSource) Read() (port.Event, error) {
	if f.pending == nil {
		return port.Event{}, errors.New("read without pending event")
	}

	s := f.pending
	f.pending = nil
	if s.readErr != nil {
		return port.Event{}, s.readErr
	}
	return s.event, nil
}

func (f *fakeSource) String() string {
	return "fake"
}

func edge(t port.EventType, ts time.Duration) step {
	return step{event: port.Event{Type: t, Timestamp: ts}}
}

func timeout(d time.Duration) step {
	return step{timeout: d}
}

// squareWave returns n edges starting with a rising edge at start.
// The signal stays high for high and low for low.
func squareWave(start time.Duration, n int, low, high time.Duration) []step {
	steps := make([]step, 0, n)
	ts := start
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			steps = append(steps, edge(port.RisingEdge, ts))
			ts += high
		} else {
			steps = append(steps, edge(port.FallingEdge, ts))
			ts += low
		}
	}
	return steps
}
