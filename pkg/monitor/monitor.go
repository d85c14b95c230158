// Package monitor runs a frequency counter continuously in the background.
//
// A worker goroutine calls Count again and again with a bounded budget and
// publishes every result as a Snapshot. Readers get a copy of the latest
// snapshot, the lock is held only while copying. After a failed count the
// worker waits an exponential backoff before the next try.
package monitor

import (
	"sync"
	"time"

	"freqcount/pkg/counter"

	"github.com/cenk/backoff"
	"github.com/facebookgo/clock"
	"github.com/womat/debug"
)

// defaultMaxBackoff limits the wait after failed counts.
const defaultMaxBackoff = 30 * time.Second

// Counter is the measuring part of counter.Counter used by the monitor.
type Counter interface {
	Count(waves int, budget time.Duration) error
	Measurement() counter.Measurement
}

// Monitor measures in a background goroutine.
type Monitor struct {
	counter Counter
	waves   int
	budget  time.Duration

	clock    clock.Clock
	backoff  *backoff.ExponentialBackOff
	onUpdate func(Snapshot)

	// mu guards snapshot and running.
	mu       sync.Mutex
	snapshot Snapshot
	running  bool

	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock sets the clock of the backoff timer and the snapshot time.
// Normally, this is only used for testing.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithMaxBackoff limits the wait between failed counts.
func WithMaxBackoff(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.backoff.MaxInterval = d
		}
	}
}

// WithOnUpdate registers f to be called by the worker after each count.
// f must not block.
func WithOnUpdate(f func(Snapshot)) Option {
	return func(m *Monitor) {
		m.onUpdate = f
	}
}

// New creates a monitor which counts waves waves per measurement, a waves
// value of 0 uses the buffer size of the counter. budget must be greater
// than 0, otherwise the worker could not be stopped while no edges arrive.
func New(c Counter, waves int, budget time.Duration, options ...Option) *Monitor {
	m := &Monitor{
		counter:  c,
		waves:    waves,
		budget:   budget,
		clock:    clock.New(),
		backoff:  backoff.NewExponentialBackOff(),
		snapshot: newSnapshot(counter.Unset()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	m.backoff.MaxInterval = defaultMaxBackoff
	for _, option := range options {
		option(m)
	}

	m.backoff.MaxElapsedTime = 0
	m.backoff.Clock = m.clock
	m.backoff.Reset()

	return m
}

// Start starts the worker. Start must be called at most once.
func (m *Monitor) Start() {
	m.mu.Lock()
	m.running = true
	m.mu.Unlock()

	debug.InfoLog.Printf("start monitor, %v waves within %v", m.waves, m.budget)
	go m.run()
}

// Close stops the worker and waits until the running count returned.
func (m *Monitor) Close() error {
	m.quitOnce.Do(func() { close(m.quit) })

	m.mu.Lock()
	running := m.running
	m.mu.Unlock()

	if running {
		<-m.done
	}
	return nil
}

// Snapshot returns a copy of the latest result.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

func (m *Monitor) run() {
	defer close(m.done)

	for {
		select {
		case <-m.quit:
			debug.InfoLog.Print("monitor stopped")
			return
		default:
		}

		err := m.counter.Count(m.waves, m.budget)
		s := m.update(err)

		if m.onUpdate != nil {
			m.onUpdate(s)
		}

		if err == nil {
			m.backoff.Reset()
			continue
		}

		wait := m.backoff.NextBackOff()
		if wait == backoff.Stop {
			wait = m.backoff.MaxInterval
		}
		debug.ErrorLog.Printf("count failed (%v in a row): %v, retry in %v", s.ErrorsInRow, err, wait)

		t := m.clock.Timer(wait)
		select {
		case <-m.quit:
			t.Stop()
			debug.InfoLog.Print("monitor stopped")
			return
		case <-t.C:
		}
	}
}

// update stores the result of a count and returns the new snapshot.
func (m *Monitor) update(err error) Snapshot {
	s := newSnapshot(m.counter.Measurement())
	s.Time = m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	s.Counts = m.snapshot.Counts + 1
	s.Errors = m.snapshot.Errors
	if err != nil {
		s.Errors++
		s.ErrorsInRow = m.snapshot.ErrorsInRow + 1
		s.Err = err.Error()
	}

	m.snapshot = s
	return s
}
