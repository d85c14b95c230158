package monitor

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"freqcount/pkg/counter"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCounter returns the scripted errors one by one, nil when exhausted.
type fakeCounter struct {
	mu      sync.Mutex
	clock   *clock.Mock
	errs    []error
	calls   int
	waves   int
	budget  time.Duration
	started []time.Time
	m       counter.Measurement
}

func (f *fakeCounter) Count(waves int, budget time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.waves = waves
	f.budget = budget
	f.started = append(f.started, f.clock.Now())

	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeCounter) Measurement() counter.Measurement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m
}

func (f *fakeCounter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSnapshotBeforeStart(t *testing.T) {
	m := New(&fakeCounter{clock: clock.NewMock()}, 0, time.Second)
	defer func() { _ = m.Close() }()

	s := m.Snapshot()
	assert.True(t, math.IsInf(s.Period, 1))
	assert.Equal(t, 0.0, s.Frequency)
	assert.Equal(t, counter.DutyCycleFallback, s.DutyCycle)
	assert.False(t, s.Valid())
	assert.Zero(t, s.Counts)
}

func TestMonitorPublishesMeasurements(t *testing.T) {
	mock := clock.NewMock()
	fc := &fakeCounter{
		clock: mock,
		m:     counter.Measurement{LowPeriod: 0.015, HighPeriod: 0.005},
	}

	updates := make(chan Snapshot, 16)
	m := New(fc, 8, 500*time.Millisecond, WithClock(mock), WithOnUpdate(func(s Snapshot) {
		select {
		case updates <- s:
		default:
		}
	}))
	m.Start()

	var s Snapshot
	select {
	case s = <-updates:
	case <-time.After(time.Second):
		t.Fatal("no update")
	}
	require.NoError(t, m.Close())

	assert.InDelta(t, 50.0, s.Frequency, 1e-9)
	assert.InDelta(t, 0.02, s.Period, 1e-12)
	assert.InDelta(t, 0.25, s.DutyCycle, 1e-9)
	assert.True(t, s.Valid())
	assert.Empty(t, s.Err)
	assert.GreaterOrEqual(t, m.Snapshot().Counts, uint64(1))

	fc.mu.Lock()
	defer fc.mu.Unlock()
	assert.Equal(t, 8, fc.waves)
	assert.Equal(t, 500*time.Millisecond, fc.budget)
}

func TestMonitorBacksOffAfterErrors(t *testing.T) {
	mock := clock.NewMock()
	errWait := errors.New("wait for edge event")
	fc := &fakeCounter{clock: mock, errs: []error{errWait, errWait}}

	m := New(fc, 0, time.Second, WithClock(mock), WithMaxBackoff(2*time.Second))
	m.Start()

	assert.Eventually(t, func() bool {
		mock.Add(time.Second)
		return fc.Calls() >= 3
	}, 5*time.Second, time.Millisecond)
	require.NoError(t, m.Close())

	fc.mu.Lock()
	defer fc.mu.Unlock()
	assert.True(t, fc.started[1].After(fc.started[0]), "retry waits for the backoff")
	assert.True(t, fc.started[2].After(fc.started[1]), "retry waits for the backoff")

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.Errors)
	assert.Zero(t, s.ErrorsInRow, "a success clears the error run")
	assert.Empty(t, s.Err)
}

func TestMonitorRecordsError(t *testing.T) {
	mock := clock.NewMock()
	fc := &fakeCounter{clock: mock, errs: []error{errors.New("read edge event")}}

	updates := make(chan Snapshot, 1)
	m := New(fc, 0, time.Second, WithClock(mock), WithOnUpdate(func(s Snapshot) {
		select {
		case updates <- s:
		default:
		}
	}))
	m.Start()

	s := <-updates
	assert.Equal(t, "read edge event", s.Err)
	assert.Equal(t, uint64(1), s.Errors)
	assert.Equal(t, uint64(1), s.ErrorsInRow)

	// the worker sleeps in the backoff, Close must not wait for it
	require.NoError(t, m.Close())
}

func TestCloseWithoutStart(t *testing.T) {
	m := New(&fakeCounter{clock: clock.NewMock()}, 0, time.Second)
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestSnapshotJSON(t *testing.T) {
	s := newSnapshot(counter.Unset())
	s.Time = time.Date(2022, 4, 2, 12, 0, 0, 0, time.UTC)
	s.Counts = 3

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Nil(t, got["period"])
	assert.Nil(t, got["lowPeriod"])
	assert.Equal(t, 0.0, got["frequency"])
	assert.Equal(t, 1.0, got["dutyCycle"])
	assert.Equal(t, 3.0, got["counts"])
	assert.Equal(t, "2022-04-02T12:00:00Z", got["time"])
	assert.NotContains(t, got, "error")
}
