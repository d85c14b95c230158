package counter

import (
	"time"

	"freqcount/pkg/deadline"
	"freqcount/pkg/port"

	"github.com/womat/debug"
)

const (
	// warmup is the process state to wait for the first edge.
	// The interval before the first edge is unknown, the edge only seeds the measurement.
	warmup stateType = iota
	// measuring is the process state to record intervals between edges.
	measuring
	// completed is reached after the target count of edges was recorded.
	completed
	// timedOut is reached if the deadline expires before the target count.
	timedOut
	// failed is reached if the source reports an error.
	failed
)

// stateType represents the state of the counting process.
type stateType int

func (s stateType) String() string {
	switch s {
	case warmup:
		return "warmup"
	case measuring:
		return "measuring"
	case completed:
		return "completed"
	case timedOut:
		return "timed out"
	case failed:
		return "failed"
	default:
		return "unknown"
	}
}

// machine is the counting state machine of a single Count call.
type machine struct {
	src      Source
	deadline *deadline.Tracker
	// record receives each interval, indexed by the level active during it.
	record func(level port.StateType, interval time.Duration)
	// target is the count of edges to record.
	target int

	state stateType
	// prev is the last edge read.
	prev port.Event
	// edges is the count of recorded intervals.
	edges int
}

// run waits for edges until the target count is reached, the deadline expires
// or the source fails. It returns the source error in state failed.
func (m *machine) run() error {
	m.state = warmup

	for {
		remaining, expired := m.deadline.Remaining()
		if expired {
			m.state = timedOut
			return nil
		}

		ready, err := m.src.Wait(remaining)
		if err != nil {
			m.state = failed
			return &Error{Kind: ErrWaitFailed, Err: err}
		}
		if !ready {
			// the poll timeout may be shorter than the whole budget
			continue
		}

		e, err := m.src.Read()
		if err != nil {
			m.state = failed
			return &Error{Kind: ErrReadFailed, Err: err}
		}
		if e.Type.State() == port.Invalid {
			m.state = failed
			return &Error{Kind: ErrReadFailed, Err: ErrInvalidEvent}
		}

		if done := m.edge(e); done {
			m.state = completed
			return nil
		}
	}
}

// edge handles one edge and reports whether the target count is reached.
func (m *machine) edge(e port.Event) bool {
	switch m.state {
	case warmup:
		debug.TraceLog.Printf("first event: %v %v", e.Type, e.Timestamp)
		m.prev = e
		m.state = measuring
		return false

	case measuring:
		// the half period which just elapsed belongs to the level of the previous edge
		interval := e.Timestamp - m.prev.Timestamp
		if interval < 0 {
			interval = 0
		}
		debug.TraceLog.Printf("period: %v %v", m.prev.Type.State(), interval)
		m.record(m.prev.Type.State(), interval)
		m.prev = e
		m.edges++
		return m.edges >= m.target
	}

	return false
}
