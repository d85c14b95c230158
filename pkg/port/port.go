// Package port holds the definition of an edge event on a physical input line
package port

import "time"

// EventType indicates the type of change to the line active state.
//
// Note that for active low lines a low line level results in a high active
// state.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates an inactive to active event (low to high).
	RisingEdge
	// FallingEdge indicates an active to inactive event (high to low).
	FallingEdge
)

// Event is a single edge notification of a line.
type Event struct {
	// Timestamp indicates the time the event was detected.
	// Only the difference between two timestamps of the same source is meaningful.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}

// State returns the line level which is active after the edge.
// A rising edge starts a high half period, a falling edge a low half period.
func (t EventType) State() StateType {
	switch t {
	case RisingEdge:
		return High
	case FallingEdge:
		return Low
	default:
		return Invalid
	}
}

func (t EventType) String() string {
	switch t {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	default:
		return "invalid"
	}
}

type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
	// Invalid indicates an unknown or invalid state.
	Invalid StateType = -1
)
