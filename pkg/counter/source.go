package counter

import (
	"time"

	"freqcount/pkg/port"
)

// Source is an input line delivering edge events.
//
// Count requests edge events before the first Wait and releases them on
// every exit path. A line is never held between two calls to Count.
type Source interface {
	// Request asks for the delivery of rising and falling edge events.
	Request() error
	// Wait blocks up to timeout until an edge event is pending.
	// It returns false if the timeout expired. A negative timeout blocks
	// until an event arrives.
	Wait(timeout time.Duration) (bool, error)
	// Read consumes exactly one pending edge event.
	// It must only be called after Wait reported a pending event.
	Read() (port.Event, error)
	// Release stops the delivery of edge events.
	Release() error
}
