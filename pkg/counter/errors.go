package counter

import (
	"errors"

	"freqcount/pkg/ringbuf"
)

var (
	// ErrClaimFailed indicates that edge events could not be requested on the line.
	ErrClaimFailed = errors.New("request both edges events")
	// ErrWaitFailed indicates that waiting for an edge event failed.
	ErrWaitFailed = errors.New("wait for edge event")
	// ErrReadFailed indicates that reading a pending edge event failed.
	ErrReadFailed = errors.New("read edge event")
	// ErrReleaseFailed indicates that the line could not be released.
	ErrReleaseFailed = errors.New("release line")
	// ErrInvalidBufSize is returned by New for buffer sizes smaller than one.
	ErrInvalidBufSize = ringbuf.ErrInvalidSize
	// ErrInvalidEvent is the cause of a read failure for events without polarity.
	ErrInvalidEvent = errors.New("invalid event type")
)

// Error is a failure of the event source during Count.
// errors.Is matches both the kind and the underlying error.
type Error struct {
	// Kind is one of ErrClaimFailed, ErrWaitFailed, ErrReadFailed or ErrReleaseFailed.
	Kind error
	// Err is the error reported by the source.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}
