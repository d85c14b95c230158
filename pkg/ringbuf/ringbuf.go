// Package ringbuf holds fixed size windows of half period durations.
//
// A Buffer overwrites its oldest interval once it is full. By default only
// written slots take part in the average, so a zero length interval is a real
// measurement. In a legacy buffer a zero slot means "never written" and is
// skipped by Average.
package ringbuf

import (
	"errors"
	"math"
	"time"

	"github.com/emirpasic/gods/queues/circularbuffer"
)

// ErrInvalidSize is returned for capacities smaller than one.
var ErrInvalidSize = errors.New("buffer size must be greater than 0")

// Buffer is a circular buffer of interval durations.
// It is not safe for concurrent use.
type Buffer struct {
	// q holds the written intervals, oldest first.
	q *circularbuffer.Queue
	// capacity is the fixed number of slots.
	capacity int
	// offset is the slot the next interval is written to.
	offset int
	// legacy skips zero intervals while averaging.
	legacy bool
}

// New creates a buffer with capacity slots.
func New(capacity int, legacy bool) (*Buffer, error) {
	if capacity < 1 {
		return nil, ErrInvalidSize
	}

	return &Buffer{
		q:        circularbuffer.New(capacity),
		capacity: capacity,
		legacy:   legacy,
	}, nil
}

// Put writes d to the slot at the cursor and advances the cursor.
// If the buffer is full, the oldest interval is overwritten.
func (b *Buffer) Put(d time.Duration) {
	if d < 0 {
		d = 0
	}

	b.q.Enqueue(d)
	b.offset = (b.offset + 1) % b.capacity
}

// Average returns the mean of the valid intervals in seconds.
// It returns +Inf if there is no valid interval yet.
func (b *Buffer) Average() float64 {
	var sum float64
	var n int

	for _, v := range b.q.Values() {
		d := v.(time.Duration)
		if b.legacy && d == 0 {
			continue
		}
		sum += d.Seconds()
		n++
	}

	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n)
}

// Values returns the written intervals, oldest first.
func (b *Buffer) Values() []time.Duration {
	values := b.q.Values()
	out := make([]time.Duration, len(values))
	for i, v := range values {
		out[i] = v.(time.Duration)
	}
	return out
}

// Reset drops all intervals and rewinds the cursor.
func (b *Buffer) Reset() {
	b.q.Clear()
	b.offset = 0
}

// Len returns the number of written slots.
func (b *Buffer) Len() int {
	return b.q.Size()
}

// Cap returns the capacity.
func (b *Buffer) Cap() int {
	return b.capacity
}

// Offset returns the write cursor.
func (b *Buffer) Offset() int {
	return b.offset
}

// Legacy reports whether zero slots are treated as unset.
func (b *Buffer) Legacy() bool {
	return b.legacy
}
