//go:build linux

package raspberry

import (
	"fmt"
	"time"

	"freqcount/pkg/port"

	"github.com/facebookgo/clock"
	"github.com/warthog618/gpiod"
	"github.com/womat/debug"
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
	name      string
}

// Line is an input line of a chip.
// Edge events are only delivered between Request and Release.
type Line struct {
	chip   *Chip
	offset int
	bias   string
	clock  clock.Clock

	// gpiodLine is the requested line, nil if released.
	gpiodLine *gpiod.Line
	q         *queue
}

// OpenChip opens a GPIO character device by number, name or path.
func OpenChip(chip string) (*Chip, error) {
	name := ChipName(chip)

	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c, name: name}, nil
}

// NewLine prepares line offset of the chip as edge source.
// The bias defines the terminator of the input (pullup, pulldown or none).
func (c *Chip) NewLine(offset int, bias string) (*Line, error) {
	b, err := CheckBias(bias)
	if err != nil {
		return nil, err
	}

	if offset < 0 || offset >= c.gpiodChip.Lines() {
		return nil, fmt.Errorf("%w: %v has no line %v", ErrInvalidParam, c.name, offset)
	}

	return &Line{chip: c, offset: offset, bias: b, clock: clock.New()}, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be
// released independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Request requests the line as input and watches both edges.
func (l *Line) Request() (err error) {
	if l.gpiodLine != nil {
		return fmt.Errorf("line %v already requested", l)
	}

	q := newQueue(l.clock, eventBufferSize)

	// handler runs in the event goroutine of gpiod and must not block
	handler := func(evt gpiod.LineEvent) {
		e := port.Event{Timestamp: evt.Timestamp}

		switch evt.Type {
		case gpiod.LineEventRisingEdge:
			e.Type = port.RisingEdge
		case gpiod.LineEventFallingEdge:
			e.Type = port.FallingEdge
		}

		if !q.push(e) {
			debug.ErrorLog.Printf("line %v: event queue overflow, %v events dropped", l, q.dropped())
		}
	}

	options := []gpiod.LineReqOption{gpiod.WithEventHandler(handler), gpiod.WithBothEdges, gpiod.AsInput}
	switch l.bias {
	case BiasPullUp:
		options = append(options, gpiod.WithPullUp)
	case BiasPullDown:
		options = append(options, gpiod.WithPullDown)
	}

	if l.gpiodLine, err = l.chip.gpiodChip.RequestLine(l.offset, options...); err != nil {
		l.gpiodLine = nil
		return err
	}

	l.q = q
	debug.DebugLog.Printf("line %v requested (bias %v)", l, l.bias)
	return nil
}

// Wait blocks up to timeout until an edge is pending.
func (l *Line) Wait(timeout time.Duration) (bool, error) {
	if l.gpiodLine == nil {
		return false, ErrNotRequested
	}
	return l.q.wait(timeout), nil
}

// Read returns the pending edge.
func (l *Line) Read() (port.Event, error) {
	if l.gpiodLine == nil {
		return port.Event{}, ErrNotRequested
	}
	return l.q.read()
}

// Release releases the line and drops pending edges.
//
// Note that this includes waiting for any running event handler to return.
func (l *Line) Release() error {
	if l.gpiodLine == nil {
		return nil
	}

	err := l.gpiodLine.Close()
	l.gpiodLine = nil
	l.q = nil
	return err
}

func (l *Line) String() string {
	return fmt.Sprintf("%v:%v", l.chip.name, l.offset)
}
