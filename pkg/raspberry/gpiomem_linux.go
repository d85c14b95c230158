//go:build linux

package raspberry

import (
	"fmt"
	"time"

	"freqcount/pkg/deadline"
	"freqcount/pkg/port"

	"github.com/facebookgo/clock"
	"github.com/warthog618/gpio"
	"github.com/womat/debug"
)

// Mem is the memory mapped GPIO of a Raspberry Pi.
type Mem struct {
	pins map[int]*Pin
}

// Pin is an input pin watched by the gpio interrupt handler.
// The pin state is read after each edge to find its polarity and the
// timestamp is taken when the handler runs.
type Pin struct {
	gpioPin *gpio.Pin
	bias    string
	clock   clock.Clock
	// origin is the reference of the event timestamps.
	origin  time.Time
	watched bool
	q       *queue
}

// OpenMem opens the GPIO memory range from /dev/gpiomem.
func OpenMem() (*Mem, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &Mem{pins: map[int]*Pin{}}, nil
}

// Close removes the interrupt handlers and unmaps GPIO memory.
func (m *Mem) Close() error {
	for _, p := range m.pins {
		_ = p.Release()
	}
	return gpio.Close()
}

// NewPin creates a new pin object.
// The pin number provided is the BCM GPIO number.
func (m *Mem) NewPin(p int, bias string) (*Pin, error) {
	b, err := CheckBias(bias)
	if err != nil {
		return nil, err
	}

	if _, ok := m.pins[p]; ok {
		return nil, fmt.Errorf("pin %v already used", p)
	}

	c := clock.New()
	pin := &Pin{gpioPin: gpio.NewPin(p), bias: b, clock: c, origin: c.Now()}
	m.pins[p] = pin
	return pin, nil
}

// Request sets the pin as input and watches both edges.
func (p *Pin) Request() error {
	if p.watched {
		return fmt.Errorf("pin %v already watched", p)
	}

	p.gpioPin.Input()
	switch p.bias {
	case BiasPullUp:
		p.gpioPin.PullUp()
	case BiasPullDown:
		p.gpioPin.PullDown()
	}

	q := newQueue(p.clock, eventBufferSize)

	handler := func(g *gpio.Pin) {
		e := port.Event{Timestamp: deadline.Sub(p.clock.Now(), p.origin), Type: port.FallingEdge}
		if g.Read() == gpio.High {
			e.Type = port.RisingEdge
		}

		if !q.push(e) {
			debug.ErrorLog.Printf("pin %v: event queue overflow, %v events dropped", p, q.dropped())
		}
	}

	if err := p.gpioPin.Watch(gpio.EdgeBoth, handler); err != nil {
		return err
	}

	p.q = q
	p.watched = true
	debug.DebugLog.Printf("pin %v watched (bias %v)", p, p.bias)
	return nil
}

// Wait blocks up to timeout until an edge is pending.
func (p *Pin) Wait(timeout time.Duration) (bool, error) {
	if !p.watched {
		return false, ErrNotRequested
	}
	return p.q.wait(timeout), nil
}

// Read returns the pending edge.
func (p *Pin) Read() (port.Event, error) {
	if !p.watched {
		return port.Event{}, ErrNotRequested
	}
	return p.q.read()
}

// Release removes the watch from the pin.
func (p *Pin) Release() error {
	if !p.watched {
		return nil
	}

	p.gpioPin.Unwatch()
	p.watched = false
	p.q = nil
	return nil
}

func (p *Pin) String() string {
	return fmt.Sprintf("gpiomem:%v", p.gpioPin.Pin())
}
