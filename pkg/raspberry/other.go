//go:build !linux

package raspberry

import (
	"time"

	"freqcount/pkg/port"
)

// Chip is not available on this platform.
type Chip struct{}

// Line is not available on this platform.
type Line struct{}

// Mem is not available on this platform.
type Mem struct{}

// Pin is not available on this platform.
type Pin struct{}

// OpenChip always fails with ErrNotSupported.
func OpenChip(chip string) (*Chip, error) {
	return nil, ErrNotSupported
}

func (c *Chip) NewLine(offset int, bias string) (*Line, error) {
	return nil, ErrNotSupported
}

func (c *Chip) Close() error {
	return nil
}

func (l *Line) Request() error { return ErrNotSupported }
func (l *Line) Wait(time.Duration) (bool, error) { return false, ErrNotSupported }
func (l *Line) Read() (port.Event, error) { return port.Event{}, ErrNotSupported }
func (l *Line) Release() error { return nil }

// OpenMem always fails with ErrNotSupported.
func OpenMem() (*Mem, error) {
	return nil, ErrNotSupported
}

func (m *Mem) NewPin(p int, bias string) (*Pin, error) {
	return nil, ErrNotSupported
}

func (m *Mem) Close() error {
	return nil
}

func (p *Pin) Request() error { return ErrNotSupported }
func (p *Pin) Wait(time.Duration) (bool, error) { return false, ErrNotSupported }
func (p *Pin) Read() (port.Event, error) { return port.Event{}, ErrNotSupported }
func (p *Pin) Release() error { return nil }
