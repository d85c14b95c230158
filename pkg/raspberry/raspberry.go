// Package raspberry provides the edge event sources of gpio lines.
//
// A Line uses the GPIO character device (gpiod), a Pin the memory mapped
// registers of a Raspberry Pi (/dev/gpiomem). Both deliver the edges of the
// line to an internal queue while they are requested, so that a frequency
// counter can wait for and read them one by one.
package raspberry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// consumer is the label of requested lines.
const consumer = "gpiofreq"

// eventBufferSize is the count of edges which may wait in the queue.
const eventBufferSize = 1024

var (
	ErrInvalidParam = fmt.Errorf("invalid parameters")
	// ErrNotSupported is returned on platforms without gpio support.
	ErrNotSupported = errors.New("gpio is not supported on this platform")
	// ErrNotRequested is returned by Wait and Read on a released line.
	ErrNotRequested = errors.New("line not requested")
	// ErrNoEvent is returned by Read if no event is pending.
	ErrNoEvent = errors.New("no pending event")
)

const (
	BiasNone     = "none"
	BiasPullUp   = "pullup"
	BiasPullDown = "pulldown"
)

// CheckBias validates the bias (terminator) of an input line.
// An empty bias is BiasNone.
func CheckBias(bias string) (string, error) {
	switch bias {
	case "", BiasNone:
		return BiasNone, nil
	case BiasPullUp, BiasPullDown:
		return bias, nil
	default:
		return "", fmt.Errorf("%w: bias %q", ErrInvalidParam, bias)
	}
}

// ChipName resolves a chip given by number (0), name (gpiochip0) or path
// (/dev/gpiochip0) to its name.
func ChipName(chip string) string {
	if _, err := strconv.ParseUint(chip, 10, 32); err == nil {
		return "gpiochip" + chip
	}
	return strings.TrimPrefix(chip, "/dev/")
}
