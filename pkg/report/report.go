// Package report prints the results of a frequency counter.
//
// Formats are printf style and may use the length modifiers of C (%.04lf),
// they are dropped before formatting. Infinite values print as "inf" like
// the C library does.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"freqcount/pkg/counter"
)

// DefaultFormat is the default output format of a value.
const DefaultFormat = "%.04lf"

// Mode selects the printed values.
type Mode int

const (
	Frequency Mode = iota + 1
	Period
	SplitPeriod
	DutyCycle
	All
)

// Print writes the selected values of m to w, terminated by a newline.
func Print(w io.Writer, format string, mode Mode, m counter.Measurement) error {
	f := func(v float64) string {
		return Sprintf(format, v)
	}

	var s string
	switch mode {
	case Period:
		s = f(m.Period())
	case SplitPeriod:
		s = f(m.LowPeriod) + " " + f(m.HighPeriod)
	case DutyCycle:
		s = f(m.DutyCycle())
	case All:
		s = "frequency = " + f(m.Frequency()) +
			"\nperiod = " + f(m.Period()) +
			" (low = " + f(m.LowPeriod) +
			" ; high = " + f(m.HighPeriod) +
			")\nduty cycle = " + f(m.DutyCycle())
	default:
		s = f(m.Frequency())
	}

	_, err := io.WriteString(w, s+"\n")
	return err
}

// Sprintf formats v with every conversion of the C style format.
func Sprintf(format string, v float64) string {
	var b strings.Builder

	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}

		spec, verb, n := parseSpec(format[i+1:])
		i += n
		switch verb {
		case 0:
			// dangling %
			b.WriteString("%" + spec)
		case '%':
			b.WriteByte('%')
		default:
			b.WriteString(formatValue(spec, verb, v))
		}
	}

	return b.String()
}

// parseSpec splits a conversion into flags/width/precision and verb.
// Length modifiers are skipped. n is the count of bytes consumed.
func parseSpec(s string) (spec string, verb byte, n int) {
	var b strings.Builder

	for n < len(s) {
		c := s[n]
		switch {
		case strings.IndexByte("-+ #0123456789.", c) >= 0:
			b.WriteByte(c)
		case strings.IndexByte("hlLqjzt", c) >= 0:
			// length modifier
		default:
			return b.String(), c, n + 1
		}
		n++
	}

	return b.String(), 0, n
}

func formatValue(spec string, verb byte, v float64) string {
	switch verb {
	case 'a':
		verb = 'x'
	case 'A':
		verb = 'X'
	case 'd', 'i', 'u':
		return fmt.Sprintf("%"+spec+"d", int64(v))
	}

	if math.IsInf(v, 0) || math.IsNaN(v) {
		return formatNonFinite(spec, verb, v)
	}

	return fmt.Sprintf("%"+spec+string(verb), v)
}

// formatNonFinite keeps flags and width but prints inf and nan like C.
func formatNonFinite(spec string, verb byte, v float64) string {
	s := "nan"
	switch {
	case math.IsInf(v, 1):
		s = "inf"
		if strings.ContainsRune(spec, '+') {
			s = "+inf"
		}
	case math.IsInf(v, -1):
		s = "-inf"
	}

	if verb >= 'A' && verb <= 'Z' {
		s = strings.ToUpper(s)
	}

	if i := strings.IndexByte(spec, '.'); i >= 0 {
		spec = spec[:i]
	}
	width := strings.TrimLeft(spec, "-+ #0")
	if strings.ContainsRune(spec[:len(spec)-len(width)], '-') {
		width = "-" + width
	}

	return fmt.Sprintf("%"+width+"s", s)
}
