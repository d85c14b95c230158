package main

import (
	"bytes"
	"os"
	"testing"
	"time"

	"freqcount/pkg/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run parses args and returns the arguments passed to the action.
func run(t *testing.T, args ...string) (arguments, *bytes.Buffer, error) {
	t.Helper()

	var got arguments
	var out bytes.Buffer

	a := newApp(func(args arguments) error {
		got = args
		return nil
	})
	a.Writer = &out
	a.ErrWriter = &out

	err := a.Run(append([]string{"gpiofreq"}, args...))
	return got, &out, err
}

func TestDefaults(t *testing.T) {
	args, _, err := run(t, "gpiochip0", "17")
	require.NoError(t, err)

	assert.Equal(t, arguments{
		chip:    "gpiochip0",
		offset:  17,
		bias:    "none",
		bufSize: 32,
		format:  report.DefaultFormat,
		mode:    report.Frequency,
	}, args)
}

func TestOptions(t *testing.T) {
	args, _, err := run(t, "-i", "1.5", "-b", "8", "-f", "%.2f", "-P", "0", "0x10")
	require.NoError(t, err)

	assert.Equal(t, "0", args.chip)
	assert.Equal(t, 16, args.offset)
	assert.Equal(t, 8, args.bufSize)
	assert.Equal(t, 1500*time.Millisecond, args.interval)
	assert.Equal(t, "%.2f", args.format)
	assert.Equal(t, report.SplitPeriod, args.mode)
}

func TestLongOptions(t *testing.T) {
	args, _, err := run(t, "--interval", "0.25", "--buf-size", "4", "--duty-cycle", "--bias", "pullup", "/dev/gpiochip1", "4")
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, args.interval)
	assert.Equal(t, 4, args.bufSize)
	assert.Equal(t, report.DutyCycle, args.mode)
	assert.Equal(t, "pullup", args.bias)
}

func TestLastModeWins(t *testing.T) {
	tests := map[string]struct {
		args []string
		want report.Mode
	}{
		"all then period":      {[]string{"-a", "-p"}, report.Period},
		"period then all":      {[]string{"-p", "-a"}, report.All},
		"long and short names": {[]string{"--split-period", "-d", "--frequency"}, report.Frequency},
		"alias after alias":    {[]string{"-F", "-d", "-P"}, report.SplitPeriod},
		"repeated flag":        {[]string{"-p", "-a", "-p"}, report.Period},
		"explicit false":       {[]string{"-p", "--all=false"}, report.Period},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			args, _, err := run(t, append(tc.args, "0", "1")...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, args.mode)
		})
	}
}

func TestUsageOnStderr(t *testing.T) {
	a := newApp(func(arguments) error { return nil })
	assert.Equal(t, os.Stderr, a.Writer, "stdout only carries the measurement")
	assert.Equal(t, os.Stderr, a.ErrWriter)
}

func TestHelp(t *testing.T) {
	_, out, err := run(t, "-h")
	assert.ErrorIs(t, err, errUsage, "help exits with an error")
	assert.Contains(t, out.String(), "gpiofreq [-h]")
}

func TestInvalidArguments(t *testing.T) {
	tests := map[string][]string{
		"missing offset":    {"gpiochip0"},
		"too many args":     {"gpiochip0", "1", "2"},
		"zero interval":     {"-i", "0", "gpiochip0", "1"},
		"negative interval": {"-i", "-2", "gpiochip0", "1"},
		"zero buffer":       {"-b", "0", "gpiochip0", "1"},
		"invalid offset":    {"gpiochip0", "line"},
		"unknown log level": {"-l", "chatty", "gpiochip0", "1"},
		"unknown flag":      {"-x", "gpiochip0", "1"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, args...)
			assert.Error(t, err)
		})
	}
}
