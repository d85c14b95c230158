package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"freqcount/pkg/app/config"
	"freqcount/pkg/counter"
	"freqcount/pkg/raspberry"
	"freqcount/pkg/report"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

// errUsage is returned after the usage was printed.
var errUsage = errors.New("usage")

// arguments holds the measuring parameters of the command line.
type arguments struct {
	chip     string
	offset   int
	bias     string
	bufSize  int
	interval time.Duration
	format   string
	mode     report.Mode
}

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	cliApp := newApp(measure)

	if err := cliApp.Run(os.Args); err != nil {
		if !errors.Is(err, errUsage) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		exitCode = 1
		return
	}

	exitCode = 0
}

// newApp builds the command line interface. action is called with the
// checked arguments. Usage and errors are written to stderr, stdout only
// carries the measurement.
func newApp(action func(arguments) error) *cli.App {
	// mode is set by the output flags in command line order, the last one wins
	mode := report.Frequency

	return &cli.App{
		Name:        "gpiofreq",
		Usage:       "measure frequency, period and duty cycle of a gpio input",
		HideHelp:    true,
		HideVersion: true,
		Writer:      os.Stderr,
		ErrWriter:   os.Stderr,
		UsageText: "gpiofreq [-h] [-i <time>] [-b <size>] [-f <format>] [-p | -P | -d | -F | -a] <chip name/number> <offset>" +
			"\n\nEXAMPLE:" +
			"\n\tprint period, half periods and duty cycle of line 17, wait at most 2 seconds" +
			"\n\t\tgpiofreq -i 2 -a gpiochip0 17",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "help", Aliases: []string{"h"}, Usage: "print this help text and exit"},
			&cli.Float64Flag{Name: "interval", Aliases: []string{"i"}, Usage: "maximum `TIME` in seconds (default: none)"},
			&cli.IntFlag{Name: "buf-size", Aliases: []string{"b"}, Value: 32, Usage: "period buffer `SIZE`"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: report.DefaultFormat, Usage: "output `FORMAT` string"},
			newModeFlag("period", "p", "print period", report.Period, &mode),
			newModeFlag("split-period", "P", "print low and high periods", report.SplitPeriod, &mode),
			newModeFlag("duty-cycle", "d", "print duty cycle", report.DutyCycle, &mode),
			newModeFlag("frequency", "F", "print frequency (default)", report.Frequency, &mode),
			newModeFlag("all", "a", "print all of the above", report.All, &mode),
			&cli.StringFlag{Name: "bias", Aliases: []string{"B"}, Value: raspberry.BiasNone, Usage: "line `BIAS` (pullup|pulldown|none)"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Value: "standard", Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.Bool("help") {
				_ = cli.ShowAppHelp(ctx)
				return errUsage
			}

			logFlag, err := config.LogFlag(ctx.String("log"))
			if err != nil {
				return err
			}
			debug.SetDebug(os.Stderr, logFlag)

			args, err := parseArgs(ctx, mode)
			if err != nil {
				return err
			}

			return action(args)
		},
	}
}

// parseArgs checks the command line and returns the measuring parameters.
func parseArgs(ctx *cli.Context, mode report.Mode) (arguments, error) {
	args := arguments{
		bufSize: ctx.Int("buf-size"),
		format:  ctx.String("format"),
		bias:    ctx.String("bias"),
		mode:    mode,
	}

	if ctx.NArg() != 2 {
		_ = cli.ShowAppHelp(ctx)
		return args, errUsage
	}

	if ctx.IsSet("interval") {
		i := ctx.Float64("interval")
		if i <= 0 {
			return args, fmt.Errorf("interval must be greater than 0 (got %v)", i)
		}
		args.interval = time.Duration(i * float64(time.Second))
	}

	if args.bufSize <= 0 {
		return args, fmt.Errorf("buffer size must be greater than 0 (got %v)", args.bufSize)
	}

	args.chip = ctx.Args().Get(0)
	offset, err := strconv.ParseUint(ctx.Args().Get(1), 0, 31)
	if err != nil {
		return args, fmt.Errorf("invalid line offset %q: %w", ctx.Args().Get(1), err)
	}
	args.offset = int(offset)

	return args, nil
}

// modeFlag is a bool flag which selects an output mode.
// It prints its help like a cli.BoolFlag.
type modeFlag struct {
	*cli.BoolFlag
	value *modeValue
}

func newModeFlag(name, alias, usage string, mode report.Mode, dest *report.Mode) *modeFlag {
	return &modeFlag{
		BoolFlag: &cli.BoolFlag{Name: name, Aliases: []string{alias}, Usage: usage},
		value:    &modeValue{mode: mode, dest: dest},
	}
}

// Apply registers the flag and its alias on the flag set.
func (f *modeFlag) Apply(set *flag.FlagSet) error {
	for _, name := range f.BoolFlag.Names() {
		set.Var(f.value, name, f.Usage)
	}
	return nil
}

// Names returns the long name only. cli copies the value of a given alias
// to the other names after parsing, which would apply the mode again out
// of command line order.
func (f *modeFlag) Names() []string {
	return []string{f.Name}
}

// modeValue writes its mode to dest each time the flag is given.
type modeValue struct {
	mode report.Mode
	dest *report.Mode
	set  bool
}

func (v *modeValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}

	v.set = b
	if b {
		*v.dest = v.mode
	}
	return nil
}

func (v *modeValue) String() string {
	if v == nil {
		return "false"
	}
	return strconv.FormatBool(v.set)
}

// IsBoolFlag lets the flag package accept the flag without a value.
func (v *modeValue) IsBoolFlag() bool {
	return true
}

// measure counts one buffer of waves and prints the result.
func measure(args arguments) error {
	chip, err := raspberry.OpenChip(args.chip)
	if err != nil {
		return fmt.Errorf("open chip %s: %w", args.chip, err)
	}
	defer func() { _ = chip.Close() }()

	line, err := chip.NewLine(args.offset, args.bias)
	if err != nil {
		return fmt.Errorf("get line %s:%v: %w", args.chip, args.offset, err)
	}

	c, err := counter.New(line, args.bufSize)
	if err != nil {
		return fmt.Errorf("init counter: %w", err)
	}

	if err = c.Count(0, args.interval); err != nil {
		return fmt.Errorf("count: %w", err)
	}

	return report.Print(os.Stdout, args.format, args.mode, c.Measurement())
}
