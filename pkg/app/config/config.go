package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file.
// Durations are configured as integers and converted by LoadConfig.
type Config struct {
	// Backend selects the gpio driver: gpiod (character device) or gpiomem.
	Backend string `yaml:"backend"`
	// Chip is the gpio chip by number, name or path (backend gpiod only).
	Chip string `yaml:"chip"`
	// Gpio is the line offset (gpiod) or the BCM number (gpiomem).
	Gpio int `yaml:"gpio"`
	// Bias is the terminator of the input: pullup, pulldown or none.
	Bias string `yaml:"bias"`
	// BufSize is the count of half periods per buffer.
	BufSize int `yaml:"bufsize"`
	// Waves is the count of waves per measurement, 0 is BufSize.
	Waves int `yaml:"waves"`
	// Legacy treats zero length intervals as unset.
	Legacy bool `yaml:"legacy"`

	IntervalInt int           `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
	BackoffInt  int           `yaml:"backoff"`
	Backoff     time.Duration `yaml:"-"`

	Flag      FlagConfig      `yaml:"-"`
	Debug     DebugConfig     `yaml:"debug"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Debug      string
	ConfigFile string
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection  string        `yaml:"connection"`
	Interval    time.Duration `yaml:"-"`
	IntervalInt int           `yaml:"interval"`
	Topic       string        `yaml:"topic"`
	// DeltaHertz is the frequency change which is published immediately.
	DeltaHertz float64 `yaml:"deltahertz"`
	// DeltaDuty is the duty cycle change which is published immediately.
	DeltaDuty float64 `yaml:"deltaduty"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Backend:     "gpiod",
		Chip:        "gpiochip0",
		Bias:        "none",
		BufSize:     32,
		IntervalInt: 1000,
		BackoffInt:  30000,
		Flag:        FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
				"metrics": true,
			},
		},
		MQTT: MQTTConfig{
			Connection:  "",
			IntervalInt: 60,
			Topic:       "/gpio/frequency",
			DeltaHertz:  1,
			DeltaDuty:   0.05,
		},
	}
}

// LoadConfig reads the configuration file and applies the command line flags.
func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.Debug != "" {
		c.Debug.FlagString = c.Flag.Debug
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	c.convert()
	return c.validate()
}

// convert turns the integer settings of the file into durations.
func (c *Config) convert() {
	c.Interval = time.Duration(c.IntervalInt) * time.Millisecond
	c.Backoff = time.Duration(c.BackoffInt) * time.Millisecond
	c.MQTT.Interval = time.Duration(c.MQTT.IntervalInt) * time.Second
}

func (c *Config) validate() error {
	switch c.Backend {
	case "gpiod", "gpiomem":
	default:
		return fmt.Errorf("unsupported backend %q", c.Backend)
	}

	if c.BufSize < 1 {
		return fmt.Errorf("bufsize must be greater than 0 (got %v)", c.BufSize)
	}
	if c.Waves < 0 {
		return fmt.Errorf("waves must not be negative (got %v)", c.Waves)
	}
	// the monitor observes cancellation between measurements only
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be greater than 0 (got %v)", c.IntervalInt)
	}
	return nil
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDebugConfig() (err error) {
	if c.Debug.Flag, err = LogFlag(c.Debug.FlagString); err != nil {
		return err
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}

// LogFlag returns the debug flag of a log level name.
func LogFlag(level string) (int, error) {
	switch level {
	case "trace", "full":
		return debug.Full, nil
	case "debug":
		return debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug, nil
	case "standard":
		return debug.Standard, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}
