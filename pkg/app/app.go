package app

import (
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"freqcount/pkg/app/config"
	"freqcount/pkg/counter"
	"freqcount/pkg/monitor"
	"freqcount/pkg/mqtt"
	"freqcount/pkg/raspberry"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// gpio is the handler to the gpio chip or the rpi gpio memory
	gpio io.Closer

	// counter measures the configured line
	counter *counter.Counter

	// monitor runs the counter in the background
	monitor *monitor.Monitor

	// published holds the last snapshot sent to mqtt and the thresholds
	// which trigger the next one
	published published

	// quit stops the config file watcher
	quit chan struct{}
	// running is set when all services were started
	running bool

	// shutdown is closed if a service stops on its own, e.g. the web server
	// can't listen
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// published is the state of the mqtt publisher.
type published struct {
	sync.Mutex
	snapshot   monitor.Snapshot
	valid      bool
	interval   time.Duration
	deltaHertz float64
	deltaDuty  float64
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	app := &App{
		config:    config,
		urlParsed: u,

		web:  fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt: mqtt.New(),

		quit:     make(chan struct{}),
		shutdown: make(chan struct{}),
	}
	app.setThresholds(config.MQTT)

	return app, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	go app.watchConfig()
	app.monitor.Start()
	app.running = true

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	var src counter.Source

	if src, app.gpio, err = openSource(app.config); err != nil {
		debug.ErrorLog.Printf("can't open gpio: %v", err)
		return err
	}

	var options []counter.Option
	if app.config.Legacy {
		options = append(options, counter.WithLegacyZeroSentinel())
	}

	if app.counter, err = counter.New(src, app.config.BufSize, options...); err != nil {
		debug.ErrorLog.Printf("can't create counter: %v", err)
		return err
	}
	debug.InfoLog.Printf("measuring %v", app.counter)

	app.monitor = monitor.New(app.counter, app.config.Waves, app.config.Interval,
		monitor.WithMaxBackoff(app.config.Backoff),
		monitor.WithOnUpdate(app.validateMeasurements))

	if err = app.mqtt.Connect(app.config.MQTT.Connection, MODULE); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it accesses the monitor
	app.initDefaultRoutes()

	return nil
}

// openSource requests the configured line of the configured backend.
// The returned closer releases the chip or the gpio memory.
func openSource(c *config.Config) (counter.Source, io.Closer, error) {
	switch c.Backend {
	case "gpiomem":
		m, err := raspberry.OpenMem()
		if err != nil {
			return nil, nil, err
		}
		p, err := m.NewPin(c.Gpio, c.Bias)
		if err != nil {
			_ = m.Close()
			return nil, nil, err
		}
		return p, m, nil

	case "gpiod":
		chip, err := raspberry.OpenChip(c.Chip)
		if err != nil {
			return nil, nil, err
		}
		l, err := chip.NewLine(c.Gpio, c.Bias)
		if err != nil {
			_ = chip.Close()
			return nil, nil, err
		}
		return l, chip, nil
	}

	return nil, nil, fmt.Errorf("unsupported backend %q", c.Backend)
}

// watchConfig applies changes of the configuration file until the app is closed.
func (app *App) watchConfig() {
	if err := app.config.Watch(app.quit, app.applyConfig); err != nil {
		debug.ErrorLog.Printf("can't watch config file: %v", err)
	}
}

// applyConfig takes over the settings which can change at runtime:
// the mqtt publish thresholds and the log level.
// Everything else needs a restart.
func (app *App) applyConfig(c *config.Config) {
	app.setThresholds(c.MQTT)

	if c.Debug.Flag != app.config.Debug.Flag {
		debug.InfoLog.Printf("change log level to %q", c.Debug.FlagString)
		debug.SetDebug(app.config.Debug.File, c.Debug.Flag)
		app.config.Debug.Flag = c.Debug.Flag
	}
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/freqmon/main.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// requestShutdown signals the application to stop, it may be called more than once.
func (app *App) requestShutdown(reason error) {
	app.shutdownOnce.Do(func() {
		debug.ErrorLog.Printf("request shutdown: %v", reason)
		close(app.shutdown)
	})
}

// Close stops the measuring, the web server and the mqtt client and
// releases the gpio.
func (app *App) Close() error {
	if app.quit != nil {
		close(app.quit)
		app.quit = nil
	}

	if app.monitor != nil {
		_ = app.monitor.Close()
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}

	// the mqtt service drains its queue before the client disconnects
	if app.running {
		_ = app.mqtt.Disconnect()
	}

	if app.gpio != nil {
		return app.gpio.Close()
	}
	return nil
}
