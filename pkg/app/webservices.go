package app

import (
	"bytes"
	"fmt"

	"freqcount/pkg/monitor"

	"github.com/gofiber/fiber/v2"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/womat/debug"
	"google.golang.org/protobuf/proto"
)

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
//  If the server fails, e.g. the address is in use, the application is shut down.
//  Listen returns nil after Close stopped the server.
func (app *App) runWebServer() {
	if err := app.web.Listen(app.urlParsed.Host); err != nil {
		app.requestShutdown(fmt.Errorf("web server: %w", err))
	}
}

// HandleData returns the latest measurement.
// output example:
//  {"time":"2026-10-16T12:00:00.5+02:00","frequency":50.01,"period":0.019996,"lowPeriod":0.009998,
//   "highPeriod":0.009998,"dutyCycle":0.5,"counts":1200,"errors":0,"errorsInRow":0}
// Periods without samples are null.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		return ctx.JSON(app.monitor.Snapshot())
	}
}

// HandleMetrics returns the latest measurement in the prometheus text format.
func (app *App) HandleMetrics() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request metrics")

		var b bytes.Buffer
		for _, mf := range metricFamilies(app.line(), app.monitor.Snapshot()) {
			if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
				debug.ErrorLog.Printf("write metric %v: %v", mf.GetName(), err)
				return fiber.ErrInternalServerError
			}
		}

		ctx.Set(fiber.HeaderContentType, string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		return ctx.Send(b.Bytes())
	}
}

// metricFamilies converts a snapshot into gauges and counters labeled by line.
func metricFamilies(line string, s monitor.Snapshot) []*dto.MetricFamily {
	labels := func(pairs ...string) []*dto.LabelPair {
		l := []*dto.LabelPair{{Name: proto.String("line"), Value: proto.String(line)}}
		for i := 0; i+1 < len(pairs); i += 2 {
			l = append(l, &dto.LabelPair{Name: proto.String(pairs[i]), Value: proto.String(pairs[i+1])})
		}
		return l
	}

	gauge := func(name, help string, metrics ...*dto.Metric) *dto.MetricFamily {
		return &dto.MetricFamily{
			Name:   proto.String(name),
			Help:   proto.String(help),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: metrics,
		}
	}

	counter := func(name, help string, v uint64) *dto.MetricFamily {
		return &dto.MetricFamily{
			Name: proto.String(name),
			Help: proto.String(help),
			Type: dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{{
				Label:   labels(),
				Counter: &dto.Counter{Value: proto.Float64(float64(v))},
			}},
		}
	}

	value := func(v float64, pairs ...string) *dto.Metric {
		return &dto.Metric{Label: labels(pairs...), Gauge: &dto.Gauge{Value: proto.Float64(v)}}
	}

	families := []*dto.MetricFamily{
		gauge("freqmon_frequency_hertz", "Averaged frequency of the input line.",
			value(s.Frequency)),
		gauge("freqmon_period_seconds", "Averaged period of the input line, +Inf without samples.",
			value(s.Period)),
		gauge("freqmon_half_period_seconds", "Averaged low and high half periods of the input line.",
			value(s.LowPeriod, "level", "low"),
			value(s.HighPeriod, "level", "high")),
		gauge("freqmon_duty_cycle_ratio", "Ratio of the high half period to the period.",
			value(s.DutyCycle)),
		counter("freqmon_counts_total", "Measurements since start.", s.Counts),
		counter("freqmon_count_errors_total", "Failed measurements since start.", s.Errors),
	}

	if !s.Time.IsZero() {
		families = append(families, gauge("freqmon_last_count_timestamp_seconds", "Time of the latest measurement.",
			value(float64(s.Time.UnixNano())/1e9)))
	}

	return families
}
