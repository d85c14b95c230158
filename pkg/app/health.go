package app

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"freqcount/pkg/raspberry"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// HandleHealth returns data about the health of myself.
// output example:
//  {"NumGoroutines":11,"NumCPU":4,"HeapAllocatedBytes":332256360,"HeapAllocatedMB":316,
//   "SysMemoryBytes":360290312,"SysMemoryMB":343,"Version":"1.6.10+20261001","ProgLang":"go1.20.3",
//   "HostName":"raspberrypi","Time":"2026-10-16T12:00:00+02:00","Line":"gpiochip0:17",
//   "Counts":1200,"Errors":0,"LastError":""}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		snapshot := app.monitor.Snapshot()
		hab := m.Alloc
		smb := m.Sys

		healthData := struct {
			NumGoroutines      int
			NumCPU             int
			HeapAllocatedBytes uint64
			HeapAllocatedMB    uint64
			SysMemoryBytes     uint64
			SysMemoryMB        uint64
			Version            string
			ProgLang           string
			HostName           string
			Time               string
			Line               string
			Counts             uint64
			Errors             uint64
			LastError          string
		}{
			NumGoroutines:      runtime.NumGoroutine(),
			NumCPU:             runtime.NumCPU(),
			HeapAllocatedBytes: hab,
			HeapAllocatedMB:    bToMb(hab),
			SysMemoryBytes:     smb,
			SysMemoryMB:        bToMb(smb),
			ProgLang:           runtime.Version(),
			Version:            VERSION,
			HostName:           host,
			Time:               time.Now().Format(time.RFC3339),
			Line:               app.line(),
			Counts:             snapshot.Counts,
			Errors:             snapshot.Errors,
			LastError:          snapshot.Err,
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}

// line returns the name of the measured line.
func (app *App) line() string {
	if app.config.Backend == "gpiomem" {
		return fmt.Sprintf("gpiomem:%v", app.config.Gpio)
	}
	return fmt.Sprintf("%v:%v", raspberry.ChipName(app.config.Chip), app.config.Gpio)
}
