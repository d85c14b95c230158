package app

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// VERSION is the release of freqmon as <major>.<year>.<month>+<build date>:
//  1 ....... major release, raised when config keys or web services change incompatibly
//  6 ....... year 2026 (7 -> 2027)
//  10 ...... month of the release (10 = October)
//  20261001  first day of the release month
//
// MODULE names the binary, the default config file and the mqtt client id.
const (
	VERSION = "1.6.10+20261001"
	MODULE  = "freqmon"
)

// HandleVersion returns the release of the monitor.
// output example:
//  {"about":"freqmon V1.6.10","description":"freqmon","version":"1.6.10+20261001"}
func (app *App) HandleVersion() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request version")

		return ctx.JSON(fiber.Map{
			"version":     VERSION,
			"description": MODULE,
			"about":       Version(),
		})
	}
}

// Version returns module and release without build date, e.g. "freqmon V1.6.10".
func Version() string {
	return strings.TrimSpace(MODULE + " V" + strings.Split(VERSION, "+")[0])
}
