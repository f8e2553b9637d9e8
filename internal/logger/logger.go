package logger

import (
	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Colorized printing functions for the different log levels.
// They behave like fmt.Printf with the text colored for the level.

// Info logs progress and success messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs recoverable problems in bright magenta.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs failures in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan once enabled by Init.
// Until then it is a no-op so packages can log before the CLI has parsed flags.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
// When enabled, Debug prints cyan messages; otherwise it silently drops them.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}

// Highlight returns s in bold, for versions and paths inside Info lines.
func Highlight(s string) string {
	return color.New(color.Bold).Sprint(s)
}
