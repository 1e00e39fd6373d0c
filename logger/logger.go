package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/deepsourcelabs/xaml-sleuth/config"
)

// LevelEnv overrides the log level when the config file does not set one.
const LevelEnv = "XAML_SLEUTH_LOG_LEVEL"

// NewLogger creates a named logger writing to stderr. The level comes from the
// config file first, then from LevelEnv; verbose forces DEBUG.
func NewLogger(cfg *config.Config, name string, verbose bool) hclog.Logger {
	return newLogger(cfg, name, verbose, os.Stderr)
}

func newLogger(cfg *config.Config, name string, verbose bool, output io.Writer) hclog.Logger {
	var logLevel hclog.Level

	switch {
	case verbose:
		logLevel = hclog.Debug
	case cfg != nil && cfg.Log.Level != "":
		logLevel = getLogLevel(strings.ToUpper(cfg.Log.Level))
	default:
		// env variables has the second priority
		logLevel = getLogLevel(strings.ToUpper(os.Getenv(LevelEnv)))
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      output,
		Level:       logLevel,
	})
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
