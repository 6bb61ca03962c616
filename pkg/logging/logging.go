package logging

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// Options selects where log output goes. The TUI owns the terminal, so
// interactive runs must either log to a file or discard output entirely.
type Options struct {
	Level   string
	File    string
	Discard bool
}

// Setup configures the process-wide default logger. Component loggers
// copy the default logger's writer at derivation time, so Setup must run
// before anything calls Component.
func Setup(opts Options) {
	var writer log.Writer
	switch {
	case opts.Discard:
		writer = &log.IOWriter{Writer: io.Discard}
	case opts.File != "":
		writer = &log.FileWriter{
			Filename:   opts.File,
			FileMode:   0644,
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 2,
			LocalTime:  true,
		}
	default:
		writer = &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
			Writer:         os.Stderr,
		}
	}

	log.DefaultLogger = log.Logger{
		Level:      parseLevel(opts.Level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

// Component derives a logger tagged with a component context field from
// the configured default logger.
func Component(name string) log.Logger {
	bl := &log.DefaultLogger
	return log.Logger{
		Level:      bl.Level,
		TimeField:  bl.TimeField,
		TimeFormat: bl.TimeFormat,
		Writer:     bl.Writer,
		Context:    log.NewContext(bl.Context).Str("component", name).Value(),
	}
}

func parseLevel(level string) log.Level {
	switch level {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
