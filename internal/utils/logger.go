package utils

import (
	"io"
	"os"
	"sort"
	"time"

	"github.com/quantmind-br/cgitscrape/internal/domain"
	"github.com/rs/zerolog"
)

// Logger is a wrapper around zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// LoggerOptions contains options for creating a logger
type LoggerOptions struct {
	Level   string
	Format  string // "pretty" or "json"
	Output  io.Writer
	Verbose bool
}

// NewLogger creates a new logger with the given options
func NewLogger(opts LoggerOptions) *Logger {
	var output io.Writer = os.Stderr
	if opts.Output != nil {
		output = opts.Output
	}

	if opts.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLogLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger(LoggerOptions{
		Level:  "info",
		Format: "pretty",
	})
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
	}
}

// WithURL returns a logger with a URL field
func (l *Logger) WithURL(url string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("url", url).Logger(),
	}
}

// WithRepo returns a logger with a repository field
func (l *Logger) WithRepo(repo string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("repo", repo).Logger(),
	}
}

// SetGlobalLevel sets the global log level
func SetGlobalLevel(level string) {
	zerolog.SetGlobalLevel(parseLogLevel(level))
}

// LogSink forwards parser diagnostics to a Logger at debug level
type LogSink struct {
	logger *Logger
}

// NewLogSink creates a diagnostic sink backed by logger
func NewLogSink(logger *Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report implements domain.DiagnosticSink
func (s *LogSink) Report(d domain.Diagnostic) {
	if s == nil || s.logger == nil {
		return
	}

	event := s.logger.Debug().
		Str("component", d.Component).
		Str("selector", d.Selector)
	if d.SourceURL != "" {
		event = event.Str("url", d.SourceURL)
	}

	keys := make([]string, 0, len(d.Fields))
	for k := range d.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		event = event.Str(k, d.Fields[k])
	}

	event.Msg(d.Message)
}
