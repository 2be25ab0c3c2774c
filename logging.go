package tape

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes debug and info lines to one writer and warnings and
// errors to another, through zerolog's console writer.
type DefaultLogger struct {
	mu    sync.Mutex
	debug bool
	out   zerolog.Logger
	err   zerolog.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return newDefaultLogger(prefix, debug, os.Stdout, os.Stderr, false)
}

// NewDefaultLoggerTo is NewDefaultLogger with explicit, uncolored writers.
func NewDefaultLoggerTo(prefix string, debug bool, out, errOut io.Writer) *DefaultLogger {
	return newDefaultLogger(prefix, debug, out, errOut, true)
}

func newDefaultLogger(prefix string, debug bool, out, errOut io.Writer, noColor bool) *DefaultLogger {
	build := func(w io.Writer) zerolog.Logger {
		ctx := zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    noColor,
			TimeFormat: "15:04:05.000",
		}).With().Timestamp()
		if prefix != "" {
			ctx = ctx.Str("component", prefix)
		}
		return ctx.Logger()
	}
	return &DefaultLogger{
		debug: debug,
		out:   build(out),
		err:   build(errOut),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Debug().Msgf(format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Info().Msgf(format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Warn().Msgf(format, args...)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Error().Msgf(format, args...)
}

// LoggingModule installs a default logger as a resource.
type LoggingModule struct {
	Prefix string
	Debug  bool
	// Logger, when set, is installed instead of a DefaultLogger.
	Logger Logger
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	if m.Logger != nil {
		app.addResources(&loggerResource{Logger: m.Logger})
		return
	}
	app.addResources(NewDefaultLogger(m.Prefix, m.Debug))
}

// loggerResource lets any Logger implementation sit in the resource map, which
// is keyed by the pointed-to type.
type loggerResource struct {
	Logger
}

type nopLogger struct{}

func NewNopLogger() Logger                             { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
