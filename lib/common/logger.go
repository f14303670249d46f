package common

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/rs/zerolog"
)

// LoggerNames lists the named loggers of the engine, InitLoggers sets the level of each
var LoggerNames = []string{"session", "conn", "keys", "topology", "audit", "cli"}

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// gedisLogger implements the ILogger interface on top of a zerolog logger
type gedisLogger struct {
	name  string
	level logger.LogLevel
}

// out returns the current sink tagged with the logger name
func (l *gedisLogger) out() *zerolog.Logger {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	lg := sink.With().Str("pkg", l.name).Logger()
	return &lg
}

func (l *gedisLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *gedisLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.out().Debug().Msgf(format, args...)
	}
}

func (l *gedisLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.out().Info().Msgf(format, args...)
	}
}

func (l *gedisLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.out().Warn().Msgf(format, args...)
	}
}

func (l *gedisLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.out().Error().Msgf(format, args...)
	}
}

func (l *gedisLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

var (
	sinkMu sync.RWMutex
	sink   = newSink(os.Stderr, "console")
)

// newSink builds the zerolog logger all named loggers write to
func newSink(out io.Writer, format string) zerolog.Logger {
	if strings.ToLower(format) == "json" {
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

// CreateLogger implements the dragonboat logger.Factory
func CreateLogger(pkgName string) logger.ILogger {
	return &gedisLogger{
		name:  pkgName,
		level: logger.INFO,
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info", "":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

var factoryOnce sync.Once

// InitLoggers routes all named loggers through zerolog and applies the configured level.
// Output goes to stderr so command results on stdout stay machine readable.
func InitLoggers(config ClientConfig) error {
	return InitLoggersTo(os.Stderr, config)
}

// InitLoggersTo is InitLoggers with an explicit output
func InitLoggersTo(out io.Writer, config ClientConfig) error {
	level, err := ParseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}

	sinkMu.Lock()
	sink = newSink(out, config.LogFormat)
	sinkMu.Unlock()

	factoryOnce.Do(func() {
		logger.SetLoggerFactory(CreateLogger)
	})

	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(level)
	}
	return nil
}
