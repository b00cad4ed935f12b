package log

import (
	"io"
	"os"
	"sync"
	"time"

	charm "github.com/charmbracelet/log"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	logger     *charm.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		logger = charm.NewWithOptions(os.Stderr, charm.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339Nano,
			Level:           charm.InfoLevel,
			Prefix:          "csconfs",
		})
	})
}

func SetLevel(l Level) {
	initLogger()
	logger.SetLevel(toCharm(l))
}

// ParseLevel maps a level name to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelDebug, "debug":
		return LevelDebug
	case LevelWarn, "warn":
		return LevelWarn
	case LevelError, "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	initLogger()
	logger.SetOutput(w)
}

func Debug(msg string, kv ...any) {
	initLogger()
	logger.Debug(msg, pairs(kv)...)
}

func Info(msg string, kv ...any) {
	initLogger()
	logger.Info(msg, pairs(kv)...)
}

func Warn(msg string, kv ...any) {
	initLogger()
	logger.Warn(msg, pairs(kv)...)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logger.Error(msg, pairs(extended)...)
}

func toCharm(l Level) charm.Level {
	switch l {
	case LevelDebug:
		return charm.DebugLevel
	case LevelWarn:
		return charm.WarnLevel
	case LevelError:
		return charm.ErrorLevel
	default:
		return charm.InfoLevel
	}
}

// pairs drops a dangling key and any non-string key so the backend never
// prints a "missing value" placeholder.
func pairs(kv []any) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		if _, ok := kv[i].(string); !ok {
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}
