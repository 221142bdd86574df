// Package logger is the process-wide structured logger.
//
//	logger.Init(cfg.App.Environment)
//	logger.Info("server starting", "address", addr)
//	logger.Error("fetch failed", "trace_id", tid, "error", err)
//
// Arguments after the message are alternating key/value pairs.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = newLogger("development", os.Stderr)
)

// Init configures the global logger for the given environment.
// "production" and "staging" emit JSON at info level; anything else
// writes human-readable console output at debug level.
func Init(env string) {
	InitWithWriter(env, os.Stderr)
}

// InitWithWriter is Init with an explicit sink, used by tests.
func InitWithWriter(env string, w io.Writer) {
	l := newLogger(env, w)

	mu.Lock()
	log = l
	mu.Unlock()
}

func newLogger(env string, w io.Writer) zerolog.Logger {
	switch strings.ToLower(env) {
	case "production", "staging":
		return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	case "test":
		return zerolog.New(w).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	default:
		out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func emit(e *zerolog.Event, msg string, kv []any) {
	if e == nil {
		return
	}
	if len(kv)%2 == 1 {
		// a lone trailing value is treated as the error
		kv = append(kv[:len(kv)-1:len(kv)-1], "error", kv[len(kv)-1])
	}
	for i := 0; i < len(kv); i += 2 {
		if err, ok := kv[i+1].(error); ok {
			kv[i+1] = err.Error()
		}
	}
	e.Fields(kv).Msg(msg)
}

func Debug(msg string, kv ...any) { emit(current().Debug(), msg, kv) }

func Info(msg string, kv ...any) { emit(current().Info(), msg, kv) }

func Warn(msg string, kv ...any) { emit(current().Warn(), msg, kv) }

func Error(msg string, kv ...any) { emit(current().Error(), msg, kv) }

// Fatal logs and exits the process.
func Fatal(msg string, kv ...any) { emit(current().Fatal(), msg, kv) }
