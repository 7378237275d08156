package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

var (
	mu       sync.Mutex
	logger   = stdlog.New(os.Stderr, "", stdlog.LstdFlags)
	minLevel = LevelInfo
)

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// SetOutput redirects log lines, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

func Debug(msg string, kv ...any) { logWithLevel(LevelDebug, msg, kv...) }

func Info(msg string, kv ...any) { logWithLevel(LevelInfo, msg, kv...) }

func Warn(msg string, kv ...any) { logWithLevel(LevelWarn, msg, kv...) }

// Error logs msg with err prepended to the key-value list.
func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	logWithLevel(LevelError, msg, extended...)
}

// Logger carries a fixed set of key-value pairs, e.g. a run id.
type Logger struct {
	kv []any
}

// With returns a Logger that appends kv to every line.
func With(kv ...any) *Logger {
	return &Logger{kv: kv}
}

func (l *Logger) Debug(msg string, kv ...any) { logWithLevel(LevelDebug, msg, l.merge(kv)...) }

func (l *Logger) Info(msg string, kv ...any) { logWithLevel(LevelInfo, msg, l.merge(kv)...) }

func (l *Logger) Warn(msg string, kv ...any) { logWithLevel(LevelWarn, msg, l.merge(kv)...) }

func (l *Logger) Error(msg string, err error, kv ...any) {
	logWithLevel(LevelError, msg, append([]any{"err", err}, l.merge(kv)...)...)
}

func (l *Logger) merge(kv []any) []any {
	if l == nil {
		return kv
	}
	out := make([]any, 0, len(l.kv)+len(kv))
	out = append(out, l.kv...)
	return append(out, kv...)
}

func logWithLevel(level Level, msg string, kv ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel {
		return
	}
	// 2025/01/01 00:00:00 [LEVEL] msg key=value ...
	logger.Println("[" + level.String() + "] " + msg + formatKVs(kv...))
}

func formatKVs(kv ...any) string {
	var b strings.Builder
	// Pairs only; a trailing odd value is dropped.
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		b.WriteString(" " + key + "=" + fmt.Sprint(kv[i+1]))
	}
	return b.String()
}
