// Package log is rigkit's structured logger.
//
// Skeleton parsing, each build phase, .rig/.skl IO, the history database and
// watcher rebuilds all report here under a Category, so the --log-file of a
// failed rig:build reads as a timeline of that build. Lines go to a file
// (--log-file) or stderr (--verbose) and are republished on a broker for
// anything following the log live.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncomes/MechanicalArt-sub001/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category names the part of a rig build a line comes from.
type Category string

const (
	CatSkeleton Category = "skeleton" // hierarchy parse and markup checks
	CatBuild    Category = "build"    // construct, attach, nested and derive phases
	CatRig      Category = "rig"      // reload, mirror, attach rigs
	CatStore    Category = "store"    // .rig and .skl files
	CatDB       Category = "db"       // build history
	CatConfig   Category = "config"
	CatWatcher  Category = "watcher"
	CatCache    Category = "cache"
	CatTrace    Category = "trace"
)

// Logger writes formatted lines to one sink and republishes each line.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	off    bool
	min    Level
	lines  *pubsub.Broker[string]
}

var current atomic.Pointer[Logger]

func install(out io.Writer, closer io.Closer, minLevel Level) *Logger {
	l := &Logger{out: out, closer: closer, min: minLevel, lines: pubsub.NewBroker[string]()}
	if old := current.Swap(l); old != nil {
		old.lines.Close()
	}
	return l
}

// Init appends log lines to the file at path, replacing any active logger.
// The returned func closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path comes from --log-file
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := install(f, f, LevelDebug)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closer != nil {
			_ = l.closer.Close()
			l.closer, l.out = nil, nil
		}
	}, nil
}

// InitWriter logs to w instead of a file, replacing any active logger.
func InitWriter(w io.Writer, minLevel Level) {
	install(w, nil, minLevel)
}

// SetEnabled turns the active logger on or off.
func SetEnabled(enabled bool) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		l.off = !enabled
		l.mu.Unlock()
	}
}

// SetMinLevel drops lines below level.
func SetMinLevel(level Level) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		l.min = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) { emit(LevelDebug, cat, msg, fields) }
func Info(cat Category, msg string, fields ...any)  { emit(LevelInfo, cat, msg, fields) }
func Warn(cat Category, msg string, fields ...any)  { emit(LevelWarn, cat, msg, fields) }
func Error(cat Category, msg string, fields ...any) { emit(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err as the trailing "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	emit(LevelError, cat, msg, append(fields, "error", text))
}

func emit(level Level, cat Category, msg string, fields []any) {
	l := current.Load()
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.off || level < l.min {
		return
	}
	line := format(time.Now(), level, cat, msg, fields)
	if l.out != nil {
		_, _ = io.WriteString(l.out, line)
	}
	l.lines.Publish(pubsub.CreatedEvent, line)
}

// format renders one line:
//
//	2025-12-06T10:45:00 [ERROR] [build] fragment failed type=fk side=left
//
// A trailing key without a value is written as key=<missing>.
func format(at time.Time, level Level, cat Category, msg string, fields []any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] [%s] %s", at.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		if i+1 == len(fields) {
			fmt.Fprintf(&sb, " %v=<missing>", fields[i])
			break
		}
		fmt.Fprintf(&sb, " %v=%v", fields[i], fields[i+1])
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Listener follows log lines as they are written.
type Listener = pubsub.ContinuousListener[string]

// NewListener follows the active logger until ctx ends. It returns nil when
// logging was never initialised.
func NewListener(ctx context.Context) *Listener {
	l := current.Load()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.lines)
}
