// Package obslog is a small leveled wrapper around the standard log
// package: a verbose-flag-gated log.Printf/log.Fatalf style,
// generalized so the hot interrupt and timer-callback paths can check a
// level without formatting a string when nothing will be printed.
package obslog

import (
	"log"
	"os"
	"sync/atomic"
)

// Level is a log verbosity threshold. Higher values are more verbose.
type Level int32

const (
	LevelQuiet Level = iota
	LevelInfo
	LevelTrace
)

// Leveler exposes just the level gate, so collaborators (like
// internal/debugconsole) can set it without depending on the rest of
// Logger.
type Leveler interface {
	SetLevel(l Level)
	Level() Level
}

// Logger gates log.Printf calls behind an atomically-stored level. The
// zero value is unusable; use New.
type Logger struct {
	level  atomic.Int32
	target *log.Logger
}

// New creates a Logger writing to out (os.Stderr if nil) at the given
// initial level.
func New(out *os.File, level Level) *Logger {
	if out == nil {
		out = os.Stderr
	}
	l := &Logger{target: log.New(out, "", log.LstdFlags)}
	l.level.Store(int32(level))
	return l
}

func (l *Logger) Level() Level     { return Level(l.level.Load()) }
func (l *Logger) SetLevel(lv Level) { l.level.Store(int32(lv)) }

// Infof logs at LevelInfo or above.
func (l *Logger) Infof(format string, args ...any) {
	if l.Level() >= LevelInfo {
		l.target.Printf(format, args...)
	}
}

// Tracef logs at LevelTrace only, and never formats when tracing is off
// -- the gate the original's loglevel&CPU_LOG_INT check provided for the
// interrupt-dispatch hot path.
func (l *Logger) Tracef(format string, args ...any) {
	if l.Level() >= LevelTrace {
		l.target.Printf(format, args...)
	}
}

// Fatalf logs and terminates the process, matching log.Fatalf.
func (l *Logger) Fatalf(format string, args ...any) {
	l.target.Fatalf(format, args...)
}
