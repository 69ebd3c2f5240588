// Package logger provides the leveled console logger used across what.
//
// Messages are written as "[level] message" lines. The level tag is colored
// when the destination is a terminal and NO_COLOR is not set.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Level is a log severity.
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
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Logger is the logging surface the library packages depend on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Console writes leveled messages to a writer. It is safe for concurrent use.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	colors bool
}

// NewConsole creates a Console writing messages at or above level to w.
// A nil writer discards everything.
func NewConsole(w io.Writer, level Level) *Console {
	return &Console{
		w:      w,
		level:  level,
		colors: isTerminal(w),
	}
}

// isTerminal reports whether w is a TTY that should receive colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SetLevel changes the minimum level.
func (c *Console) SetLevel(level Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

func (c *Console) Debugf(format string, args ...any) { c.logf(LevelDebug, format, args...) }
func (c *Console) Infof(format string, args ...any)  { c.logf(LevelInfo, format, args...) }
func (c *Console) Warnf(format string, args ...any)  { c.logf(LevelWarn, format, args...) }
func (c *Console) Errorf(format string, args ...any) { c.logf(LevelError, format, args...) }

func (c *Console) logf(level Level, format string, args ...any) {
	if c == nil || c.w == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if level < c.level {
		return
	}

	tag := level.String()
	if c.colors {
		tag = levelColor(level).Sprint(tag)
	}
	fmt.Fprintf(c.w, "[%s] %s\n", tag, fmt.Sprintf(format, args...))
}

func levelColor(level Level) *color.Color {
	switch level {
	case LevelDebug:
		return color.New(color.FgHiBlack)
	case LevelWarn:
		return color.New(color.FgYellow)
	case LevelError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
