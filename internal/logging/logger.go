// Package logging provides the leveled logger shared by the desktop app and the CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level selects how much is written.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelInfo
	LevelDebug
)

// ParseLevel maps a settings or flag value to a Level.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "silent", "off", "none":
		return LevelSilent, nil
	case "error":
		return LevelError, nil
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

func (level Level) String() string {
	switch level {
	case LevelSilent:
		return "silent"
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(level))
	}
}

// Logger writes leveled lines to an output and, optionally, a log file.
type Logger struct {
	mu      sync.Mutex
	level   Level
	out     *log.Logger
	file    *os.File
	fileLog *log.Logger
}

// New creates a logger writing to out. An empty logFile disables file output.
func New(level Level, out io.Writer, logFile string) (*Logger, error) {
	if out == nil {
		out = io.Discard
	}
	l := &Logger{
		level: level,
		out:   log.New(out, "", log.LstdFlags),
	}
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = file
		l.fileLog = log.New(file, "", log.LstdFlags)
	}
	return l, nil
}

// Stderr returns a logger writing to standard error.
func Stderr(level Level) *Logger {
	l, _ := New(level, os.Stderr, "")
	return l
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l, _ := New(LevelSilent, io.Discard, "")
	return l
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLog = nil
	return err
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write(LevelError, "ERROR: ", format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.write(LevelInfo, "INFO: ", format, v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.write(LevelDebug, "DEBUG: ", format, v...)
}

// Printf logs at info level so the logger can stand in for *log.Logger.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Infof(format, v...)
}

func (l *Logger) write(level Level, prefix, format string, v ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.level < level {
		return
	}
	msg := prefix + fmt.Sprintf(format, v...)
	if l.fileLog != nil {
		l.fileLog.Println(msg)
	}
	l.out.Println(msg)
}
