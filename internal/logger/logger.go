// Package logger provides the leveled logging used across the parsing
// pipeline. ODB++ archives are frequently slightly malformed in the
// wild; DEBUG-level messages record what was tolerated without
// interrupting a successful parse.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level is the severity of a log message.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes leveled messages through a standard library *log.Logger.
type Logger struct {
	level  Level
	logger *log.Logger
}

// New creates a Logger writing to w at the given minimum level.
func New(level Level, w io.Writer) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(w, "", log.LstdFlags),
	}
}

var std = New(Info, os.Stderr)

// SetLevel changes the minimum level of the package default logger.
func SetLevel(level Level) {
	std.level = level
}

// Default returns the package-level default logger.
func Default() *Logger {
	return std
}

func (l *Logger) log(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	l.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) { l.log(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(Error, format, args...) }

func Debugf(format string, args ...any) { std.Debugf(format, args...) }
func Infof(format string, args ...any)  { std.Infof(format, args...) }
func Warnf(format string, args ...any)  { std.Warnf(format, args...) }
func Errorf(format string, args ...any) { std.Errorf(format, args...) }
