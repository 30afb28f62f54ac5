// Package logx decouples the library from the host application's logging
// setup. The default sink is slog; hosts plug in their own via SetLogger.
package logx

import (
	"log/slog"
	"sync/atomic"
)

// Logger is the minimal leveled logging surface the library needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}

var current atomic.Value

func init() {
	current.Store(Logger(slog.Default()))
}

// L returns the currently installed logger.
func L() Logger {
	return current.Load().(Logger)
}

// SetLogger replaces the process-wide logger. Passing nil silences the
// library entirely.
func SetLogger(l Logger) {
	if l == nil {
		l = nop{}
	}
	current.Store(l)
}
