package multilang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// InfoDebugLogger is the logger handed to components through their
// OperatorContext.
type InfoDebugLogger interface {
	Info(...any)
	Infof(string, ...any)
	Infoln(...any)

	Debug(...any)
	Debugf(string, ...any)
	Debugln(...any)
	SetDebug(bool)
}

// Logger writes to a local slog.Logger and forwards info lines to the parent
// as log messages. Debug lines stay local and are dropped unless debug is on.
type Logger struct {
	logger *slog.Logger
	remote func(string) error
	debug  bool
}

// NewLogger creates a Logger. remote may be nil, in which case nothing is
// forwarded to the parent.
func NewLogger(logger *slog.Logger, remote func(string) error) *Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Logger{
		logger: logger,
		remote: remote,
	}
}

func (l *Logger) Info(args ...any) {
	l.info(fmt.Sprint(args...))
}
func (l *Logger) Infof(format string, args ...any) {
	l.info(fmt.Sprintf(format, args...))
}
func (l *Logger) Infoln(args ...any) {
	l.info(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func (l *Logger) Debug(args ...any) {
	if l.debug {
		l.logger.Log(context.Background(), slog.LevelDebug, fmt.Sprint(args...))
	}
}
func (l *Logger) Debugf(format string, args ...any) {
	if l.debug {
		l.logger.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
	}
}
func (l *Logger) Debugln(args ...any) {
	if l.debug {
		l.logger.Log(context.Background(), slog.LevelDebug, strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
	}
}
func (l *Logger) SetDebug(debug bool) {
	l.debug = debug
}

func (l *Logger) info(msg string) {
	l.logger.Info(msg)
	if l.remote == nil {
		return
	}
	if err := l.remote(msg); err != nil {
		l.logger.Warn("forward log to parent", "error", err)
	}
}
