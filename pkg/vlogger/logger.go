// Package vlogger builds the zap loggers handed to the storage stack.
// Every layer takes a *zap.Logger through its options and defaults to a
// nop; this package only decides how a real one is constructed.
package vlogger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LogLevelInfo enables operational messages (root creation, store lifecycle)
	LogLevelInfo = "info"

	// LogLevelDebug additionally traces per-block and per-blob activity
	LogLevelDebug = "debug"

	// LogLevelNone disables logging; the stack runs on nop loggers
	LogLevelNone = "none"
)

// New builds a logger for the given level. LogLevelNone yields a nop
// logger, so callers never need to branch on whether logging is on.
func New(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch level {
	case LogLevelNone:
		return zap.NewNop(), nil
	case LogLevelInfo:
		lvl = zapcore.InfoLevel
	case LogLevelDebug:
		lvl = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Named("vaultfs"), nil
}
