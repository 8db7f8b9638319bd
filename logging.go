package cask

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newDefaultLogger builds a production JSON logger, used whenever a Config
// doesn't supply its own.
func newDefaultLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on a broken encoder config, which
		// never happens with its built-in defaults; fall back rather than
		// panic a database open.
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

// newLeveledLogger builds a production JSON logger at the given zap level
// name ("debug", "info", "warn", "error").
func newLeveledLogger(level string) (*zap.SugaredLogger, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}
