// Package logging builds the zap loggers used by the CLI and tests.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger, or a console logger when dev is set.
func New(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build(zap.AddCaller())
}

// NewTestLogger returns a development logger that prints everything down to
// debug level.
func NewTestLogger() *zap.Logger {
	l, err := New("debug", true)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
