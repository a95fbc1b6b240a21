package main

import (
	"io"

	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/impactd/internal/logging"
)

// newCLILogger reports warnings, such as skipped data file lines, on w.
func newCLILogger(w io.Writer) *logging.Logger {
	cfg := logging.NewDefaultConfig()
	cfg.Level = zapcore.WarnLevel
	cfg.Format = "console"
	cfg.Sampling.Enabled = false
	cfg.Caller = false
	cfg.Fields = nil

	logger, err := logging.NewLoggerTo(cfg, w)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}
