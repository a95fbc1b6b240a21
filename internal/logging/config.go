package logging

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config describes how a Logger encodes and where it writes.
type Config struct {
	Level  zapcore.Level
	Format string // json or console
	Output string // stdout or stderr

	Sampling SamplingConfig

	Caller     bool
	CallerSkip int

	// StacktraceLevel attaches stacks at and above this level; zero disables.
	StacktraceLevel zapcore.Level

	// Fields are attached to every entry.
	Fields map[string]string
}

// SamplingConfig mirrors zap's sampler: per Tick, log the first Initial
// entries with the same message and level, then every Thereafter-th.
type SamplingConfig struct {
	Enabled    bool
	Tick       time.Duration
	Initial    int
	Thereafter int
}

// NewDefaultConfig returns the daemon's defaults: JSON on stdout at info,
// sampled, with caller and error stacks.
func NewDefaultConfig() *Config {
	return &Config{
		Level:           zapcore.InfoLevel,
		Format:          "json",
		Output:          "stdout",
		Sampling:        SamplingConfig{Enabled: true, Tick: time.Second, Initial: 100, Thereafter: 10},
		Caller:          true,
		CallerSkip:      2,
		StacktraceLevel: zapcore.ErrorLevel,
		Fields:          map[string]string{"service": "impactd"},
	}
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("format %q is not json or console", c.Format))
	}
	switch c.Output {
	case "stdout", "stderr":
	default:
		errs = append(errs, fmt.Errorf("output %q is not stdout or stderr", c.Output))
	}
	if c.Sampling.Enabled && c.Sampling.Tick <= 0 {
		errs = append(errs, errors.New("sampling tick must be positive"))
	}
	if c.CallerSkip < 0 {
		errs = append(errs, fmt.Errorf("caller skip %d is negative", c.CallerSkip))
	}
	for k, v := range c.Fields {
		if k == "" || v == "" {
			errs = append(errs, fmt.Errorf("static field %q=%q needs a key and a value", k, v))
		}
	}
	return errors.Join(errs...)
}
