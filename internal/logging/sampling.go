package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newCore builds the output core. With sampling on, entries below Error
// pass through a sampler; Error and above are always written.
func newCore(enc zapcore.Encoder, out zapcore.WriteSyncer, floor zapcore.Level, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return zapcore.NewCore(enc, out, floor)
	}

	chatty := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= floor && l < zapcore.ErrorLevel
	})
	severe := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= floor && l >= zapcore.ErrorLevel
	})

	return zapcore.NewTee(
		zapcore.NewSamplerWithOptions(zapcore.NewCore(enc, out, chatty), cfg.Tick, cfg.Initial, cfg.Thereafter),
		zapcore.NewCore(enc.Clone(), out, severe),
	)
}
