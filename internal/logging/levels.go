package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits one step below Debug.
const TraceLevel = zapcore.DebugLevel - 1

// LevelFromString parses a level name case-insensitively. Besides zap's
// names it accepts "trace" and "warning"; empty means info. Unknown names
// return InfoLevel with an error.
func LevelFromString(name string) (zapcore.Level, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "":
		return zapcore.InfoLevel, nil
	case "trace":
		return TraceLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	default:
		lvl, err := zapcore.ParseLevel(n)
		if err != nil {
			return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
		}
		return lvl, nil
	}
}

// levelName renders TraceLevel, which zap does not know, as "trace".
func levelName(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}
