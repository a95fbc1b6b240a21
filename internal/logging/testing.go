package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger records every entry, trace level included, in memory.
// Integer fields read back from ContextMap as int64.
type TestLogger struct {
	*Logger
	logs *observer.ObservedLogs
}

// NewTestLogger returns an in-memory logger for assertions.
func NewTestLogger() *TestLogger {
	core, logs := observer.New(TraceLevel)
	return &TestLogger{Logger: &Logger{zap: zap.New(core)}, logs: logs}
}

// FilterMessage returns the entries whose message contains snippet.
func (tl *TestLogger) FilterMessage(snippet string) *observer.ObservedLogs {
	return tl.logs.FilterMessageSnippet(snippet)
}

// AssertLogged fails tb unless some entry at lvl has a message containing snippet.
func (tl *TestLogger) AssertLogged(tb testing.TB, lvl zapcore.Level, snippet string) {
	tb.Helper()
	for _, e := range tl.logs.FilterLevelExact(lvl).All() {
		if strings.Contains(e.Message, snippet) {
			return
		}
	}
	var seen []string
	for _, e := range tl.logs.All() {
		seen = append(seen, e.Level.String()+": "+e.Message)
	}
	tb.Errorf("no %s entry containing %q; have %q", lvl, snippet, seen)
}

// AssertField fails tb unless an entry with exactly msg carries key=want.
func (tl *TestLogger) AssertField(tb testing.TB, msg, key string, want any) {
	tb.Helper()
	entries := tl.logs.FilterMessage(msg).All()
	for _, e := range entries {
		if got, ok := e.ContextMap()[key]; ok && got == want {
			return
		}
	}
	tb.Errorf("no %q entry with %s=%v among %d matching", msg, key, want, len(entries))
}
