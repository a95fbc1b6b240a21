// Package logging is impactd's structured logger, a thin layer over zap.
//
// Every method takes a context.Context and prepends the correlation fields
// stored in it by WithChatID and WithRequestID, plus the trace and span IDs
// of an active OpenTelemetry span:
//
//	ctx = logging.WithChatID(ctx, "42")
//	logger.Info(ctx, "command handled", zap.String("command", "/add"))
//	// {"level":"info","msg":"command handled","chat.id":"42","command":"/add",...}
//
// TraceLevel sits below Debug for per-message parsing detail. When sampling
// is on, repeated entries below Error are thinned; Error and above are
// always written.
//
// Operational failures, a data file that cannot be written for instance,
// are reported here and never in a chat reply.
//
// NewTestLogger keeps entries in memory for assertions.
package logging
