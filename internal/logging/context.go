package logging

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	chatIDKey ctxKey = iota
	requestIDKey
	loggerKey
)

// maxIDLen bounds identifiers copied into log fields.
const maxIDLen = 128

// ContextFields extracts correlation fields from context.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}

	fields := make([]zap.Field, 0, 4)

	// OpenTelemetry trace context
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if chatID, ok := ctx.Value(chatIDKey).(string); ok && chatID != "" {
		fields = append(fields, zap.String("chat.id", chatID))
	}

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, zap.String("request.id", requestID))
	}

	return fields
}

// WithChatID adds the messaging chat identifier to context.
// Blank or oversized identifiers leave ctx unchanged.
func WithChatID(ctx context.Context, chatID string) context.Context {
	if !validID(chatID) {
		return ctx
	}
	return context.WithValue(ctx, chatIDKey, chatID)
}

// WithRequestID adds a request identifier to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if !validID(requestID) {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ChatIDFromContext returns the chat id stored by WithChatID.
func ChatIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(chatIDKey).(string)
	return v
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves logger from context, or returns a no-op logger.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return NewNop()
	}
	if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
		return l
	}
	return NewNop()
}

func validID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxIDLen {
		return false
	}
	return !strings.ContainsAny(id, "\r\n")
}
