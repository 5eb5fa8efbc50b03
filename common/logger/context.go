package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Business identifiers (thread_id, event_id, outbox_id) flow
// through context enrichment so individual log statements never have to
// repeat them.
type LogFields struct {
	ThreadID  *int64  // Thread owning the event being handled
	EventID   *int64  // Event flowing through the pipeline
	OutboxID  *int64  // Outbox record being dispatched
	MessageID *string // Redis stream message ID
	Source    *string // Event source (TEAMS, OUTLOOK, CALENDAR)
	Component string  // Component name (e.g. "pulse.service.dispatch")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values winning.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context, or empty LogFields.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.ThreadID != nil {
		result.ThreadID = next.ThreadID
	}
	if next.EventID != nil {
		result.EventID = next.EventID
	}
	if next.OutboxID != nil {
		result.OutboxID = next.OutboxID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Source != nil {
		result.Source = next.Source
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value, for inline LogFields.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens a string to maxLen characters, appending "..." when cut.
// Useful for logging potentially long payloads or error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
