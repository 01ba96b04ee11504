package security

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventOtaIssued        ActivityEventType = "security.ota.issued"
	ActivityEventOtaConsumed      ActivityEventType = "security.ota.consumed"
	ActivityEventAuthenticated    ActivityEventType = "security.jwt.authenticated"
	ActivityEventOAuth2Login      ActivityEventType = "security.oauth2.login"
	ActivityEventOAuth2LoginError ActivityEventType = "security.oauth2.failure"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

// NormalizeActivitySink returns a no-op sink for nil values.
func NormalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := NormalizeActivitySink(sink).Record(ctx, event); err != nil && logger != nil {
		logger.Warn("activity sink error during %s: %v", event.EventType, err)
	}
}
