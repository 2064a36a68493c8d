package memory

import (
	"context"
	"sync"

	"github.com/upb/auth-gateway/models"
	"go.uber.org/zap"
)

// EventLog keeps the most recent auth events in memory and mirrors each one
// to the logger. It stands in for the auth_events table when no database is configured.
type EventLog struct {
	mu     sync.Mutex
	events []*models.AuthEvent
	limit  int
	logger *zap.Logger
}

// NewEventLog creates an event log holding at most limit events. A limit
// of zero or less keeps everything.
func NewEventLog(limit int, logger *zap.Logger) *EventLog {
	return &EventLog{limit: limit, logger: logger}
}

// Insert appends an event, evicting the oldest one when full
func (l *EventLog) Insert(_ context.Context, event *models.AuthEvent) error {
	l.mu.Lock()
	l.events = append(l.events, event)
	if l.limit > 0 && len(l.events) > l.limit {
		l.events = l.events[len(l.events)-l.limit:]
	}
	l.mu.Unlock()

	l.logger.Info("auth event",
		zap.String("action", string(event.Action)),
		zap.String("uid", event.UID),
		zap.String("request_id", event.RequestID))

	return nil
}

// Events returns the stored events, oldest first
func (l *EventLog) Events() []*models.AuthEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*models.AuthEvent, len(l.events))
	copy(out, l.events)
	return out
}
