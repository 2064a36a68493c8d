package services

import (
	"context"

	"github.com/upb/auth-gateway/models"
)

// EventRecorder receives auth lifecycle events. Record must not block the caller.
type EventRecorder interface {
	Record(ctx context.Context, event *models.AuthEvent)
}

// RecordEvent forwards event to rec when one is configured
func RecordEvent(ctx context.Context, rec EventRecorder, event *models.AuthEvent) {
	if rec != nil {
		rec.Record(ctx, event)
	}
}
