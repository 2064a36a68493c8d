package postgres

import (
	"context"
	"fmt"

	"github.com/upb/auth-gateway/models"
	"go.uber.org/zap"
)

// AuthEventRepository implements repositories.AuthEventRepository on the auth_events table
type AuthEventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuthEventRepository creates a new auth event repository
func NewAuthEventRepository(db *DB, logger *zap.Logger) *AuthEventRepository {
	return &AuthEventRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends an event to the trail
func (r *AuthEventRepository) Insert(ctx context.Context, event *models.AuthEvent) error {
	query := `
		INSERT INTO auth_events (id, action, uid, request_id, details, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var details interface{}
	if len(event.Details) > 0 {
		details = []byte(event.Details)
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Action,
		event.UID,
		event.RequestID,
		details,
		event.Timestamp,
	)
	if err != nil {
		r.logger.Error("failed to insert auth event",
			zap.Error(err),
			zap.String("action", string(event.Action)),
			zap.String("uid", event.UID))
		return fmt.Errorf("failed to insert auth event: %w", err)
	}

	return nil
}
