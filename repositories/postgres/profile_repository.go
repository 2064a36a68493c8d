package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/repositories"
	"go.uber.org/zap"
)

// ProfileRepository implements repositories.ProfileStore on PostgreSQL
type ProfileRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a profile by uid
func (r *ProfileRepository) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	query := `
		SELECT uid, email, name, bio, role, created_at
		FROM user_profiles
		WHERE uid = $1
	`

	profile := &models.UserProfile{}
	var email sql.NullString

	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&profile.UID,
		&email,
		&profile.Name,
		&profile.Bio,
		&profile.Role,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Email = email.String
	return profile, nil
}

// Set upserts a profile. The whole row is replaced, matching key-value semantics.
func (r *ProfileRepository) Set(ctx context.Context, uid string, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (uid, email, name, bio, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    bio = EXCLUDED.bio,
		    role = EXCLUDED.role,
		    created_at = EXCLUDED.created_at
	`

	email := sql.NullString{String: profile.Email, Valid: profile.Email != ""}

	_, err := r.db.ExecContext(ctx, query,
		uid,
		email,
		profile.Name,
		profile.Bio,
		string(profile.Role),
		profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set profile: %w", err)
	}

	r.logger.Debug("profile stored", zap.String("uid", uid))
	return nil
}

// Delete removes a profile
func (r *ProfileRepository) Delete(ctx context.Context, uid string) error {
	query := `DELETE FROM user_profiles WHERE uid = $1`

	if _, err := r.db.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// Clear removes all profiles
func (r *ProfileRepository) Clear(ctx context.Context) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_profiles`)
	if err != nil {
		return fmt.Errorf("failed to clear profiles: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Info("profile store cleared", zap.Int64("deleted", rowsAffected))
	return nil
}

// Ping checks database connectivity
func (r *ProfileRepository) Ping(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Close closes the connection pool
func (r *ProfileRepository) Close() error {
	return r.db.Close()
}
