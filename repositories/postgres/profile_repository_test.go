package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/repositories"
	"go.uber.org/zap"
)

func setupRepo(t *testing.T) (*ProfileRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := zap.NewNop()
	return NewProfileRepository(WrapDB(sqlDB, logger), logger), mock
}

var profileColumns = []string{"uid", "email", "name", "bio", "role", "created_at"}

func TestProfileRepository_Get(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT uid, email, name, bio, role, created_at FROM user_profiles WHERE uid = $1")

	t.Run("found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(query).
			WithArgs("test-admin-1").
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow("test-admin-1", "admin@test.com", "Test Admin", "Admin bio", "admin", "2023-01-01T00:00:00Z"))

		profile, err := repo.Get(ctx, "test-admin-1")
		require.NoError(t, err)
		assert.Equal(t, &models.UserProfile{
			UID:       "test-admin-1",
			Email:     "admin@test.com",
			Name:      "Test Admin",
			Bio:       "Admin bio",
			Role:      models.RoleAdmin,
			CreatedAt: "2023-01-01T00:00:00Z",
		}, profile)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null email", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(query).
			WithArgs("u").
			WillReturnRows(sqlmock.NewRows(profileColumns).AddRow("u", nil, "", "", "user", "2023-01-01T00:00:00Z"))

		profile, err := repo.Get(ctx, "u")
		require.NoError(t, err)
		assert.Empty(t, profile.Email)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(query).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(query).WithArgs("u").WillReturnError(errors.New("connection reset"))

		_, err := repo.Get(ctx, "u")
		require.Error(t, err)
		assert.NotErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestProfileRepository_Set(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupRepo(t)

	profile := &models.UserProfile{
		UID:       "u1",
		Name:      "Name",
		Bio:       "",
		Role:      models.RoleUser,
		CreatedAt: "2024-01-01T00:00:00.000Z",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_profiles")).
		WithArgs("u1", sql.NullString{}, "Name", "", "user", "2024-01-01T00:00:00.000Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set(ctx, "u1", profile))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_SetError(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_profiles")).
		WillReturnError(errors.New("disk full"))

	err := repo.Set(context.Background(), "u1", &models.UserProfile{UID: "u1"})
	assert.ErrorContains(t, err, "failed to set profile")
}

func TestProfileRepository_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_profiles WHERE uid = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_profiles")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Delete(ctx, "u1"))
	require.NoError(t, repo.Clear(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
