package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/auth-gateway/models"
	"go.uber.org/zap"
)

// MockEventRepository is a mock implementation of repositories.AuthEventRepository
type MockEventRepository struct {
	mock.Mock
	mu       sync.Mutex
	inserted []*models.AuthEvent
}

func (m *MockEventRepository) Insert(ctx context.Context, event *models.AuthEvent) error {
	args := m.Called(ctx, event)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.inserted = append(m.inserted, event)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *MockEventRepository) Inserted() []*models.AuthEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.AuthEvent(nil), m.inserted...)
}

func TestAuditService_StartStop(t *testing.T) {
	repo := new(MockEventRepository)
	service := NewAuditService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 2})

	require.NoError(t, service.Start())

	stats := service.GetStats()
	assert.True(t, stats.Started)
	assert.Equal(t, 2, stats.WorkerCount)
	assert.Equal(t, 10, stats.BufferSize)

	assert.Error(t, service.Start())

	require.NoError(t, service.Stop(5*time.Second))
	assert.ErrorIs(t, service.Stop(time.Second), ErrNotStarted)
	assert.False(t, service.GetStats().Started)
}

func TestAuditService_LogEvent(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		service := NewAuditService(new(MockEventRepository), zap.NewNop(), DefaultConfig())
		assert.ErrorIs(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignin, "u1")), ErrNotStarted)
	})

	t.Run("drains on stop", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

		service := NewAuditService(repo, zap.NewNop(), Config{BufferSize: 100, WorkerCount: 3})
		require.NoError(t, service.Start())

		for i := 0; i < 50; i++ {
			require.NoError(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignin, "u1")))
		}

		require.NoError(t, service.Stop(5*time.Second))
		assert.Len(t, repo.Inserted(), 50)
	})

	t.Run("after stop", func(t *testing.T) {
		repo := new(MockEventRepository)
		service := NewAuditService(repo, zap.NewNop(), DefaultConfig())
		require.NoError(t, service.Start())
		require.NoError(t, service.Stop(time.Second))

		assert.ErrorIs(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignout, "u1")), ErrNotStarted)
	})

	t.Run("insert errors are not fatal", func(t *testing.T) {
		repo := new(MockEventRepository)
		repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
		repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

		service := NewAuditService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})
		require.NoError(t, service.Start())
		require.NoError(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignup, "a")))
		require.NoError(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignup, "b")))
		require.NoError(t, service.Stop(5*time.Second))

		inserted := repo.Inserted()
		require.Len(t, inserted, 1)
		assert.Equal(t, "b", inserted[0].UID)
	})
}

func TestAuditService_BufferFull(t *testing.T) {
	repo := new(MockEventRepository)
	picked := make(chan struct{}, 1)
	release := make(chan struct{})
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		select {
		case picked <- struct{}{}:
		default:
		}
		<-release
	})

	service := NewAuditService(repo, zap.NewNop(), Config{BufferSize: 2, WorkerCount: 1})
	require.NoError(t, service.Start())

	require.NoError(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignin, "first")))
	<-picked

	require.NoError(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignin, "2")))
	require.NoError(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignin, "3")))
	assert.ErrorIs(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignin, "4")), ErrBufferFull)

	stats := service.GetStats()
	assert.Equal(t, 2, stats.PendingEvents)
	assert.Equal(t, int64(1), stats.Dropped)

	close(release)
	require.NoError(t, service.Stop(5*time.Second))
	assert.Len(t, repo.Inserted(), 3)
}

func TestAuditService_StopTimeout(t *testing.T) {
	repo := new(MockEventRepository)
	release := make(chan struct{})
	defer close(release)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		<-release
	})

	service := NewAuditService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})
	require.NoError(t, service.Start())
	require.NoError(t, service.LogEvent(models.NewAuthEvent(models.AuthActionSignin, "slow")))

	err := service.Stop(100 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestAuditService_Record(t *testing.T) {
	repo := new(MockEventRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	service := NewAuditService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})
	require.NoError(t, service.Start())

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-42")
	service.Record(ctx, models.NewAuthEvent(models.AuthActionProfileUpdated, "u1"))
	service.Record(context.Background(), models.NewAuthEvent(models.AuthActionSignout, "u1").WithRequest("explicit"))

	require.NoError(t, service.Stop(5*time.Second))

	inserted := repo.Inserted()
	require.Len(t, inserted, 2)
	ids := []string{inserted[0].RequestID, inserted[1].RequestID}
	assert.ElementsMatch(t, []string{"req-42", "explicit"}, ids)

	// a stopped service swallows events
	service.Record(ctx, models.NewAuthEvent(models.AuthActionSignin, "u1"))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 1000, config.BufferSize)
	assert.Equal(t, 2, config.WorkerCount)
}
