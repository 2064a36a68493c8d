// Package redis stores user profiles as JSON documents in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/repositories"
	"go.uber.org/zap"
)

const scanBatchSize = 100

// ProfileStore implements repositories.ProfileStore on top of a Redis client.
// Keys are "<namespace>:<uid>".
type ProfileStore struct {
	client    *goredis.Client
	namespace string
	logger    *zap.Logger
}

// NewClient parses a redis:// URL and verifies the connection
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewProfileStore creates a Redis-backed profile store
func NewProfileStore(client *goredis.Client, namespace string, logger *zap.Logger) *ProfileStore {
	if namespace == "" {
		namespace = "users"
	}
	return &ProfileStore{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

func (s *ProfileStore) key(uid string) string {
	return s.namespace + ":" + uid
}

// Get retrieves a profile by uid
func (s *ProfileStore) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	data, err := s.client.Get(ctx, s.key(uid)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", uid, err)
	}
	return &profile, nil
}

// Set stores a profile without expiry
func (s *ProfileStore) Set(ctx context.Context, uid string, profile *models.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := s.client.Set(ctx, s.key(uid), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	s.logger.Debug("profile stored", zap.String("uid", uid))
	return nil
}

// Delete removes a profile
func (s *ProfileStore) Delete(ctx context.Context, uid string) error {
	if err := s.client.Del(ctx, s.key(uid)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Clear deletes every key in the store's namespace. Keys outside the namespace are left alone.
func (s *ProfileStore) Clear(ctx context.Context) error {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.namespace+":*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("redis del failed: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	s.logger.Info("profile store cleared",
		zap.String("namespace", s.namespace),
		zap.Int64("deleted", deleted))
	return nil
}

// Ping checks connectivity
func (s *ProfileStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *ProfileStore) Close() error {
	return s.client.Close()
}
