package cache

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
)

const DefaultTTL = 5 * time.Minute

// Store is a fail-open snapshot cache for one entity type. Keys are
// "<namespace>:<id>". Every backend or encoding failure is logged and reported
// to the caller as a miss or a no-op, never as an error.
type Store[T any] struct {
	client    *RedisClient
	namespace string
	ttl       time.Duration
	logger    logger.ZapLogger
}

func NewStore[T any](client *RedisClient, namespace string, ttl time.Duration, log logger.ZapLogger) *Store[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store[T]{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		logger:    log,
	}
}

func (s *Store[T]) Key(id string) string {
	return s.namespace + ":" + id
}

func (s *Store[T]) Get(ctx context.Context, id string) (*T, bool) {
	key := s.Key(id)
	var v T
	found, err := s.client.GetJSON(ctx, key, &v)
	if err != nil {
		s.logger.Error("cache get failed, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		s.logger.Debug("cache miss", zap.String("key", key))
		return nil, false
	}
	s.logger.Debug("cache hit", zap.String("key", key))
	return &v, true
}

// Set stores a snapshot of v. A non-positive ttl uses the store default.
func (s *Store[T]) Set(ctx context.Context, id string, v *T, ttl time.Duration) {
	if v == nil {
		return
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	key := s.Key(id)
	if err := s.client.SetJSON(ctx, key, v, ttl); err != nil {
		s.logger.Error("cache set failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Debug("cache set", zap.String("key", key), zap.Duration("ttl", ttl))
}

func (s *Store[T]) Remove(ctx context.Context, id string) {
	key := s.Key(id)
	if err := s.client.Delete(ctx, key); err != nil {
		s.logger.Error("cache remove failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Debug("cache entry removed", zap.String("key", key))
}
