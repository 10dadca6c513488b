// Package rediscache puts a Redis read-through cache in front of a
// storage.ProfileStore so hot strength lookups skip the database.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/scrypster/memorykeeper/internal/storage"
	"github.com/scrypster/memorykeeper/pkg/types"
)

var _ storage.ProfileStore = (*Store)(nil)

const keyPrefix = "memorykeeper:strength:"

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // Cache entry lifetime (default: 1h)
}

// Store caches ReadStrength results and writes through on SaveProfile.
// Cache failures are logged and never fail the call: the backing store is
// the source of truth.
type Store struct {
	client  *redis.Client
	backing storage.ProfileStore
	ttl     time.Duration
	logger  *zap.Logger
}

// New connects to Redis and wraps backing.
func New(cfg Config, backing storage.ProfileStore, logger *zap.Logger) (*Store, error) {
	if backing == nil {
		return nil, fmt.Errorf("rediscache: backing store is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("rediscache: failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, backing, cfg.TTL, logger), nil
}

// NewWithClient wraps backing using an existing client.
func NewWithClient(client *redis.Client, backing storage.ProfileStore, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, backing: backing, ttl: ttl, logger: logger}
}

func strengthKey(userID string) string {
	return keyPrefix + userID
}

// ReadStrength serves from Redis when possible and fills the cache on a miss.
// A not-found result is not cached.
func (s *Store) ReadStrength(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user ID is required", storage.ErrInvalidInput)
	}

	val, err := s.client.Get(ctx, strengthKey(userID)).Result()
	switch {
	case err == nil:
		if strength, convErr := strconv.Atoi(val); convErr == nil {
			return strength, nil
		}
		s.logger.Warn("rediscache: dropping malformed cache entry", zap.String("user_id", userID), zap.String("value", val))
		s.client.Del(ctx, strengthKey(userID))
	case errors.Is(err, redis.Nil):
	default:
		s.logger.Warn("rediscache: get failed, reading through", zap.String("user_id", userID), zap.Error(err))
	}

	strength, err := s.backing.ReadStrength(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.set(ctx, userID, strength)
	return strength, nil
}

// SaveProfile writes through to the backing store, then refreshes the cache.
func (s *Store) SaveProfile(ctx context.Context, profile *types.AgentProfile) error {
	if err := s.backing.SaveProfile(ctx, profile); err != nil {
		return err
	}
	s.set(ctx, profile.UserID, profile.MemoryStrength)
	return nil
}

// AppendPerformance delegates to the backing store.
func (s *Store) AppendPerformance(ctx context.Context, userID string, record types.PerformanceRecord) error {
	return s.backing.AppendPerformance(ctx, userID, record)
}

// ListPerformance delegates to the backing store.
func (s *Store) ListPerformance(ctx context.Context, userID string, limit int) ([]types.PerformanceRecord, error) {
	return s.backing.ListPerformance(ctx, userID, limit)
}

// Invalidate removes the cached strength for userID.
func (s *Store) Invalidate(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, strengthKey(userID)).Err(); err != nil {
		return fmt.Errorf("rediscache: failed to invalidate %s: %w", userID, err)
	}
	return nil
}

// Close closes the Redis client and the backing store.
func (s *Store) Close() error {
	redisErr := s.client.Close()
	backingErr := s.backing.Close()
	if backingErr != nil {
		return backingErr
	}
	return redisErr
}

func (s *Store) set(ctx context.Context, userID string, strength int) {
	if err := s.client.Set(ctx, strengthKey(userID), strength, s.ttl).Err(); err != nil {
		s.logger.Warn("rediscache: set failed", zap.String("user_id", userID), zap.Error(err))
	}
}
