// Package cache provides the Redis-backed shared uniqueness store used when
// several service instances must not reissue each other's numbers or
// prefixes.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
	"github.com/fieldtel/number-provisioning-backend/internal/infrastructure/config"
)

// RedisUniquenessStore keeps the used-number and used-prefix sets in two
// Redis sets. The service still serializes generation behind its own mutex;
// the store only widens the uniqueness scope across processes.
type RedisUniquenessStore struct {
	client    *redis.Client
	logger    *zap.Logger
	fullsKey  string
	prefixKey string
}

// NewRedisUniquenessStore connects to Redis and verifies the connection.
func NewRedisUniquenessStore(cfg *config.RedisConfig, logger *zap.Logger) (*RedisUniquenessStore, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("redis uniqueness store initialized",
		zap.String("addr", cfg.Address),
		zap.Int("db", cfg.DB))

	return &RedisUniquenessStore{
		client:    client,
		logger:    logger,
		fullsKey:  cfg.KeyPrefix + ":used:numbers",
		prefixKey: cfg.KeyPrefix + ":used:prefixes",
	}, nil
}

// Seed merges every stored number and prefix into sets.
func (s *RedisUniquenessStore) Seed(ctx context.Context, sets *numbering.UniquenessSets) error {
	fulls, err := s.client.SMembers(ctx, s.fullsKey).Result()
	if err != nil {
		return fmt.Errorf("loading used numbers: %w", err)
	}
	prefixes, err := s.client.SMembers(ctx, s.prefixKey).Result()
	if err != nil {
		return fmt.Errorf("loading used prefixes: %w", err)
	}

	for _, f := range fulls {
		sets.AddFull(f)
	}
	for _, p := range prefixes {
		sets.AddPrefix(p)
	}

	s.logger.Debug("seeded uniqueness sets",
		zap.Int("numbers", len(fulls)),
		zap.Int("prefixes", len(prefixes)))
	return nil
}

// Record adds accepted numbers and prefixes to the shared sets in one
// round trip.
func (s *RedisUniquenessStore) Record(ctx context.Context, fullNumbers, prefixes []string) error {
	if len(fullNumbers) == 0 && len(prefixes) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	if len(fullNumbers) > 0 {
		pipe.SAdd(ctx, s.fullsKey, toAnySlice(fullNumbers)...)
	}
	if len(prefixes) > 0 {
		pipe.SAdd(ctx, s.prefixKey, toAnySlice(prefixes)...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("recording used numbers failed", zap.Error(err))
		return fmt.Errorf("recording used numbers: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisUniquenessStore) Close() error {
	return s.client.Close()
}

func toAnySlice(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
