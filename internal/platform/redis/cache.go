package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spraicheux/offerflow/internal/config"
)

// ErrJobNotFound is returned when no status or result is cached for a job.
var ErrJobNotFound = errors.New("job not found in result cache")

// ResultCache stores job status and result JSON keyed by job ID so the
// results endpoint can answer polls without touching the database.
type ResultCache interface {
	// SetStatus records the current status of a job.
	SetStatus(ctx context.Context, jobID string, status string) error

	// GetStatus returns the recorded status of a job.
	// Returns ErrJobNotFound if the job is not in the cache.
	GetStatus(ctx context.Context, jobID string) (string, error)

	// SetResult stores the serialized result payload of a completed job.
	SetResult(ctx context.Context, jobID string, resultJSON []byte) error

	// GetResult returns the serialized result payload of a job.
	// Returns ErrJobNotFound if no result is cached for the job.
	GetResult(ctx context.Context, jobID string) ([]byte, error)

	// Exists reports whether the cache knows anything about the job.
	Exists(ctx context.Context, jobID string) (bool, error)
}

func statusKey(jobID string) string { return fmt.Sprintf("job:%s:status", jobID) }
func resultKey(jobID string) string { return fmt.Sprintf("job:%s:result", jobID) }

// redisCache is the Redis-backed ResultCache implementation.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache connects to Redis and returns a Redis-backed ResultCache.
// When Redis is unreachable it logs a warning and falls back to an in-memory
// cache so a missing Redis never blocks ingestion; cached entries are then
// lost on restart.
func NewResultCache(ctx context.Context, logger *slog.Logger, cfg config.RedisConfig) ResultCache {
	ttl := time.Duration(cfg.ResultTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, falling back to in-memory result cache",
			"addr", cfg.Addr,
			"error", err)
		return NewMemoryCache(ttl)
	}

	logger.Info("Connected to Redis result cache",
		"addr", cfg.Addr,
		"ttl", ttl)

	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) SetStatus(ctx context.Context, jobID string, status string) error {
	if err := c.client.Set(ctx, statusKey(jobID), status, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set job status: %w", err)
	}
	return nil
}

func (c *redisCache) GetStatus(ctx context.Context, jobID string) (string, error) {
	status, err := c.client.Get(ctx, statusKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrJobNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get job status: %w", err)
	}
	return status, nil
}

func (c *redisCache) SetResult(ctx context.Context, jobID string, resultJSON []byte) error {
	if err := c.client.Set(ctx, resultKey(jobID), resultJSON, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set job result: %w", err)
	}
	return nil
}

func (c *redisCache) GetResult(ctx context.Context, jobID string) ([]byte, error) {
	result, err := c.client.Get(ctx, resultKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job result: %w", err)
	}
	return result, nil
}

func (c *redisCache) Exists(ctx context.Context, jobID string) (bool, error) {
	n, err := c.client.Exists(ctx, statusKey(jobID), resultKey(jobID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check job existence: %w", err)
	}
	return n > 0, nil
}

// memoryCache is the in-memory fallback used when Redis is unavailable.
type memoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache returns a ResultCache backed by a process-local map with
// per-entry expiry. Intended for the Redis fallback path and for tests.
func NewMemoryCache(ttl time.Duration) ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &memoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryCache) set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *memoryCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *memoryCache) SetStatus(_ context.Context, jobID string, status string) error {
	c.set(statusKey(jobID), []byte(status))
	return nil
}

func (c *memoryCache) GetStatus(_ context.Context, jobID string) (string, error) {
	value, ok := c.get(statusKey(jobID))
	if !ok {
		return "", ErrJobNotFound
	}
	return string(value), nil
}

func (c *memoryCache) SetResult(_ context.Context, jobID string, resultJSON []byte) error {
	c.set(resultKey(jobID), resultJSON)
	return nil
}

func (c *memoryCache) GetResult(_ context.Context, jobID string) ([]byte, error) {
	value, ok := c.get(resultKey(jobID))
	if !ok {
		return nil, ErrJobNotFound
	}
	return value, nil
}

func (c *memoryCache) Exists(_ context.Context, jobID string) (bool, error) {
	if _, ok := c.get(statusKey(jobID)); ok {
		return true, nil
	}
	_, ok := c.get(resultKey(jobID))
	return ok, nil
}
