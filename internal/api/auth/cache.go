package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores validated principals by token hash
type Cache interface {
	Get(ctx context.Context, key string) (*Principal, error)
	Set(ctx context.Context, key string, p *Principal, ttl time.Duration) error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// RedisCache keeps principals as JSON strings with a TTL
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Principal, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode cached principal: %w", err)
	}
	return &p, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, p *Principal, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode principal: %w", err)
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// CachingValidator consults the cache before the wrapped validator. Cache
// failures are logged and never fail authentication.
type CachingValidator struct {
	next   Validator
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachingValidator(next Validator, cache Cache, ttl time.Duration, logger *slog.Logger) *CachingValidator {
	return &CachingValidator{next: next, cache: cache, ttl: ttl, logger: logger}
}

// CacheKey never contains the raw token
func CacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:token:" + hex.EncodeToString(sum[:])
}

func (v *CachingValidator) Validate(ctx context.Context, token string) (*Principal, error) {
	key := CacheKey(token)

	p, err := v.cache.Get(ctx, key)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		v.logger.Warn("Auth cache lookup failed", slog.Any("error", err))
	}

	p, err = v.next.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := v.cache.Set(ctx, key, p, v.ttl); err != nil {
		v.logger.Warn("Auth cache store failed", slog.Any("error", err))
	}
	return p, nil
}
