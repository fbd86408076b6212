package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"shepherd/internal/middleware"
	"shepherd/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ErrMiss reports that a key is absent (or the cache is disabled).
var ErrMiss = errors.New("cache miss")

// GetJSON loads key into dest.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	if client == nil {
		return ErrMiss
	}
	span, ctx := observability.StartRedisSpan(ctx, "get", key)
	defer span.End()

	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		span.SetError(err)
		return err
	}
	return json.Unmarshal(raw, dest)
}

// SetJSON stores value under key with ttl.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	span, ctx := observability.StartRedisSpan(ctx, "set", key)
	defer span.End()
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// Aside implements cache-aside: it serves key from Redis when present and
// otherwise runs fetch, stores the result and returns it. Redis failures
// degrade to calling fetch; fetch errors are returned unchanged and never cached.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) (hit bool, err error) {
	if client == nil {
		return false, fetch()
	}

	switch getErr := GetJSON(ctx, key, dest); {
	case getErr == nil:
		return true, nil
	case !errors.Is(getErr, ErrMiss):
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", getErr.Error()))
	}

	if err := fetch(); err != nil {
		return false, err
	}

	if err := SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return false, nil
}
