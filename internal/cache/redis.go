// Package cache holds the optional Redis layer: feed page and reflection
// caching, user lookups and the key scheme that invalidates them.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shepherd/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// client is nil when Redis is not configured or unreachable; every helper
// in this package then falls through to the database.
var client *redis.Client

const slowCommand = 50 * time.Millisecond

// instrumentation counts failed commands and logs slow ones.
type instrumentation struct{}

func (instrumentation) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (instrumentation) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		observe(ctx, cmd.Name(), time.Since(start), err)
		return err
	}
}

func (instrumentation) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		observe(ctx, "pipeline", time.Since(start), err)
		return err
	}
}

func observe(ctx context.Context, op string, took time.Duration, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.RedisErrors.WithLabelValues(op).Inc()
	}
	if took > slowCommand {
		middleware.Logger.WarnContext(ctx, "slow redis command", slog.String("op", op), slog.Duration("took", took))
	}
}

// Options parses REDIS_URL. A bare host:port is accepted as well as a
// redis:// or rediss:// URL.
func Options(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("empty redis address")
	}
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	// Cache reads sit on the feed path; fail fast and fall back to the database.
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 500 * time.Millisecond
	opts.WriteTimeout = 500 * time.Millisecond
	return opts, nil
}

// InitRedis connects to addr and installs the client. Any failure leaves the
// cache disabled rather than stopping startup.
func InitRedis(addr string) {
	opts, err := Options(addr)
	if err != nil {
		middleware.Logger.Warn("Invalid REDIS_URL, continuing without cache", slog.String("error", err.Error()))
		client = nil
		return
	}

	c := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without cache",
			slog.String("addr", opts.Addr), slog.String("error", err.Error()))
		_ = c.Close()
		client = nil
		return
	}
	SetClient(c)
	middleware.Logger.Info("Redis connected", slog.String("addr", opts.Addr))
}

// SetClient installs an already-connected client (tests, bootstrap).
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(instrumentation{})
	}
	client = c
}

// GetClient returns the current Redis client, or nil.
func GetClient() *redis.Client {
	return client
}
