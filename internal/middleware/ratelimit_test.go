package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shepherd/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRateLimitEnabled(t *testing.T) {
	for env, want := range map[string]bool{
		"":            false,
		"development": false,
		"test":        false,
		"stress":      false,
		"production":  true,
		"staging":     true,
	} {
		t.Setenv("APP_ENV", env)
		assert.Equal(t, want, rateLimitEnabled(), "APP_ENV=%q", env)
	}
}

func TestLimitAllow(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	l := Limit{Action: "follow", Max: 2, Window: time.Minute}

	for want := 1; want >= 0; want-- {
		d, err := l.Allow(ctx, rdb, "worshiper:1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, want, d.Remaining)
	}

	d, err := l.Allow(ctx, rdb, "worshiper:1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
	assert.Greater(t, d.RetryIn, time.Duration(0))
	assert.LessOrEqual(t, d.RetryIn, time.Minute)
	assert.True(t, mr.TTL("rl:follow:worshiper:1") > 0)

	// A different caller has its own bucket.
	d, err = l.Allow(ctx, rdb, "worshiper:2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// The window resets once the key expires.
	mr.FastForward(time.Minute + time.Second)
	d, err = l.Allow(ctx, rdb, "worshiper:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimitAllow_NilRedis(t *testing.T) {
	_, err := LimitFollow.Allow(context.Background(), nil, "ip:1.2.3.4")
	assert.Error(t, err)
}

func TestRateLimitMiddleware_SkippedInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	app := fiber.New()
	app.Post("/follow", RateLimit(nil, Limit{Action: "follow", Max: 0, Window: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/follow", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))
	_ = resp.Body.Close()
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	app := fiber.New()
	app.Post("/follow", RateLimit(nil, LimitFollow), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/follow", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRateLimitMiddleware_KeysByActor(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newTestRedis(t)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		SetActor(c, &Claims{Actor: models.Actor{ID: 42, Role: models.RoleWorshiper}})
		return c.Next()
	})
	app.Post("/comment", RateLimit(rdb, Limit{Action: "create_comment", Max: 1, Window: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/comment", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	_ = resp.Body.Close()

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/comment", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	_ = resp.Body.Close()

	assert.True(t, mr.Exists("rl:create_comment:worshiper:42"))
}
