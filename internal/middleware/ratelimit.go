package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"shepherd/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Limit is a fixed-window budget for one named action.
type Limit struct {
	Action string
	Max    int
	Window time.Duration
}

// Budgets for the write paths that fan out or notify.
var (
	LimitFollow     = Limit{Action: "follow", Max: 30, Window: time.Minute}
	LimitCreatePost = Limit{Action: "create_post", Max: 10, Window: 5 * time.Minute}
	LimitComment    = Limit{Action: "create_comment", Max: 10, Window: time.Minute}
	LimitQuestion   = Limit{Action: "ask_question", Max: 5, Window: 10 * time.Minute}
	LimitMessage    = Limit{Action: "send_message", Max: 15, Window: time.Minute}
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	RetryIn   time.Duration
}

// rateLimitEnabled is false in development, test and stress runs. An unset
// APP_ENV counts as development.
func rateLimitEnabled() bool {
	switch strings.ToLower(os.Getenv("APP_ENV")) {
	case "", "development", "test", "stress":
		return false
	}
	return true
}

// Allow counts one hit against subject's budget for l. The window key is
// created with its TTL before the increment, in one MULTI.
func (l Limit) Allow(ctx context.Context, rdb *redis.Client, subject string) (Decision, error) {
	if rdb == nil {
		return Decision{}, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("rl:%s:%s", l.Action, subject)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetNX(ctx, key, 0, l.Window)
		incr = p.Incr(ctx, key)
		ttl = p.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	count := int(incr.Val())
	d := Decision{Allowed: count <= l.Max, Remaining: l.Max - count}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryIn = ttl.Val()
		if d.RetryIn <= 0 {
			d.RetryIn = l.Window
		}
	}
	return d, nil
}

// RateLimit enforces l per authenticated actor, or per IP before auth.
// A Redis failure lets the request through.
func RateLimit(rdb *redis.Client, l Limit) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rateLimitEnabled() {
			return c.Next()
		}
		ctx := c.UserContext()

		subject := "ip:" + c.IP()
		if a, ok := ActorFromCtx(c); ok {
			subject = fmt.Sprintf("%s:%d", a.Role, a.ID)
		}

		d, err := l.Allow(ctx, rdb, subject)
		if err != nil {
			RedisErrors.WithLabelValues("ratelimit").Inc()
			Logger.WarnContext(ctx, "rate limit unavailable, allowing request",
				slog.String("action", l.Action),
				slog.String("error", err.Error()),
			)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(d.RetryIn.Round(time.Second).Seconds())))
			return models.RespondWithError(c, fiber.StatusTooManyRequests, models.NewRateLimitedError(l.Action))
		}
		return c.Next()
	}
}
