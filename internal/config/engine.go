package config

import "time"

// Engine carries the read limits and tuning knobs handed to the services.
// It is a value type; services keep their own copy.
type Engine struct {
	FeedDefaultLimit         int
	FeedMaxLimit             int
	NotificationDefaultLimit int
	NotificationMaxLimit     int
	ReflectionLookbackDays   int
	FeedCacheTTL             time.Duration
}

// DefaultEngine holds the limits used when nothing is configured.
var DefaultEngine = Engine{
	FeedDefaultLimit:         20,
	FeedMaxLimit:             100,
	NotificationDefaultLimit: 50,
	NotificationMaxLimit:     100,
	ReflectionLookbackDays:   7,
	FeedCacheTTL:             30 * time.Second,
}

// Engine returns the engine limits, falling back to DefaultEngine for unset values.
func (c *Config) Engine() Engine {
	e := Engine{
		FeedDefaultLimit:         c.FeedDefaultLimit,
		FeedMaxLimit:             c.FeedMaxLimit,
		NotificationDefaultLimit: c.NotificationDefaultLimit,
		NotificationMaxLimit:     c.NotificationMaxLimit,
		ReflectionLookbackDays:   c.ReflectionLookbackDays,
		FeedCacheTTL:             time.Duration(c.FeedCacheTTLSeconds) * time.Second,
	}
	return e.WithDefaults()
}

// WithDefaults fills zero fields from DefaultEngine.
func (e Engine) WithDefaults() Engine {
	if e.FeedDefaultLimit <= 0 {
		e.FeedDefaultLimit = DefaultEngine.FeedDefaultLimit
	}
	if e.FeedMaxLimit <= 0 {
		e.FeedMaxLimit = DefaultEngine.FeedMaxLimit
	}
	if e.NotificationDefaultLimit <= 0 {
		e.NotificationDefaultLimit = DefaultEngine.NotificationDefaultLimit
	}
	if e.NotificationMaxLimit <= 0 {
		e.NotificationMaxLimit = DefaultEngine.NotificationMaxLimit
	}
	if e.ReflectionLookbackDays <= 0 {
		e.ReflectionLookbackDays = DefaultEngine.ReflectionLookbackDays
	}
	if e.FeedCacheTTL <= 0 {
		e.FeedCacheTTL = DefaultEngine.FeedCacheTTL
	}
	return e
}

// ClampFeedLimit applies the feed default and maximum to a requested limit.
func (e Engine) ClampFeedLimit(limit int) int {
	return clamp(limit, e.FeedDefaultLimit, e.FeedMaxLimit)
}

// ClampNotificationLimit applies the notification default and maximum.
func (e Engine) ClampNotificationLimit(limit int) int {
	return clamp(limit, e.NotificationDefaultLimit, e.NotificationMaxLimit)
}

func clamp(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
