package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	FeedPageKeyPrefix   = "feed:%s:v%d:u%d:v%d:l%d:o%d"
	FeedVersionKey      = "feed:version"
	ViewerVersionPrefix = "feed:version:user:%d"
	ReflectionKeyPrefix = "reflection:%s"
)

const (
	UserTTL       = 5 * time.Minute
	ReflectionTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func viewerVersionKey(viewerID uint) string {
	return fmt.Sprintf(ViewerVersionPrefix, viewerID)
}

// ReflectionKey is keyed by the UTC day, formatted YYYY-MM-DD.
func ReflectionKey(day string) string {
	return fmt.Sprintf(ReflectionKeyPrefix, day)
}

// FeedPageKey builds a versioned key for one page of a feed as seen by viewerID.
// Bumping either the global feed version or the viewer's version orphans every
// page that was cached before, so no key scan is needed on writes.
func FeedPageKey(ctx context.Context, feed string, viewerID uint, limit, offset int) string {
	global, viewer := feedVersions(ctx, viewerID)
	return fmt.Sprintf(FeedPageKeyPrefix, feed, global, viewerID, viewer, limit, offset)
}

func feedVersions(ctx context.Context, viewerID uint) (int64, int64) {
	if client == nil {
		return 0, 0
	}
	vals, err := client.MGet(ctx, FeedVersionKey, viewerVersionKey(viewerID)).Result()
	if err != nil || len(vals) != 2 {
		return 0, 0
	}
	return parseVersion(vals[0]), parseVersion(vals[1])
}

func parseVersion(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	var n int64
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}

// InvalidateFeeds orphans every cached feed page, e.g. after a post is published.
func InvalidateFeeds(ctx context.Context) {
	if client != nil {
		client.Incr(ctx, FeedVersionKey)
	}
}

// InvalidateViewerFeeds orphans the pages cached for one viewer, e.g. after
// they like, save or comment, or follow someone.
func InvalidateViewerFeeds(ctx context.Context, viewerID uint) {
	if client != nil {
		client.Incr(ctx, viewerVersionKey(viewerID))
	}
}
