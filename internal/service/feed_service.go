package service

import (
	"context"
	"hash/fnv"
	"time"
	"unicode/utf8"

	"shepherd/internal/cache"
	"shepherd/internal/config"
	"shepherd/internal/featureflags"
	"shepherd/internal/models"
	"shepherd/internal/observability"
	"shepherd/internal/repository"
)

const (
	feedExplore   = "explore"
	feedFollowing = "following"

	reasonFollowing = "From a leader you follow"
	reasonExplore   = "Trending in your community"

	reflectionFound = "Today's Reflection"
	reflectionEmpty = "No reflection available for today"

	longContentRunes = 500
)

// FeedService composes the read-only explore, following and daily
// reflection views. It never writes to the store.
type FeedService struct {
	posts  repository.PostRepository
	flags  *featureflags.Manager
	limits config.Engine
	now    func() time.Time
}

// FeedItem is a visible post decorated for presentation.
type FeedItem struct {
	*models.Post
	Leader      models.UserSummary `json:"leader"`
	Status      string             `json:"status"`
	TimeContext string             `json:"time_context"`
	MomentLabel string             `json:"moment_label"`
	IsNew       bool               `json:"is_new"`
	ContentTone string             `json:"content_tone"`
	FeedReason  string             `json:"feed_reason,omitempty"`
}

// FeedPage is one page of a feed. Total counts every visible post in the feed.
type FeedPage struct {
	Items   []FeedItem `json:"items"`
	Total   int64      `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
	HasMore bool       `json:"has_more"`
}

// Reflection is the post of the day, or none.
type Reflection struct {
	Date    string    `json:"date"`
	Post    *FeedItem `json:"post"`
	Message string    `json:"message"`
}

// NewFeedService returns a new FeedService. A nil flags manager uses the defaults.
func NewFeedService(posts repository.PostRepository, flags *featureflags.Manager, limits config.Engine) *FeedService {
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return &FeedService{
		posts:  posts,
		flags:  flags,
		limits: limits.WithDefaults(),
		now:    utcNow,
	}
}

// Explore returns every visible post, newest first.
func (s *FeedService) Explore(ctx context.Context, actor models.Actor, limit, offset int) (*FeedPage, error) {
	return s.page(ctx, actor, feedExplore, limit, offset)
}

// Following returns visible posts from leaders the actor follows, newest first.
func (s *FeedService) Following(ctx context.Context, actor models.Actor, limit, offset int) (*FeedPage, error) {
	return s.page(ctx, actor, feedFollowing, limit, offset)
}

func (s *FeedService) page(ctx context.Context, actor models.Actor, feed string, limit, offset int) (*FeedPage, error) {
	limit = s.limits.ClampFeedLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var page FeedPage
	build := func() error {
		now := s.now()
		posts, total, err := s.posts.ListVisible(ctx, repository.FeedQuery{
			ViewerID:      actor.ID,
			FollowingOnly: feed == feedFollowing,
			Now:           now,
			Limit:         limit,
			Offset:        offset,
		})
		if err != nil {
			return err
		}
		reason := reasonExplore
		if feed == feedFollowing {
			reason = reasonFollowing
		}
		page = FeedPage{
			Items:   make([]FeedItem, 0, len(posts)),
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: int64(offset+len(posts)) < total,
		}
		for _, p := range posts {
			page.Items = append(page.Items, decorate(p, now, reason))
		}
		return nil
	}

	if !s.flags.Enabled(featureflags.FeedCache, actor.ID) {
		observability.FeedCacheRequests.WithLabelValues(feed, "bypass").Inc()
		if err := build(); err != nil {
			return nil, err
		}
		return &page, nil
	}

	key := cache.FeedPageKey(ctx, feed, actor.ID, limit, offset)
	hit, err := cache.Aside(ctx, key, &page, s.limits.FeedCacheTTL, build)
	if err != nil {
		return nil, err
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	observability.FeedCacheRequests.WithLabelValues(feed, result).Inc()
	return &page, nil
}

// DailyReflection picks the same post for every caller on a given UTC day.
// Candidates are the posts whose publication time fell before the day began,
// created within the lookback window, ordered by id; the day's FNV-32a hash
// selects one. Posts published later the same day never join the set.
func (s *FeedService) DailyReflection(ctx context.Context, now time.Time) (*Reflection, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := dayStart.Format(time.DateOnly)

	var reflection Reflection
	build := func() error {
		since := dayStart.AddDate(0, 0, -s.limits.ReflectionLookbackDays)
		candidates, err := s.posts.ListReflectionCandidates(ctx, since, dayStart)
		if err != nil {
			return err
		}
		reflection = Reflection{Date: day, Message: reflectionEmpty}
		if len(candidates) == 0 {
			return nil
		}
		item := decorate(candidates[reflectionIndex(day, len(candidates))], now, "")
		reflection.Post = &item
		reflection.Message = reflectionFound
		return nil
	}

	if !s.flags.EnabledGlobally(featureflags.FeedCache) {
		if err := build(); err != nil {
			return nil, err
		}
		return &reflection, nil
	}
	if _, err := cache.Aside(ctx, cache.ReflectionKey(day), &reflection, cache.ReflectionTTL, build); err != nil {
		return nil, err
	}
	return &reflection, nil
}

func reflectionIndex(day string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(day))
	return int(h.Sum32() % uint32(n))
}

func decorate(p *models.Post, now time.Time, reason string) FeedItem {
	timeContext, label := momentOf(p.CreatedAt)
	return FeedItem{
		Post:        p,
		Leader:      p.Leader.Summary(),
		Status:      p.Status(),
		TimeContext: timeContext,
		MomentLabel: label,
		IsNew:       now.Sub(p.CreatedAt) < 24*time.Hour,
		ContentTone: toneOf(p),
		FeedReason:  reason,
	}
}

func momentOf(createdAt time.Time) (string, string) {
	switch h := createdAt.UTC().Hour(); {
	case h >= 5 && h < 12:
		return "morning", "Morning Reflection"
	case h >= 12 && h < 18:
		return "afternoon", "Midday Guidance"
	default:
		return "evening", "Evening Thought"
	}
}

func toneOf(p *models.Post) string {
	switch {
	case p.MediaType == models.MediaVideo:
		return "inspiration"
	case utf8.RuneCountInString(p.ContentText) > longContentRunes:
		return "guidance"
	default:
		return "community"
	}
}
