package service

import (
	"context"
	"log/slog"
	"time"

	"shepherd/internal/cache"
	"shepherd/internal/middleware"
	"shepherd/internal/models"
	"shepherd/internal/notifications"
	"shepherd/internal/repository"
)

// FollowService manages worshiper -> leader follow edges.
type FollowService struct {
	follows  repository.FollowRepository
	users    repository.UserRepository
	posts    repository.PostRepository
	notifier Notifier
	now      func() time.Time
}

// FollowedUser is one side of a follow edge as shown in follow lists.
type FollowedUser struct {
	models.UserSummary
	FollowedAt time.Time `json:"followed_at"`
}

// LeaderListing is a leader in the directory, flagged for the caller.
type LeaderListing struct {
	models.UserSummary
	Bio         string `json:"bio,omitempty"`
	IsFollowing bool   `json:"is_following"`
}

// LeaderProfile is a leader's public profile with its counters.
type LeaderProfile struct {
	LeaderListing
	FollowersCount int64 `json:"followers_count"`
	PostsCount     int64 `json:"posts_count"`
}

// NewFollowService returns a new FollowService.
func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	posts repository.PostRepository,
	notifier Notifier,
) *FollowService {
	return &FollowService{
		follows:  follows,
		users:    users,
		posts:    posts,
		notifier: notifier,
		now:      utcNow,
	}
}

// Follow makes actor follow leaderID. Repeating it succeeds without effect;
// the leader is notified only when the edge is new.
func (s *FollowService) Follow(ctx context.Context, actor models.Actor, leaderID uint) (bool, error) {
	if !actor.IsWorshiper() {
		return false, models.NewRoleViolationError("Only worshipers can follow leaders")
	}
	leader, err := s.users.GetByID(ctx, leaderID)
	if err != nil {
		return false, err
	}
	if !leader.IsLeader() {
		return false, models.NewRoleViolationError("You can only follow leaders")
	}

	created, err := s.follows.Create(ctx, actor.ID, leaderID)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	cache.InvalidateViewerFeeds(ctx, actor.ID)
	worshiper, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "follower profile unavailable for notification",
			slog.Uint64("user_id", uint64(actor.ID)),
			slog.String("error", err.Error()),
		)
	}
	notifyAfterCommit(ctx, s.notifier, leaderID, models.NotificationNewFollower,
		notifications.NewFollowerMessage(displayName(worshiper)), models.NoReference())
	return true, nil
}

// Unfollow removes the edge. A missing edge is a successful no-op.
func (s *FollowService) Unfollow(ctx context.Context, actor models.Actor, leaderID uint) error {
	if !actor.IsWorshiper() {
		return models.NewRoleViolationError("Only worshipers can unfollow leaders")
	}
	removed, err := s.follows.Delete(ctx, actor.ID, leaderID)
	if err != nil {
		return err
	}
	if removed {
		cache.InvalidateViewerFeeds(ctx, actor.ID)
	}
	return nil
}

// ListFollowing returns the leaders actor follows, most recent follow first.
func (s *FollowService) ListFollowing(ctx context.Context, actor models.Actor) ([]FollowedUser, error) {
	if !actor.IsWorshiper() {
		return nil, models.NewRoleViolationError("Only worshipers follow leaders")
	}
	edges, err := s.follows.ListFollowing(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]FollowedUser, 0, len(edges))
	for _, e := range edges {
		out = append(out, FollowedUser{UserSummary: e.Leader.Summary(), FollowedAt: e.CreatedAt})
	}
	return out, nil
}

// ListFollowers returns the worshipers following actor, most recent first.
func (s *FollowService) ListFollowers(ctx context.Context, actor models.Actor) ([]FollowedUser, error) {
	if !actor.IsLeader() {
		return nil, models.NewRoleViolationError("Only leaders have followers")
	}
	edges, err := s.follows.ListFollowers(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]FollowedUser, 0, len(edges))
	for _, e := range edges {
		out = append(out, FollowedUser{UserSummary: e.Worshiper.Summary(), FollowedAt: e.CreatedAt})
	}
	return out, nil
}

// ListLeaders returns every leader. IsFollowing is only ever set for worshipers.
func (s *FollowService) ListLeaders(ctx context.Context, actor models.Actor) ([]LeaderListing, error) {
	leaders, err := s.users.ListLeaders(ctx)
	if err != nil {
		return nil, err
	}
	following := map[uint]bool{}
	if actor.IsWorshiper() {
		ids, err := s.follows.ListFollowedLeaderIDs(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			following[id] = true
		}
	}
	out := make([]LeaderListing, 0, len(leaders))
	for _, l := range leaders {
		out = append(out, LeaderListing{UserSummary: l.Summary(), Bio: l.Bio, IsFollowing: following[l.ID]})
	}
	return out, nil
}

// GetLeaderProfile returns a leader with follower and published post counts.
func (s *FollowService) GetLeaderProfile(ctx context.Context, actor models.Actor, leaderID uint) (*LeaderProfile, error) {
	leader, err := s.users.GetByID(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	if !leader.IsLeader() {
		return nil, models.NewNotFoundError("Leader", leaderID)
	}

	followers, err := s.follows.CountFollowers(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.CountPublishedByLeader(ctx, leaderID, s.now())
	if err != nil {
		return nil, err
	}
	isFollowing := false
	if actor.IsWorshiper() {
		if isFollowing, err = s.follows.Exists(ctx, actor.ID, leaderID); err != nil {
			return nil, err
		}
	}

	return &LeaderProfile{
		LeaderListing: LeaderListing{
			UserSummary: leader.Summary(),
			Bio:         leader.Bio,
			IsFollowing: isFollowing,
		},
		FollowersCount: followers,
		PostsCount:     posts,
	}, nil
}
