package service

import (
	"context"
	"log/slog"
	"time"

	"shepherd/internal/cache"
	"shepherd/internal/middleware"
	"shepherd/internal/models"
	"shepherd/internal/notifications"
	"shepherd/internal/observability"
	"shepherd/internal/repository"
	"shepherd/internal/validation"
)

// publishBatchSize bounds how many due posts one sweep pass claims at a time.
const publishBatchSize = 100

// PostService handles leader post authoring and scheduled publishing.
type PostService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	notifier Notifier
	now      func() time.Time
}

type CreatePostInput struct {
	ContentText string     `json:"content_text"`
	Tag         string     `json:"tag"`
	Intent      string     `json:"intent"`
	MediaURL    string     `json:"media_url"`
	MediaType   string     `json:"media_type"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// PostView is a post with its publication status.
type PostView struct {
	*models.Post
	Status string `json:"status"`
}

// PublishReport summarises one PublishDuePosts sweep.
type PublishReport struct {
	Claimed  int    `json:"claimed"`
	Notified int    `json:"notified"`
	PostIDs  []uint `json:"post_ids"`
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	notifier Notifier,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		notifier: notifier,
		now:      utcNow,
	}
}

// buildPost validates the input and returns the post it describes without
// writing anything.
func (s *PostService) buildPost(actor models.Actor, in CreatePostInput, now time.Time) (*models.Post, error) {
	if !actor.IsLeader() {
		return nil, models.NewRoleViolationError("Only leaders can create posts")
	}
	content, err := validation.Text("Content", in.ContentText, validation.PostMinLength, validation.PostMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tag := models.TagWisdom
	if in.Tag != "" {
		tag = models.PostTag(in.Tag)
		if !tag.Valid() {
			return nil, models.NewValidationError("Invalid tag")
		}
	}
	intent := models.IntentGuidance
	if in.Intent != "" {
		intent = models.PostIntent(in.Intent)
		if !intent.Valid() {
			return nil, models.NewValidationError("Invalid intent")
		}
	}

	mediaURL, err := validation.MediaURL(in.MediaURL)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	var mediaType models.MediaType
	if in.MediaType != "" {
		mediaType = models.MediaType(in.MediaType)
		if !mediaType.Valid() {
			return nil, models.NewValidationError("Invalid media_type")
		}
		if mediaURL == "" {
			return nil, models.NewValidationError("media_url is required when media_type is set")
		}
	}

	post := &models.Post{
		LeaderID:    actor.ID,
		ContentText: content,
		Tag:         tag,
		Intent:      intent,
		MediaURL:    mediaURL,
		MediaType:   mediaType,
		IsActive:    true,
		IsPublished: true,
	}
	if in.ScheduledAt != nil {
		at := in.ScheduledAt.UTC()
		post.ScheduledAt = &at
		post.IsPublished = !at.After(now)
	}
	return post, nil
}

// CreatePost stores the post. Posts due now are published at once and their
// leader's followers are notified; future posts wait for PublishDuePosts.
func (s *PostService) CreatePost(ctx context.Context, actor models.Actor, in CreatePostInput) (*PostView, error) {
	post, err := s.buildPost(actor, in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if post.IsPublished {
		cache.InvalidateFeeds(ctx)
		leader, err := s.users.GetByID(ctx, actor.ID)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "post author unavailable for notification",
				slog.Uint64("user_id", uint64(actor.ID)),
				slog.String("error", err.Error()),
			)
		}
		post.Leader = leader
		fanOutAfterCommit(ctx, s.notifier, actor.ID, models.NotificationNewPost,
			notifications.NewPostMessage(displayName(leader)), models.PostRef(post.ID))
	}
	return &PostView{Post: post, Status: post.Status()}, nil
}

// PreviewPost validates the input and returns the would-be post. Nothing is written.
func (s *PostService) PreviewPost(_ context.Context, actor models.Actor, in CreatePostInput) (*PostView, error) {
	post, err := s.buildPost(actor, in, s.now())
	if err != nil {
		return nil, err
	}
	return &PostView{Post: post, Status: post.Status()}, nil
}

// ListLeaderPosts returns the leader's own active posts, newest first.
func (s *PostService) ListLeaderPosts(ctx context.Context, actor models.Actor) ([]PostView, error) {
	if !actor.IsLeader() {
		return nil, models.NewRoleViolationError("Only leaders have posts")
	}
	posts, err := s.posts.ListByLeader(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, PostView{Post: p, Status: p.Status()})
	}
	return out, nil
}

// PublishDuePosts claims every scheduled post due at now and notifies the
// followers of each claimed post exactly once. Concurrent sweeps never claim
// the same post twice.
func (s *PostService) PublishDuePosts(ctx context.Context, now time.Time) (*PublishReport, error) {
	report := &PublishReport{PostIDs: []uint{}}
	for {
		due, err := s.posts.ListDueScheduled(ctx, now, publishBatchSize)
		if err != nil {
			return report, err
		}
		if len(due) == 0 {
			break
		}
		for _, p := range due {
			claimed, err := s.posts.MarkPublished(ctx, p.ID)
			if err != nil {
				return report, err
			}
			if !claimed {
				continue
			}
			report.Claimed++
			report.PostIDs = append(report.PostIDs, p.ID)
			observability.ScheduledPostsPublished.Inc()

			fan := fanOutAfterCommit(ctx, s.notifier, p.LeaderID, models.NotificationNewPost,
				notifications.NewPostMessage(displayName(p.Leader)), models.PostRef(p.ID))
			if fan != nil {
				report.Notified += fan.Delivered
			}
		}
		if len(due) < publishBatchSize {
			break
		}
	}
	if report.Claimed > 0 {
		cache.InvalidateFeeds(ctx)
	}
	return report, nil
}
