package service

import (
	"context"
	"log/slog"
	"time"

	"shepherd/internal/cache"
	"shepherd/internal/featureflags"
	"shepherd/internal/middleware"
	"shepherd/internal/models"
	"shepherd/internal/notifications"
	"shepherd/internal/repository"
	"shepherd/internal/validation"
)

// EngagementService handles likes, saves and comments on visible posts.
type EngagementService struct {
	posts      repository.PostRepository
	engagement repository.EngagementRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	notifier   Notifier
	flags      *featureflags.Manager
	now        func() time.Time
}

// CommentView is a comment with its author's public summary.
type CommentView struct {
	ID        uint               `json:"id"`
	PostID    uint               `json:"post_id"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"created_at"`
	Author    models.UserSummary `json:"author"`
}

func newCommentView(c *models.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		Author:    c.User.Summary(),
	}
}

// NewEngagementService returns a new EngagementService. A nil flags manager
// behaves like one with every flag at its default.
func NewEngagementService(
	posts repository.PostRepository,
	engagement repository.EngagementRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	notifier Notifier,
	flags *featureflags.Manager,
) *EngagementService {
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return &EngagementService{
		posts:      posts,
		engagement: engagement,
		comments:   comments,
		users:      users,
		notifier:   notifier,
		flags:      flags,
		now:        utcNow,
	}
}

type toggleFunc func(ctx context.Context, postID, userID uint) (bool, error)

// toggle applies an idempotent like/save change and returns the post as the
// actor now sees it.
func (s *EngagementService) toggle(ctx context.Context, actor models.Actor, postID uint, op toggleFunc, verb string) (*models.Post, error) {
	if !actor.IsWorshiper() {
		return nil, models.NewRoleViolationError("Only worshipers can " + verb + " posts")
	}
	if _, err := s.posts.GetVisibleByID(ctx, postID, s.now()); err != nil {
		return nil, err
	}
	changed, err := op(ctx, postID, actor.ID)
	if err != nil {
		return nil, err
	}
	if changed {
		cache.InvalidateViewerFeeds(ctx, actor.ID)
	}
	return s.posts.GetByID(ctx, postID, actor.ID)
}

// Like sets the like. Liking an already-liked post succeeds.
func (s *EngagementService) Like(ctx context.Context, actor models.Actor, postID uint) (*models.Post, error) {
	return s.toggle(ctx, actor, postID, s.engagement.Like, "like")
}

// Unlike clears the like. Clearing an absent like succeeds.
func (s *EngagementService) Unlike(ctx context.Context, actor models.Actor, postID uint) (*models.Post, error) {
	return s.toggle(ctx, actor, postID, s.engagement.Unlike, "unlike")
}

// Save bookmarks the post for the actor.
func (s *EngagementService) Save(ctx context.Context, actor models.Actor, postID uint) (*models.Post, error) {
	return s.toggle(ctx, actor, postID, s.engagement.Save, "save")
}

// Unsave removes the bookmark.
func (s *EngagementService) Unsave(ctx context.Context, actor models.Actor, postID uint) (*models.Post, error) {
	return s.toggle(ctx, actor, postID, s.engagement.Unsave, "unsave")
}

// AddComment appends a comment and, when enabled, tells the post's leader.
func (s *EngagementService) AddComment(ctx context.Context, actor models.Actor, postID uint, text string) (*CommentView, error) {
	content, err := validation.Text("Comment", text, validation.CommentMinLength, validation.CommentMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post, err := s.posts.GetVisibleByID(ctx, postID, s.now())
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: actor.ID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	cache.InvalidateViewerFeeds(ctx, actor.ID)

	author, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "comment author unavailable",
			slog.Uint64("user_id", uint64(actor.ID)),
			slog.String("error", err.Error()),
		)
	}
	comment.User = author

	if post.LeaderID != actor.ID && s.flags.Enabled(featureflags.CommentNotifications, post.LeaderID) {
		notifyAfterCommit(ctx, s.notifier, post.LeaderID, models.NotificationNewComment,
			notifications.NewCommentMessage(displayName(author)), models.PostRef(postID))
	}

	view := newCommentView(comment)
	return &view, nil
}

// ListComments returns a visible post's comments, oldest first.
func (s *EngagementService) ListComments(ctx context.Context, postID uint) ([]CommentView, error) {
	if _, err := s.posts.GetVisibleByID(ctx, postID, s.now()); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, newCommentView(c))
	}
	return out, nil
}
