package repository

import (
	"context"
	"errors"
	"time"

	"shepherd/internal/models"

	"gorm.io/gorm"
)

// FeedQuery selects one page of visible posts.
type FeedQuery struct {
	ViewerID uint
	// FollowingOnly restricts the page to leaders ViewerID follows.
	FollowingOnly bool
	Now           time.Time
	Limit         int
	Offset        int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error)
	ListVisible(ctx context.Context, q FeedQuery) ([]*models.Post, int64, error)
	ListByLeader(ctx context.Context, leaderID uint) ([]*models.Post, error)
	ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	MarkPublished(ctx context.Context, id uint) (bool, error)
	ListReflectionCandidates(ctx context.Context, since, asOf time.Time) ([]*models.Post, error)
	CountPublishedByLeader(ctx context.Context, leaderID uint, now time.Time) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Leader").
		Where("posts.is_active = ?", true).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetVisibleByID returns the post only when a feed reader could see it at now.
func (r *postRepository) GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	var post models.Post
	err := visiblePosts(r.db.WithContext(ctx), now).
		Preload("Leader").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListVisible(ctx context.Context, q FeedQuery) ([]*models.Post, int64, error) {
	db := readDB(r.db).WithContext(ctx)

	scope := func(tx *gorm.DB) *gorm.DB {
		tx = visiblePosts(tx, q.Now)
		if q.FollowingOnly {
			tx = tx.Where("posts.leader_id IN (SELECT leader_id FROM follows WHERE worshiper_id = ?)", q.ViewerID)
		}
		return tx
	}

	var total int64
	if err := db.Model(&models.Post{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []*models.Post
	err := r.applyPostDetails(db, q.ViewerID).
		Scopes(scope).
		Preload("Leader").
		Order("posts.created_at DESC, posts.id DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) ListByLeader(ctx context.Context, leaderID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), 0).
		Where("posts.leader_id = ? AND posts.is_active = ?", leaderID, true).
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListDueScheduled returns unpublished active posts whose schedule has passed, oldest first.
func (r *postRepository) ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Leader").
		Where("is_active = ? AND is_published = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", true, false, now.UTC()).
		Order("scheduled_at ASC, id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// MarkPublished claims a scheduled post. Only one caller observes true for a given post.
func (r *postRepository) MarkPublished(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND is_published = ?", id, false).
		Update("is_published", true)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ListReflectionCandidates returns active posts created at or after since
// whose publication time is at or before asOf, ordered by id. The current
// is_published flag is ignored: a post claimed later in the day was not
// visible at asOf and must not change the set.
func (r *postRepository) ListReflectionCandidates(ctx context.Context, since, asOf time.Time) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx), 0).
		Preload("Leader").
		Where("posts.is_active = ?", true).
		Where("posts.created_at >= ? AND posts.created_at <= ?", since.UTC(), asOf.UTC()).
		Where("COALESCE(posts.scheduled_at, posts.created_at) <= ?", asOf.UTC()).
		Order("posts.id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountPublishedByLeader(ctx context.Context, leaderID uint, now time.Time) (int64, error) {
	var count int64
	err := visiblePosts(readDB(r.db).WithContext(ctx).Model(&models.Post{}), now).
		Where("posts.leader_id = ?", leaderID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// applyPostDetails adds subqueries to fetch counts and viewer flags in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM saves WHERE saves.post_id = posts.id) AS saves_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

	db = db.Model(&models.Post{})
	if viewerID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS is_liked"+
			", EXISTS(SELECT 1 FROM saves WHERE saves.post_id = posts.id AND saves.user_id = ?) AS is_saved",
			viewerID, viewerID)
	}
	return db.Select(selectQuery + ", false AS is_liked, false AS is_saved")
}
