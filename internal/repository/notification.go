package repository

import (
	"context"

	"shepherd/internal/models"

	"gorm.io/gorm"
)

// NotificationCounts summarises a recipient's whole notification set.
type NotificationCounts struct {
	Total  int64
	Unread int64
}

// NotificationRepository defines persistence operations for notifications.
// Rows are never deleted; is_read only moves from false to true.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID uint, limit int, includeRead bool) ([]*models.Notification, error)
	Counts(ctx context.Context, userID uint) (NotificationCounts, error)
	MarkRead(ctx context.Context, id, userID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID uint, limit int, includeRead bool) ([]*models.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeRead {
		q = q.Where("is_read = ?", false)
	}
	var items []*models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *notificationRepository) Counts(ctx context.Context, userID uint) (NotificationCounts, error) {
	var counts NotificationCounts
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_read = ? THEN 1 ELSE 0 END), 0) AS unread", false).
		Where("user_id = ?", userID).
		Scan(&counts).Error
	if err != nil {
		return NotificationCounts{}, models.NewInternalError(err)
	}
	return counts, nil
}

// MarkRead returns NotFound for a notification that is absent or owned by
// someone else. Marking an already-read row succeeds.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
