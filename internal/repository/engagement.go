package repository

import (
	"context"

	"shepherd/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository toggles likes and saves. Every method reports whether
// the stored state actually changed.
type EngagementRepository interface {
	Like(ctx context.Context, postID, userID uint) (bool, error)
	Unlike(ctx context.Context, postID, userID uint) (bool, error)
	Save(ctx context.Context, postID, userID uint) (bool, error)
	Unsave(ctx context.Context, postID, userID uint) (bool, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

var postUserConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
	DoNothing: true,
}

func (r *engagementRepository) Like(ctx context.Context, postID, userID uint) (bool, error) {
	return r.insert(ctx, &models.Like{PostID: postID, UserID: userID})
}

func (r *engagementRepository) Unlike(ctx context.Context, postID, userID uint) (bool, error) {
	return r.remove(ctx, &models.Like{}, postID, userID)
}

func (r *engagementRepository) Save(ctx context.Context, postID, userID uint) (bool, error) {
	return r.insert(ctx, &models.Save{PostID: postID, UserID: userID})
}

func (r *engagementRepository) Unsave(ctx context.Context, postID, userID uint) (bool, error) {
	return r.remove(ctx, &models.Save{}, postID, userID)
}

func (r *engagementRepository) insert(ctx context.Context, row interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(postUserConflict).Create(row)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *engagementRepository) remove(ctx context.Context, model interface{}, postID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(model)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
