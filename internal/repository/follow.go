package repository

import (
	"context"

	"shepherd/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for worshiper -> leader edges.
type FollowRepository interface {
	// Create inserts the edge unless it already exists and reports whether a row was written.
	Create(ctx context.Context, worshiperID, leaderID uint) (bool, error)
	// Delete hard-deletes the edge and reports whether a row was removed.
	Delete(ctx context.Context, worshiperID, leaderID uint) (bool, error)
	Exists(ctx context.Context, worshiperID, leaderID uint) (bool, error)
	ListFollowing(ctx context.Context, worshiperID uint) ([]*models.Follow, error)
	ListFollowers(ctx context.Context, leaderID uint) ([]*models.Follow, error)
	ListFollowerIDs(ctx context.Context, leaderID uint) ([]uint, error)
	ListFollowedLeaderIDs(ctx context.Context, worshiperID uint) ([]uint, error)
	CountFollowers(ctx context.Context, leaderID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, worshiperID, leaderID uint) (bool, error) {
	follow := models.Follow{WorshiperID: worshiperID, LeaderID: leaderID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "worshiper_id"}, {Name: "leader_id"}},
			DoNothing: true,
		}).
		Create(&follow)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, worshiperID, leaderID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("worshiper_id = ? AND leader_id = ?", worshiperID, leaderID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, worshiperID, leaderID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("worshiper_id = ? AND leader_id = ?", worshiperID, leaderID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, worshiperID uint) ([]*models.Follow, error) {
	var follows []*models.Follow
	err := readDB(r.db).WithContext(ctx).
		Preload("Leader").
		Where("worshiper_id = ?", worshiperID).
		Order("created_at DESC, id DESC").
		Find(&follows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, leaderID uint) ([]*models.Follow, error) {
	var follows []*models.Follow
	err := readDB(r.db).WithContext(ctx).
		Preload("Worshiper").
		Where("leader_id = ?", leaderID).
		Order("created_at DESC, id DESC").
		Find(&follows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

// ListFollowerIDs reads from the primary so a fan-out sees follows committed
// moments earlier.
func (r *followRepository) ListFollowerIDs(ctx context.Context, leaderID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("leader_id = ?", leaderID).
		Order("id ASC").
		Pluck("worshiper_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) ListFollowedLeaderIDs(ctx context.Context, worshiperID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("worshiper_id = ?", worshiperID).
		Pluck("leader_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, leaderID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("leader_id = ?", leaderID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
