package repository

import (
	"context"
	"errors"

	"shepherd/internal/cache"
	"shepherd/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users. Role is fixed at
// creation; there is no update operation.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	ListLeaders(ctx context.Context) ([]*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("a user with this email already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	_, err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListLeaders(ctx context.Context) ([]*models.User, error) {
	var leaders []*models.User
	err := readDB(r.db).WithContext(ctx).
		Where("role = ?", models.RoleLeader).
		Order("name ASC, id ASC").
		Find(&leaders).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return leaders, nil
}
