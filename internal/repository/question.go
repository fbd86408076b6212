package repository

import (
	"context"
	"errors"
	"time"

	"shepherd/internal/models"

	"gorm.io/gorm"
)

// QuestionRepository defines persistence operations for worshiper questions.
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	// Answer sets the answer only while the question is unanswered and
	// reports whether this call won.
	Answer(ctx context.Context, id, leaderID uint, text string, at time.Time) (bool, error)
	ListByLeader(ctx context.Context, leaderID uint) ([]*models.Question, error)
	ListByWorshiper(ctx context.Context, worshiperID uint) ([]*models.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).
		Preload("Worshiper").
		Preload("Leader").
		First(&q, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Question", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &q, nil
}

func (r *questionRepository) Answer(ctx context.Context, id, leaderID uint, text string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ? AND leader_id = ? AND answered_at IS NULL", id, leaderID).
		Updates(map[string]interface{}{
			"answer_text": text,
			"answered_at": at.UTC(),
		})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *questionRepository) ListByLeader(ctx context.Context, leaderID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := readDB(r.db).WithContext(ctx).
		Preload("Worshiper").
		Where("leader_id = ?", leaderID).
		Order("created_at DESC, id DESC").
		Find(&questions).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return questions, nil
}

func (r *questionRepository) ListByWorshiper(ctx context.Context, worshiperID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := readDB(r.db).WithContext(ctx).
		Preload("Leader").
		Where("worshiper_id = ?", worshiperID).
		Order("created_at DESC, id DESC").
		Find(&questions).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return questions, nil
}
