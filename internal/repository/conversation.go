package repository

import (
	"context"
	"errors"
	"time"

	"shepherd/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository defines persistence operations for one-on-one
// worshiper/leader conversations and their messages.
type ConversationRepository interface {
	// CreateWithFirstMessage gets or creates the conversation for the pair and
	// appends msg to it in one transaction.
	CreateWithFirstMessage(ctx context.Context, worshiperID, leaderID uint, msg *models.Message) (*models.Conversation, error)
	AppendMessage(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	GetWithMessages(ctx context.Context, id uint) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error)
	LastMessages(ctx context.Context, conversationIDs []uint) (map[uint]*models.Message, error)
	UnreadCounts(ctx context.Context, readerID uint, conversationIDs []uint) (map[uint]int64, error)
	// MarkRead flips read receipts on messages the other participant sent.
	MarkRead(ctx context.Context, conversationID, readerID uint, at time.Time) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) CreateWithFirstMessage(ctx context.Context, worshiperID, leaderID uint, msg *models.Message) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := models.Conversation{WorshiperID: worshiperID, LeaderID: leaderID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "worshiper_id"}, {Name: "leader_id"}},
			DoNothing: true,
		}).Create(&candidate).Error; err != nil {
			return err
		}
		if err := tx.Where("worshiper_id = ? AND leader_id = ?", worshiperID, leaderID).First(&conv).Error; err != nil {
			return err
		}
		msg.ConversationID = conv.ID
		return appendMessage(tx, msg)
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	conv.UpdatedAt = msg.CreatedAt
	return &conv, nil
}

func (r *conversationRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return appendMessage(tx, msg)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func appendMessage(tx *gorm.DB, msg *models.Message) error {
	if err := tx.Create(msg).Error; err != nil {
		return err
	}
	return tx.Model(&models.Conversation{}).
		Where("id = ?", msg.ConversationID).
		UpdateColumn("updated_at", msg.CreatedAt).Error
}

func (r *conversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Worshiper").
		Preload("Leader").
		First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conversation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

func (r *conversationRepository) GetWithMessages(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Worshiper").
		Preload("Leader").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC, messages.id ASC")
		}).
		First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conversation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	err := readDB(r.db).WithContext(ctx).
		Preload("Worshiper").
		Preload("Leader").
		Where("worshiper_id = ? OR leader_id = ?", userID, userID).
		Order("updated_at DESC, id DESC").
		Find(&convs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return convs, nil
}

func (r *conversationRepository) LastMessages(ctx context.Context, conversationIDs []uint) (map[uint]*models.Message, error) {
	out := make(map[uint]*models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	db := readDB(r.db).WithContext(ctx)
	latest := db.Model(&models.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var msgs []*models.Message
	if err := db.Where("id IN (?)", latest).Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, m := range msgs {
		out[m.ConversationID] = m
	}
	return out, nil
}

func (r *conversationRepository) UnreadCounts(ctx context.Context, readerID uint, conversationIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ConversationID uint
		Unread         int64
	}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS unread").
		Where("conversation_id IN ? AND sender_id <> ? AND is_read = ?", conversationIDs, readerID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.ConversationID] = row.Unread
	}
	return out, nil
}

func (r *conversationRepository) MarkRead(ctx context.Context, conversationID, readerID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at.UTC()})
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
