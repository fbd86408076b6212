package models

import "time"

// Conversation is the single private thread between one worshiper and one
// leader.
type Conversation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorshiperID uint      `gorm:"not null;uniqueIndex:idx_conversations_pair" json:"worshiper_id"`
	LeaderID    uint      `gorm:"not null;uniqueIndex:idx_conversations_pair;index" json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`

	Worshiper *User     `gorm:"foreignKey:WorshiperID" json:"worshiper,omitempty"`
	Leader    *User     `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Messages  []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.WorshiperID == userID || c.LeaderID == userID
}

// Counterpart returns the participant that is not userID.
func (c *Conversation) Counterpart(userID uint) *User {
	if c.WorshiperID == userID {
		return c.Leader
	}
	return c.Worshiper
}

// Message is an immutable entry in a conversation. Only the read flag changes.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint       `gorm:"not null;index" json:"sender_id"`
	SenderRole     Role       `gorm:"type:varchar(20);not null" json:"sender_role"`
	ContentText    string     `gorm:"type:text;not null" json:"content_text"`
	IsRead         bool       `gorm:"not null" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}
