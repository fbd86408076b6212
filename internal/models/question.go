package models

import "time"

// Question is asked by a worshiper to a leader they follow. It may be
// answered exactly once.
type Question struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	WorshiperID  uint       `gorm:"not null;index" json:"worshiper_id"`
	LeaderID     uint       `gorm:"not null;index" json:"leader_id"`
	QuestionText string     `gorm:"type:text;not null" json:"question_text"`
	AnswerText   *string    `gorm:"type:text" json:"answer_text,omitempty"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`

	Worshiper *User `gorm:"foreignKey:WorshiperID" json:"worshiper,omitempty"`
	Leader    *User `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
}

// IsAnswered reports whether an answer has been recorded.
func (q *Question) IsAnswered() bool {
	return q.AnsweredAt != nil
}
