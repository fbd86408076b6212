package models

import "time"

// NotificationType identifies the event a notification reports.
type NotificationType string

const (
	NotificationNewFollower      NotificationType = "new_follower"
	NotificationNewPost          NotificationType = "new_post"
	NotificationNewMessage       NotificationType = "new_message"
	NotificationQuestionAnswered NotificationType = "question_answered"
	NotificationNewComment       NotificationType = "new_comment"
)

// ReferenceKind names the entity a notification points at.
type ReferenceKind string

const (
	ReferencePost     ReferenceKind = "post"
	ReferenceChat     ReferenceKind = "chat"
	ReferenceQuestion ReferenceKind = "question"
)

// Reference is an optional typed pointer to the entity behind a notification.
// The zero value means "no reference".
type Reference struct {
	Kind ReferenceKind
	ID   uint
}

func NoReference() Reference        { return Reference{} }
func PostRef(id uint) Reference     { return Reference{Kind: ReferencePost, ID: id} }
func ChatRef(id uint) Reference     { return Reference{Kind: ReferenceChat, ID: id} }
func QuestionRef(id uint) Reference { return Reference{Kind: ReferenceQuestion, ID: id} }

// IsZero reports whether r is the empty reference.
func (r Reference) IsZero() bool { return r.Kind == "" }

// Notification is a durable, per-recipient record of an event.
type Notification struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	UserID        uint             `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Type          NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Message       string           `gorm:"type:text;not null" json:"message"`
	ReferenceType *ReferenceKind   `gorm:"type:varchar(20)" json:"reference_type"`
	ReferenceID   *uint            `json:"reference_id"`
	IsRead        bool             `gorm:"not null;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt     time.Time        `gorm:"index" json:"created_at"`
}

// Reference returns the typed reference stored on the notification.
func (n *Notification) Reference() Reference {
	if n.ReferenceType == nil || n.ReferenceID == nil {
		return NoReference()
	}
	return Reference{Kind: *n.ReferenceType, ID: *n.ReferenceID}
}

// SetReference stores ref, clearing both columns for the zero reference.
func (n *Notification) SetReference(ref Reference) {
	if ref.IsZero() {
		n.ReferenceType = nil
		n.ReferenceID = nil
		return
	}
	kind, id := ref.Kind, ref.ID
	n.ReferenceType = &kind
	n.ReferenceID = &id
}
