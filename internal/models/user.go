// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Role is the fixed role of a user account.
type Role string

const (
	// RoleWorshiper follows leaders, engages with posts and asks questions.
	RoleWorshiper Role = "worshiper"
	// RoleLeader publishes content and answers questions.
	RoleLeader Role = "leader"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleWorshiper || r == RoleLeader
}

// ErrRoleImmutable is returned when an update tries to change a user's role.
var ErrRoleImmutable = errors.New("user role cannot be changed")

// User is an account owned by the identity context. Only the fields the
// engine reads are modelled here.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Faith        string    `gorm:"size:100" json:"faith,omitempty"`
	Bio          string    `gorm:"type:text" json:"bio,omitempty"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeUpdate rejects role changes.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("Role") {
		return ErrRoleImmutable
	}
	return nil
}

// IsLeader reports whether the user holds the leader role.
func (u *User) IsLeader() bool {
	return u != nil && u.Role == RoleLeader
}

// UserSummary is the public projection of a user embedded in other payloads.
type UserSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	Faith        string `json:"faith,omitempty"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}

// Summary projects u into a UserSummary.
func (u *User) Summary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Role:         u.Role,
		Faith:        u.Faith,
		ProfilePhoto: u.ProfilePhoto,
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Role Role
}

func (a Actor) IsLeader() bool    { return a.Role == RoleLeader }
func (a Actor) IsWorshiper() bool { return a.Role == RoleWorshiper }
