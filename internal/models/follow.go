package models

import "time"

// Follow is a directed edge from a worshiper to a leader. At most one edge
// exists per pair.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorshiperID uint      `gorm:"not null;uniqueIndex:idx_follows_pair" json:"worshiper_id"`
	LeaderID    uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index:idx_follows_leader" json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relationships
	Worshiper *User `gorm:"foreignKey:WorshiperID" json:"worshiper,omitempty"`
	Leader    *User `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
