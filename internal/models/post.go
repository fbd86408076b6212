package models

import "time"

// PostTag classifies the content of a post.
type PostTag string

const (
	TagPrayer     PostTag = "PRAYER"
	TagWisdom     PostTag = "WISDOM"
	TagMotivation PostTag = "MOTIVATION"
	TagMeditation PostTag = "MEDITATION"
	TagCommunity  PostTag = "COMMUNITY"
	TagTeaching   PostTag = "TEACHING"
)

// PostIntent describes what the author wants the post to do for readers.
type PostIntent string

const (
	IntentComfort    PostIntent = "COMFORT"
	IntentGuidance   PostIntent = "GUIDANCE"
	IntentMotivation PostIntent = "MOTIVATION"
	IntentPrayer     PostIntent = "PRAYER"
	IntentTeaching   PostIntent = "TEACHING"
)

// MediaType is the kind of media attached to a post.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

var (
	validTags = map[PostTag]struct{}{
		TagPrayer: {}, TagWisdom: {}, TagMotivation: {}, TagMeditation: {}, TagCommunity: {}, TagTeaching: {},
	}
	validIntents = map[PostIntent]struct{}{
		IntentComfort: {}, IntentGuidance: {}, IntentMotivation: {}, IntentPrayer: {}, IntentTeaching: {},
	}
)

func (t PostTag) Valid() bool {
	_, ok := validTags[t]
	return ok
}

func (i PostIntent) Valid() bool {
	_, ok := validIntents[i]
	return ok
}

func (m MediaType) Valid() bool {
	return m == MediaImage || m == MediaVideo
}

// Post status values derived from IsPublished and ScheduledAt.
const (
	PostStatusPublished = "published"
	PostStatusScheduled = "scheduled"
)

// Post is a piece of content authored by a leader. Posts are immutable once
// created apart from the one-way publish flip.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	LeaderID    uint       `gorm:"not null;index" json:"leader_id"`
	Leader      *User      `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	ContentText string     `gorm:"type:text;not null" json:"content_text"`
	MediaURL    string     `json:"media_url,omitempty"`
	MediaType   MediaType  `gorm:"type:varchar(10)" json:"media_type,omitempty"`
	Tag         PostTag    `gorm:"type:varchar(20);not null" json:"tag"`
	Intent      PostIntent `gorm:"type:varchar(20);not null" json:"intent"`
	ScheduledAt *time.Time `gorm:"index" json:"scheduled_at,omitempty"`
	IsPublished bool       `gorm:"not null;index" json:"is_published"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`

	// Engagement counts and viewer flags are computed at query time
	LikesCount    int  `gorm:"->;-:migration" json:"likes_count"`
	SavesCount    int  `gorm:"->;-:migration" json:"saves_count"`
	CommentsCount int  `gorm:"->;-:migration" json:"comments_count"`
	IsLiked       bool `gorm:"->;-:migration" json:"is_liked"`
	IsSaved       bool `gorm:"->;-:migration" json:"is_saved"`
}

// Status reports "published" or "scheduled".
func (p *Post) Status() string {
	if p.IsPublished {
		return PostStatusPublished
	}
	return PostStatusScheduled
}

// VisibleAt reports whether the post is visible to readers at now.
func (p *Post) VisibleAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.IsPublished {
		return true
	}
	return p.ScheduledAt != nil && !p.ScheduledAt.After(now)
}
