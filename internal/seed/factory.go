// Package seed creates demo and test data for the social graph. These helpers
// are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"shepherd/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	faiths = []string{"Christianity", "Islam", "Judaism", "Buddhism", "Hinduism", "Sikhism", "Interfaith"}

	postTags    = []models.PostTag{models.TagPrayer, models.TagWisdom, models.TagMotivation, models.TagMeditation, models.TagCommunity, models.TagTeaching}
	postIntents = []models.PostIntent{models.IntentComfort, models.IntentGuidance, models.IntentMotivation, models.IntentPrayer, models.IntentTeaching}
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder, presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts.withDefaults(), rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

// CreateUser constructs and persists a user with the given role.
func (f *Factory) CreateUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:         gofakeit.Name(),
		Email:        fmt.Sprintf("%s.%d@example.com", gofakeit.Username(), gofakeit.Number(1000, 9999)),
		Role:         role,
		ProfilePhoto: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	if role == models.RoleLeader {
		user.Faith = faiths[f.rng.Intn(len(faiths))]
		user.Bio = gofakeit.Sentence(12)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.assignID()
		log.Printf("[dry-run] CreateUser: role=%s name=%q", user.Role, user.Name)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a published post for leader with a created_at spread
// over the last MaxDays days. It does not persist it.
func (f *Factory) BuildPost(leader *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		LeaderID:    leader.ID,
		ContentText: gofakeit.Paragraph(1, 3, 12, " "),
		Tag:         postTags[f.rng.Intn(len(postTags))],
		Intent:      postIntents[f.rng.Intn(len(postIntents))],
		IsPublished: true,
		IsActive:    true,
	}

	back := time.Duration(f.rng.Intn(f.opts.MaxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	post.CreatedAt = time.Now().UTC().Add(-back)

	switch roll := f.rng.Float32(); {
	case roll < 0.15:
		post.MediaType = models.MediaVideo
		post.MediaURL = fmt.Sprintf("https://cdn.example.com/video/%s.mp4", gofakeit.UUID())
	case roll < 0.45:
		post.MediaType = models.MediaImage
		post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePosts persists posts in a single DB call.
func (f *Factory) CreatePosts(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.assignID()
		}
		log.Printf("[dry-run] CreatePosts: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// insertIgnore writes row, skipping it when the unique pair already exists.
func (f *Factory) insertIgnore(row interface{}, columns ...string) error {
	if f.opts.DryRun {
		return nil
	}
	cols := make([]clause.Column, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, clause.Column{Name: c})
	}
	return f.db.Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).Create(row).Error
}

// CreateFollow persists the worshiper -> leader edge.
func (f *Factory) CreateFollow(worshiper, leader *models.User) error {
	return f.insertIgnore(&models.Follow{WorshiperID: worshiper.ID, LeaderID: leader.ID}, "worshiper_id", "leader_id")
}

// CreateLike persists a like from user on post.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	return f.insertIgnore(&models.Like{UserID: user.ID, PostID: post.ID}, "post_id", "user_id")
}

// CreateSave persists a bookmark from user on post.
func (f *Factory) CreateSave(user *models.User, post *models.Post) error {
	return f.insertIgnore(&models.Save{UserID: user.ID, PostID: post.ID}, "post_id", "user_id")
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: gofakeit.Sentence(8),
	}
	for _, override := range overrides {
		override(comment)
	}
	if f.opts.DryRun {
		comment.ID = f.assignID()
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateQuestion persists a question from worshiper to leader, answered when answered is true.
func (f *Factory) CreateQuestion(worshiper, leader *models.User, answered bool) (*models.Question, error) {
	q := &models.Question{
		WorshiperID:  worshiper.ID,
		LeaderID:     leader.ID,
		QuestionText: gofakeit.Question(),
	}
	if answered {
		answer := gofakeit.Sentence(15)
		at := time.Now().UTC()
		q.AnswerText = &answer
		q.AnsweredAt = &at
	}
	if f.opts.DryRun {
		q.ID = f.assignID()
		return q, nil
	}
	if err := f.db.Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// CreateConversation persists a conversation between worshiper and leader
// with an alternating exchange of n messages, the first from the worshiper.
func (f *Factory) CreateConversation(worshiper, leader *models.User, n int) (*models.Conversation, error) {
	conv := &models.Conversation{WorshiperID: worshiper.ID, LeaderID: leader.ID}
	if f.opts.DryRun {
		conv.ID = f.assignID()
		return conv, nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		at := time.Now().UTC().Add(-time.Duration(n) * time.Minute)
		for i := 0; i < n; i++ {
			sender := worshiper
			if i%2 == 1 {
				sender = leader
			}
			msg := &models.Message{
				ConversationID: conv.ID,
				SenderID:       sender.ID,
				SenderRole:     sender.Role,
				ContentText:    gofakeit.Sentence(10),
				CreatedAt:      at.Add(time.Duration(i) * time.Minute),
			}
			if err := tx.Create(msg).Error; err != nil {
				return err
			}
			conv.UpdatedAt = msg.CreatedAt
		}
		return tx.Model(conv).UpdateColumn("updated_at", conv.UpdatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}
