package service

import (
	"context"
	"testing"
	"time"

	"shepherd/internal/config"
	"shepherd/internal/database"
	"shepherd/internal/featureflags"
	"shepherd/internal/models"
	"shepherd/internal/notifications"
	"shepherd/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires every service against one in-memory sqlite database.
type testEnv struct {
	db     *gorm.DB
	engine *notifications.Engine

	follows       *FollowService
	engagement    *EngagementService
	questions     *QuestionService
	conversations *ConversationService
	posts         *PostService
	feed          *FeedService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithFlags(t, featureflags.NewManager(""))
}

func newTestEnvWithFlags(t *testing.T, flags *featureflags.Manager) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	users := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	engine := notifications.NewEngine(repository.NewNotificationRepository(db), followRepo, config.DefaultEngine)

	return &testEnv{
		db:            db,
		engine:        engine,
		follows:       NewFollowService(followRepo, users, postRepo, engine),
		engagement:    NewEngagementService(postRepo, repository.NewEngagementRepository(db), repository.NewCommentRepository(db), users, engine, flags),
		questions:     NewQuestionService(repository.NewQuestionRepository(db), followRepo, users, engine),
		conversations: NewConversationService(repository.NewConversationRepository(db), followRepo, users, engine),
		posts:         NewPostService(postRepo, users, engine),
		feed:          NewFeedService(postRepo, flags, config.DefaultEngine),
	}
}

func (e *testEnv) user(t *testing.T, name string, role models.Role) models.Actor {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return models.Actor{ID: u.ID, Role: role}
}

func (e *testEnv) follow(t *testing.T, w, l models.Actor) {
	t.Helper()
	_, err := e.follows.Follow(context.Background(), w, l.ID)
	require.NoError(t, err)
}

func (e *testEnv) publish(t *testing.T, leader models.Actor, text string) *PostView {
	t.Helper()
	view, err := e.posts.CreatePost(context.Background(), leader, CreatePostInput{ContentText: text})
	require.NoError(t, err)
	return view
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint, typ models.NotificationType) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, e.db.Where("user_id = ? AND type = ?", userID, typ).Order("id").Find(&out).Error)
	return out
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, models.IsCode(err, code), "expected %s, got %v", code, err)
}
