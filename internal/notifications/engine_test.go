package notifications

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"shepherd/internal/config"
	"shepherd/internal/database"
	"shepherd/internal/models"
	"shepherd/internal/observability"
	"shepherd/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

type followerStub struct {
	ids []uint
	err error
}

func (s followerStub) ListFollowerIDs(context.Context, uint) ([]uint, error) {
	return s.ids, s.err
}

// flakyNotificationRepo fails Create for the configured recipients.
type flakyNotificationRepo struct {
	repository.NotificationRepository
	failFor map[uint]bool
}

func (r *flakyNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if r.failFor[n.UserID] {
		return models.NewInternalError(errors.New("write timeout"))
	}
	return r.NotificationRepository.Create(ctx, n)
}

func TestEngine_FanOutReachesEveryFollower(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(repository.NewNotificationRepository(db), followerStub{ids: []uint{11, 12, 13}}, config.DefaultEngine)
	ctx := context.Background()

	report, err := engine.FanOutToFollowers(ctx, 1, models.NotificationNewPost, NewPostMessage("Pastor Ruth"), models.PostRef(9))
	require.NoError(t, err)
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 3, report.Recipients)
	assert.Equal(t, 3, report.Delivered)
	assert.Empty(t, report.Failures)

	for _, uid := range []uint{11, 12, 13} {
		page, err := engine.ListNotifications(ctx, uid, 0, true)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		n := page.Items[0]
		assert.Equal(t, models.NotificationNewPost, n.Type)
		assert.Equal(t, "Pastor Ruth shared new spiritual content", n.Message)
		assert.Equal(t, models.PostRef(9), n.Reference())
		assert.False(t, n.IsRead)
	}
}

func TestEngine_FanOutLogFields(t *testing.T) {
	var buf bytes.Buffer
	previous := observability.GlobalLogger
	observability.SetGlobalLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { observability.GlobalLogger = previous })

	db := setupTestDB(t)
	engine := NewEngine(repository.NewNotificationRepository(db), followerStub{ids: []uint{21, 22}}, config.DefaultEngine)
	_, err := engine.FanOutToFollowers(context.Background(), 1, models.NotificationNewPost, NewPostMessage("Ruth"), models.PostRef(4))
	require.NoError(t, err)

	kinds := map[string]int{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		line := scanner.Text()
		assert.LessOrEqual(t, strings.Count(line, `"type":`), 1, line)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, string(models.NotificationNewPost), entry["notification_type"], line)
		switch entry["msg"] {
		case "repository create":
			kinds["create"]++
			assert.Equal(t, "notifications", entry["table"])
		default:
			kinds[entry["type"].(string)]++
		}
	}
	assert.Equal(t, map[string]int{"batch_start": 1, "create": 2, "batch_end": 1}, kinds)
}

func TestEngine_FanOutIsolatesFailures(t *testing.T) {
	db := setupTestDB(t)
	repo := &flakyNotificationRepo{
		NotificationRepository: repository.NewNotificationRepository(db),
		failFor:                map[uint]bool{12: true},
	}
	engine := NewEngine(repo, followerStub{ids: []uint{11, 12, 13}}, config.DefaultEngine)
	ctx := context.Background()

	report, err := engine.FanOutToFollowers(ctx, 1, models.NotificationNewPost, "x", models.PostRef(1))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Delivered)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, uint(12), report.Failures[0].RecipientID)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestEngine_FanOutFollowerReadError(t *testing.T) {
	db := setupTestDB(t)
	boom := errors.New("replica down")
	engine := NewEngine(repository.NewNotificationRepository(db), followerStub{err: boom}, config.DefaultEngine)

	report, err := engine.FanOutToFollowers(context.Background(), 1, models.NotificationNewPost, "x", models.PostRef(1))
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, report)
	assert.Zero(t, report.Delivered)
}

func TestEngine_FanOutWithoutFollowers(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(repository.NewNotificationRepository(db), followerStub{}, config.DefaultEngine)

	report, err := engine.FanOutToFollowers(context.Background(), 1, models.NotificationNewPost, "x", models.PostRef(1))
	require.NoError(t, err)
	assert.Zero(t, report.Recipients)
	assert.Zero(t, report.Delivered)
}

func TestEngine_ListNotificationsIncludeRead(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(repository.NewNotificationRepository(db), followerStub{}, config.DefaultEngine)
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 3; i++ {
		n, err := engine.Notify(ctx, 5, models.NotificationNewFollower, NewFollowerMessage("Walter"), models.NoReference())
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	require.NoError(t, engine.MarkRead(ctx, ids[0], 5))

	unread, err := engine.ListNotifications(ctx, 5, 0, false)
	require.NoError(t, err)
	assert.Len(t, unread.Items, 2)
	assert.EqualValues(t, 3, unread.Total)
	assert.EqualValues(t, 2, unread.UnreadCount)
	assert.Equal(t, ids[2], unread.Items[0].ID)
	assert.True(t, unread.Items[0].Reference().IsZero())

	all, err := engine.ListNotifications(ctx, 5, 0, true)
	require.NoError(t, err)
	assert.Len(t, all.Items, 3)
	assert.EqualValues(t, 2, all.UnreadCount)

	empty, err := engine.ListNotifications(ctx, 99, 0, true)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestEngine_ListNotificationsClampsLimit(t *testing.T) {
	db := setupTestDB(t)
	limits := config.Engine{NotificationDefaultLimit: 2, NotificationMaxLimit: 3}
	engine := NewEngine(repository.NewNotificationRepository(db), followerStub{}, limits)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := engine.Notify(ctx, 1, models.NotificationNewPost, "x", models.PostRef(uint(i+1)))
		require.NoError(t, err)
	}

	page, err := engine.ListNotifications(ctx, 1, 0, true)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = engine.ListNotifications(ctx, 1, 500, true)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.EqualValues(t, 5, page.Total)
}

func TestEngine_MarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(repository.NewNotificationRepository(db), followerStub{}, config.DefaultEngine)
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 7; i++ {
		n, err := engine.Notify(ctx, 1, models.NotificationNewMessage, NewMessageMessage("Ruth"), models.ChatRef(3))
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	for _, id := range ids[:2] {
		require.NoError(t, engine.MarkRead(ctx, id, 1))
	}

	flipped, err := engine.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, flipped)

	page, err := engine.ListNotifications(ctx, 1, 0, false)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.EqualValues(t, 0, page.UnreadCount)
}

func TestEngine_MarkReadForeignNotification(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(repository.NewNotificationRepository(db), followerStub{}, config.DefaultEngine)
	ctx := context.Background()

	n, err := engine.Notify(ctx, 1, models.NotificationQuestionAnswered, QuestionAnsweredMessage("Ruth"), models.QuestionRef(4))
	require.NoError(t, err)

	err = engine.MarkRead(ctx, n.ID, 2)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Walter started following you", NewFollowerMessage("Walter"))
	assert.Equal(t, "Ruth sent you a message", NewMessageMessage("Ruth"))
	assert.Equal(t, "Ruth answered your question", QuestionAnsweredMessage("Ruth"))
	assert.Equal(t, "Walter commented on your post", NewCommentMessage("Walter"))
}
