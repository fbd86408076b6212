package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shepherd/internal/models"
	"shepherd/internal/notifications"
	"shepherd/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPostService_PublishNotifiesEveryFollower(t *testing.T) {
	env := newTestEnv(t)
	l := env.user(t, "ruth", models.RoleLeader)
	followers := []models.Actor{
		env.user(t, "a", models.RoleWorshiper),
		env.user(t, "b", models.RoleWorshiper),
		env.user(t, "c", models.RoleWorshiper),
	}
	env.user(t, "bystander", models.RoleWorshiper)
	for _, f := range followers {
		env.follow(t, f, l)
	}

	post := env.publish(t, l, "Be still.")
	assert.Equal(t, models.PostStatusPublished, post.Status)

	var total int64
	require.NoError(t, env.db.Model(&models.Notification{}).Where("type = ?", models.NotificationNewPost).Count(&total).Error)
	assert.EqualValues(t, 3, total)

	for _, f := range followers {
		notes := env.notificationsFor(t, f.ID, models.NotificationNewPost)
		require.Len(t, notes, 1)
		assert.Equal(t, models.PostRef(post.ID), notes[0].Reference())
		assert.Equal(t, "ruth shared new spiritual content", notes[0].Message)
	}
}

func TestPostService_ScheduledPostPublishesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l := env.user(t, "ruth", models.RoleLeader)
	w := env.user(t, "walter", models.RoleWorshiper)
	env.follow(t, w, l)

	now := time.Now().UTC()
	at := now.Add(2 * time.Hour)
	view, err := env.posts.CreatePost(ctx, l, CreatePostInput{ContentText: "Tomorrow's word", ScheduledAt: &at})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, view.Status)
	assert.Empty(t, env.notificationsFor(t, w.ID, models.NotificationNewPost))

	report, err := env.posts.PublishDuePosts(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, report.Claimed)

	later := now.Add(3 * time.Hour)
	report, err = env.posts.PublishDuePosts(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Claimed)
	assert.Equal(t, 1, report.Notified)
	assert.Equal(t, []uint{view.ID}, report.PostIDs)

	report, err = env.posts.PublishDuePosts(ctx, later)
	require.NoError(t, err)
	assert.Zero(t, report.Claimed)

	assert.Len(t, env.notificationsFor(t, w.ID, models.NotificationNewPost), 1)

	mine, err := env.posts.ListLeaderPosts(ctx, l)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.PostStatusPublished, mine[0].Status)
}

func TestPostService_PastScheduleIsPublishedImmediately(t *testing.T) {
	env := newTestEnv(t)
	l := env.user(t, "ruth", models.RoleLeader)
	w := env.user(t, "walter", models.RoleWorshiper)
	env.follow(t, w, l)

	past := time.Now().Add(-time.Minute)
	view, err := env.posts.CreatePost(context.Background(), l, CreatePostInput{ContentText: "Already due", ScheduledAt: &past})
	require.NoError(t, err)
	assert.True(t, view.IsPublished)
	assert.Len(t, env.notificationsFor(t, w.ID, models.NotificationNewPost), 1)
}

func TestPostService_Validation(t *testing.T) {
	env := newTestEnv(t)
	l := env.user(t, "ruth", models.RoleLeader)
	w := env.user(t, "walter", models.RoleWorshiper)

	tests := []struct {
		name  string
		actor models.Actor
		in    CreatePostInput
		code  string
	}{
		{"worshiper", w, CreatePostInput{ContentText: "hi"}, models.CodeRoleViolation},
		{"empty", l, CreatePostInput{ContentText: " "}, models.CodeValidation},
		{"too long", l, CreatePostInput{ContentText: strings.Repeat("x", 5001)}, models.CodeValidation},
		{"bad tag", l, CreatePostInput{ContentText: "hi", Tag: "GOSSIP"}, models.CodeValidation},
		{"bad intent", l, CreatePostInput{ContentText: "hi", Intent: "SELLING"}, models.CodeValidation},
		{"bad media type", l, CreatePostInput{ContentText: "hi", MediaURL: "https://cdn.example.com/a.png", MediaType: "gif"}, models.CodeValidation},
		{"relative media url", l, CreatePostInput{ContentText: "hi", MediaURL: "/a.png", MediaType: "image"}, models.CodeValidation},
		{"media type without url", l, CreatePostInput{ContentText: "hi", MediaType: "video"}, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.posts.CreatePost(context.Background(), tt.actor, tt.in)
			requireCode(t, err, tt.code)
		})
	}
}

func TestPostService_PreviewWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	l := env.user(t, "ruth", models.RoleLeader)

	future := time.Now().Add(time.Hour)
	view, err := env.posts.PreviewPost(context.Background(), l, CreatePostInput{
		ContentText: "Preview me",
		Tag:         string(models.TagPrayer),
		MediaURL:    "https://cdn.example.com/v.mp4",
		MediaType:   "video",
		ScheduledAt: &future,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, view.Status)
	assert.Equal(t, models.TagPrayer, view.Tag)
	assert.Equal(t, models.IntentGuidance, view.Intent)
	assert.Zero(t, view.ID)

	var count int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

// postRepoStub overrides Create; every other method panics if reached.
type postRepoStub struct {
	repository.PostRepository
	createFn func(context.Context, *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error {
	return s.createFn(ctx, p)
}

func TestPostService_FanOutErrorDoesNotFailCreate(t *testing.T) {
	repo := &postRepoStub{createFn: func(_ context.Context, p *models.Post) error {
		p.ID = 77
		return nil
	}}
	users := &userRepoStub{users: map[uint]*models.User{5: {ID: 5, Name: "ruth", Role: models.RoleLeader}}}
	notifier := new(mockNotifier)
	notifier.On("FanOutToFollowers", 5, models.NotificationNewPost, "ruth shared new spiritual content", models.PostRef(77)).
		Return((*notifications.FanOutReport)(nil), errors.New("follower read failed"))

	svc := NewPostService(repo, users, notifier)
	view, err := svc.CreatePost(context.Background(), models.Actor{ID: 5, Role: models.RoleLeader}, CreatePostInput{ContentText: "hi"})
	require.NoError(t, err)
	assert.EqualValues(t, 77, view.ID)
	notifier.AssertExpectations(t)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
