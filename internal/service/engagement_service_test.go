package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"shepherd/internal/featureflags"
	"shepherd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementService_LikeUnlikeLike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	post := env.publish(t, l, "Peace be with you.")

	p, err := env.engagement.Like(ctx, w, post.ID)
	require.NoError(t, err)
	assert.True(t, p.IsLiked)
	assert.Equal(t, 1, p.LikesCount)

	p, err = env.engagement.Like(ctx, w, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.LikesCount, "liking twice keeps one row")

	p, err = env.engagement.Unlike(ctx, w, post.ID)
	require.NoError(t, err)
	assert.False(t, p.IsLiked)

	_, err = env.engagement.Unlike(ctx, w, post.ID)
	require.NoError(t, err, "clearing an absent like succeeds")

	p, err = env.engagement.Like(ctx, w, post.ID)
	require.NoError(t, err)
	assert.True(t, p.IsLiked)

	var rows int64
	require.NoError(t, env.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", post.ID, w.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestEngagementService_SaveUnsave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	post := env.publish(t, l, "Peace be with you.")

	p, err := env.engagement.Save(ctx, w, post.ID)
	require.NoError(t, err)
	assert.True(t, p.IsSaved)
	assert.Equal(t, 1, p.SavesCount)
	assert.False(t, p.IsLiked)

	p, err = env.engagement.Unsave(ctx, w, post.ID)
	require.NoError(t, err)
	assert.False(t, p.IsSaved)
	assert.Equal(t, 0, p.SavesCount)
}

func TestEngagementService_Rules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	post := env.publish(t, l, "Peace be with you.")

	future := time.Now().Add(48 * time.Hour)
	scheduled, err := env.posts.CreatePost(ctx, l, CreatePostInput{ContentText: "Coming soon", ScheduledAt: &future})
	require.NoError(t, err)

	_, err = env.engagement.Like(ctx, l, post.ID)
	requireCode(t, err, models.CodeRoleViolation)

	_, err = env.engagement.Save(ctx, l, post.ID)
	requireCode(t, err, models.CodeRoleViolation)

	_, err = env.engagement.Like(ctx, w, 9999)
	requireCode(t, err, models.CodeNotFound)

	_, err = env.engagement.Like(ctx, w, scheduled.ID)
	requireCode(t, err, models.CodeNotFound)
}

func TestEngagementService_AddComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	post := env.publish(t, l, "Peace be with you.")

	c, err := env.engagement.AddComment(ctx, w, post.ID, "  Amen  ")
	require.NoError(t, err)
	assert.Equal(t, "Amen", c.Content)
	assert.Equal(t, "walter", c.Author.Name)

	notes := env.notificationsFor(t, l.ID, models.NotificationNewComment)
	require.Len(t, notes, 1)
	assert.Equal(t, "walter commented on your post", notes[0].Message)
	assert.Equal(t, models.PostRef(post.ID), notes[0].Reference())

	// The leader commenting on their own post is not notified.
	_, err = env.engagement.AddComment(ctx, l, post.ID, "Thank you all")
	require.NoError(t, err)
	assert.Len(t, env.notificationsFor(t, l.ID, models.NotificationNewComment), 1)

	comments, err := env.engagement.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Amen", comments[0].Content)
	assert.Equal(t, models.RoleLeader, comments[1].Author.Role)
}

func TestEngagementService_CommentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	post := env.publish(t, l, "Peace be with you.")

	tests := []struct {
		name   string
		postID uint
		text   string
		code   string
	}{
		{"empty", post.ID, "   ", models.CodeValidation},
		{"too long", post.ID, strings.Repeat("a", 1001), models.CodeValidation},
		{"missing post", 9999, "Amen", models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engagement.AddComment(ctx, w, tt.postID, tt.text)
			requireCode(t, err, tt.code)
		})
	}

	// 1000 multi-byte runes are within bounds.
	_, err := env.engagement.AddComment(ctx, w, post.ID, strings.Repeat("é", 1000))
	require.NoError(t, err)

	_, err = env.engagement.ListComments(ctx, 9999)
	requireCode(t, err, models.CodeNotFound)
}

func TestEngagementService_CommentNotificationsFlagOff(t *testing.T) {
	env := newTestEnvWithFlags(t, featureflags.NewManager("comment_notifications=off"))
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	post := env.publish(t, l, "Peace be with you.")

	_, err := env.engagement.AddComment(ctx, w, post.ID, "Amen")
	require.NoError(t, err)
	assert.Empty(t, env.notificationsFor(t, l.ID, models.NotificationNewComment))
}
