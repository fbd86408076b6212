package repository

import (
	"context"
	"testing"

	"shepherd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByPostOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	leader := createUser(t, db, "leader", models.RoleLeader)
	w := createUser(t, db, "w", models.RoleWorshiper)
	post := createPost(t, db, leader.ID, nil)
	otherPost := createPost(t, db, leader.ID, nil)

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.Comment{PostID: post.ID, UserID: w.ID, Content: text}))
	}
	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: otherPost.ID, UserID: leader.ID, Content: "elsewhere"}))

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "third", comments[2].Content)
	require.NotNil(t, comments[0].User)
	assert.Equal(t, "w", comments[0].User.Name)
}
