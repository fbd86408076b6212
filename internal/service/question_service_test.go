package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"shepherd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionService_AskRequiresFollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)

	_, err := env.questions.AskQuestion(ctx, w, l.ID, "How should I start praying?")
	requireCode(t, err, models.CodePermissionDenied)

	env.follow(t, w, l)
	q, err := env.questions.AskQuestion(ctx, w, l.ID, "How should I start praying?")
	require.NoError(t, err)
	assert.Nil(t, q.AnswerText)
	require.NotNil(t, q.Leader)
	assert.Equal(t, "ruth", q.Leader.Name)
}

func TestQuestionService_AskRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	w2 := env.user(t, "wanda", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)

	tests := []struct {
		name   string
		actor  models.Actor
		target uint
		text   string
		code   string
	}{
		{"leader asks", l, l.ID, "A perfectly long question", models.CodeRoleViolation},
		{"too short", w, l.ID, "Why?", models.CodeValidation},
		{"too long", w, l.ID, strings.Repeat("q", 1001), models.CodeValidation},
		{"unknown leader", w, 9999, "A perfectly long question", models.CodeNotFound},
		{"worshiper target", w, w2.ID, "A perfectly long question", models.CodeRoleViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.questions.AskQuestion(ctx, tt.actor, tt.target, tt.text)
			requireCode(t, err, tt.code)
		})
	}
}

func TestQuestionService_AnswerOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	env.follow(t, w, l)

	q, err := env.questions.AskQuestion(ctx, w, l.ID, "How should I start praying?")
	require.NoError(t, err)

	first := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	env.questions.now = fixedClock(first)
	answered, err := env.questions.AnswerQuestion(ctx, l, q.ID, "Begin with thanks.")
	require.NoError(t, err)
	require.NotNil(t, answered.AnswerText)
	assert.Equal(t, "Begin with thanks.", *answered.AnswerText)

	env.questions.now = fixedClock(first.Add(time.Hour))
	_, err = env.questions.AnswerQuestion(ctx, l, q.ID, "Something else")
	requireCode(t, err, models.CodeConflict)

	var stored models.Question
	require.NoError(t, env.db.First(&stored, q.ID).Error)
	require.NotNil(t, stored.AnswerText)
	assert.Equal(t, "Begin with thanks.", *stored.AnswerText)
	require.NotNil(t, stored.AnsweredAt)
	assert.True(t, stored.AnsweredAt.Equal(first))

	notes := env.notificationsFor(t, w.ID, models.NotificationQuestionAnswered)
	require.Len(t, notes, 1)
	assert.Equal(t, "ruth answered your question", notes[0].Message)
	assert.Equal(t, models.QuestionRef(q.ID), notes[0].Reference())
}

func TestQuestionService_AnswerRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	other := env.user(t, "boaz", models.RoleLeader)
	env.follow(t, w, l)
	q, err := env.questions.AskQuestion(ctx, w, l.ID, "How should I start praying?")
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor models.Actor
		id    uint
		text  string
		code  string
	}{
		{"worshiper answers", w, q.ID, "Answer", models.CodeRoleViolation},
		{"empty answer", l, q.ID, "  ", models.CodeValidation},
		{"too long", l, q.ID, strings.Repeat("a", 2001), models.CodeValidation},
		{"missing question", l, 9999, "Answer", models.CodeNotFound},
		{"another leader's question", other, q.ID, "Answer", models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.questions.AnswerQuestion(ctx, tt.actor, tt.id, tt.text)
			requireCode(t, err, tt.code)
		})
	}
}

func TestQuestionService_InboxAndAsked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	w := env.user(t, "walter", models.RoleWorshiper)
	l := env.user(t, "ruth", models.RoleLeader)
	env.follow(t, w, l)

	q1, err := env.questions.AskQuestion(ctx, w, l.ID, "First question here")
	require.NoError(t, err)
	_, err = env.questions.AskQuestion(ctx, w, l.ID, "Second question here")
	require.NoError(t, err)
	_, err = env.questions.AnswerQuestion(ctx, l, q1.ID, "Answered")
	require.NoError(t, err)

	inbox, err := env.questions.ListLeaderInbox(ctx, l)
	require.NoError(t, err)
	require.Len(t, inbox.Pending, 1)
	require.Len(t, inbox.Answered, 1)
	assert.Equal(t, "Second question here", inbox.Pending[0].QuestionText)
	assert.Equal(t, q1.ID, inbox.Answered[0].ID)
	require.NotNil(t, inbox.Pending[0].Worshiper)

	asked, err := env.questions.ListAskedQuestions(ctx, w)
	require.NoError(t, err)
	require.Len(t, asked, 2)
	assert.Equal(t, "Second question here", asked[0].QuestionText)

	_, err = env.questions.ListLeaderInbox(ctx, w)
	requireCode(t, err, models.CodeRoleViolation)
	_, err = env.questions.ListAskedQuestions(ctx, l)
	requireCode(t, err, models.CodeRoleViolation)
}
