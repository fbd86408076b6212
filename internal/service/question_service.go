package service

import (
	"context"
	"time"

	"shepherd/internal/models"
	"shepherd/internal/notifications"
	"shepherd/internal/repository"
	"shepherd/internal/validation"
)

// QuestionService handles worshiper questions and leader answers.
type QuestionService struct {
	questions repository.QuestionRepository
	follows   repository.FollowRepository
	users     repository.UserRepository
	notifier  Notifier
	now       func() time.Time
}

// QuestionView is a question with public participant summaries.
type QuestionView struct {
	ID           uint                `json:"id"`
	QuestionText string              `json:"question_text"`
	AnswerText   *string             `json:"answer_text,omitempty"`
	AnsweredAt   *time.Time          `json:"answered_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	Worshiper    *models.UserSummary `json:"worshiper,omitempty"`
	Leader       *models.UserSummary `json:"leader,omitempty"`
}

// LeaderInbox splits a leader's questions by state, each newest first.
type LeaderInbox struct {
	Pending  []QuestionView `json:"pending"`
	Answered []QuestionView `json:"answered"`
}

func newQuestionView(q *models.Question) QuestionView {
	return QuestionView{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		AnswerText:   q.AnswerText,
		AnsweredAt:   q.AnsweredAt,
		CreatedAt:    q.CreatedAt,
		Worshiper:    summaryPtr(q.Worshiper),
		Leader:       summaryPtr(q.Leader),
	}
}

// NewQuestionService returns a new QuestionService.
func NewQuestionService(
	questions repository.QuestionRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	notifier Notifier,
) *QuestionService {
	return &QuestionService{
		questions: questions,
		follows:   follows,
		users:     users,
		notifier:  notifier,
		now:       utcNow,
	}
}

// AskQuestion records a question from a worshiper to a leader they follow.
func (s *QuestionService) AskQuestion(ctx context.Context, actor models.Actor, leaderID uint, text string) (*QuestionView, error) {
	if !actor.IsWorshiper() {
		return nil, models.NewRoleViolationError("Only worshipers can ask questions")
	}
	body, err := validation.Text("Question", text, validation.QuestionMinLength, validation.QuestionMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	leader, err := s.users.GetByID(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	if !leader.IsLeader() {
		return nil, models.NewRoleViolationError("Questions can only be asked to leaders")
	}
	following, err := s.follows.Exists(ctx, actor.ID, leaderID)
	if err != nil {
		return nil, err
	}
	if !following {
		return nil, models.NewPermissionDeniedError("You must follow this leader to ask a question")
	}

	q := &models.Question{WorshiperID: actor.ID, LeaderID: leaderID, QuestionText: body}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	q.Leader = leader
	view := newQuestionView(q)
	return &view, nil
}

// AnswerQuestion sets the answer once. A second answer is a conflict.
func (s *QuestionService) AnswerQuestion(ctx context.Context, actor models.Actor, questionID uint, text string) (*QuestionView, error) {
	if !actor.IsLeader() {
		return nil, models.NewRoleViolationError("Only leaders can answer questions")
	}
	answer, err := validation.Text("Answer", text, validation.AnswerMinLength, validation.AnswerMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.LeaderID != actor.ID {
		return nil, models.NewNotFoundError("Question", questionID)
	}
	if q.IsAnswered() {
		return nil, models.NewConflictError("Question has already been answered")
	}

	at := s.now()
	won, err := s.questions.Answer(ctx, questionID, actor.ID, answer, at)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, models.NewConflictError("Question has already been answered")
	}
	q.AnswerText = &answer
	q.AnsweredAt = &at

	notifyAfterCommit(ctx, s.notifier, q.WorshiperID, models.NotificationQuestionAnswered,
		notifications.QuestionAnsweredMessage(displayName(q.Leader)), models.QuestionRef(q.ID))

	view := newQuestionView(q)
	return &view, nil
}

// ListLeaderInbox returns the leader's pending and answered questions.
func (s *QuestionService) ListLeaderInbox(ctx context.Context, actor models.Actor) (*LeaderInbox, error) {
	if !actor.IsLeader() {
		return nil, models.NewRoleViolationError("Only leaders have a question inbox")
	}
	questions, err := s.questions.ListByLeader(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	inbox := &LeaderInbox{Pending: []QuestionView{}, Answered: []QuestionView{}}
	for _, q := range questions {
		if q.IsAnswered() {
			inbox.Answered = append(inbox.Answered, newQuestionView(q))
		} else {
			inbox.Pending = append(inbox.Pending, newQuestionView(q))
		}
	}
	return inbox, nil
}

// ListAskedQuestions returns the worshiper's questions, newest first.
func (s *QuestionService) ListAskedQuestions(ctx context.Context, actor models.Actor) ([]QuestionView, error) {
	if !actor.IsWorshiper() {
		return nil, models.NewRoleViolationError("Only worshipers ask questions")
	}
	questions, err := s.questions.ListByWorshiper(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		out = append(out, newQuestionView(q))
	}
	return out, nil
}
