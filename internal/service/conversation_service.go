package service

import (
	"context"
	"log/slog"
	"time"

	"shepherd/internal/middleware"
	"shepherd/internal/models"
	"shepherd/internal/notifications"
	"shepherd/internal/repository"
	"shepherd/internal/validation"
)

// ConversationService handles one-on-one conversations between a worshiper
// and a leader.
type ConversationService struct {
	conversations repository.ConversationRepository
	follows       repository.FollowRepository
	users         repository.UserRepository
	notifier      Notifier
	now           func() time.Time
}

// ConversationDetail is a conversation with both participants and every
// message, oldest first.
type ConversationDetail struct {
	ID        uint               `json:"id"`
	Worshiper models.UserSummary `json:"worshiper"`
	Leader    models.UserSummary `json:"leader"`
	Messages  []models.Message   `json:"messages"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ConversationSummary is one row of a participant's conversation list.
type ConversationSummary struct {
	ID          uint               `json:"id"`
	Counterpart models.UserSummary `json:"counterpart"`
	LastMessage *models.Message    `json:"last_message"`
	UnreadCount int64              `json:"unread_count"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// NewConversationService returns a new ConversationService.
func NewConversationService(
	conversations repository.ConversationRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	notifier Notifier,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		follows:       follows,
		users:         users,
		notifier:      notifier,
		now:           utcNow,
	}
}

// SendFirstMessage opens (or reuses) the conversation between the worshiper
// and leaderID and appends the message.
func (s *ConversationService) SendFirstMessage(ctx context.Context, actor models.Actor, leaderID uint, text string) (*models.Message, error) {
	if !actor.IsWorshiper() {
		return nil, models.NewRoleViolationError("Only worshipers can start a conversation")
	}
	body, err := validation.Text("Message", text, validation.MessageMinLength, validation.MessageMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	leader, err := s.users.GetByID(ctx, leaderID)
	if err != nil {
		return nil, err
	}
	if !leader.IsLeader() {
		return nil, models.NewRoleViolationError("Conversations can only be started with leaders")
	}
	following, err := s.follows.Exists(ctx, actor.ID, leaderID)
	if err != nil {
		return nil, err
	}
	if !following {
		return nil, models.NewPermissionDeniedError("You must follow this leader to message them")
	}

	msg := &models.Message{SenderID: actor.ID, SenderRole: actor.Role, ContentText: body}
	conv, err := s.conversations.CreateWithFirstMessage(ctx, actor.ID, leaderID, msg)
	if err != nil {
		return nil, err
	}

	s.notifyRecipient(ctx, actor.ID, leaderID, conv.ID)
	return msg, nil
}

// SendMessage appends a message to an existing conversation the actor is part of.
func (s *ConversationService) SendMessage(ctx context.Context, actor models.Actor, conversationID uint, text string) (*models.Message, error) {
	body, err := validation.Text("Message", text, validation.MessageMinLength, validation.MessageMaxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(actor.ID) {
		return nil, models.NewPermissionDeniedError("You are not a participant in this conversation")
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       actor.ID,
		SenderRole:     actor.Role,
		ContentText:    body,
	}
	if err := s.conversations.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	recipient := conv.LeaderID
	if actor.ID == conv.LeaderID {
		recipient = conv.WorshiperID
	}
	s.notifyRecipient(ctx, actor.ID, recipient, conv.ID)
	return msg, nil
}

func (s *ConversationService) notifyRecipient(ctx context.Context, senderID, recipientID, conversationID uint) {
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "message sender unavailable for notification",
			slog.Uint64("user_id", uint64(senderID)),
			slog.String("error", err.Error()),
		)
	}
	notifyAfterCommit(ctx, s.notifier, recipientID, models.NotificationNewMessage,
		notifications.NewMessageMessage(displayName(sender)), models.ChatRef(conversationID))
}

// GetConversation returns the full conversation to one of its participants.
func (s *ConversationService) GetConversation(ctx context.Context, actor models.Actor, conversationID uint) (*ConversationDetail, error) {
	conv, err := s.conversations.GetWithMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(actor.ID) {
		return nil, models.NewPermissionDeniedError("You are not a participant in this conversation")
	}
	messages := conv.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	return &ConversationDetail{
		ID:        conv.ID,
		Worshiper: conv.Worshiper.Summary(),
		Leader:    conv.Leader.Summary(),
		Messages:  messages,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}, nil
}

// ListConversationsForLeader lists a leader's conversations, most recent activity first.
func (s *ConversationService) ListConversationsForLeader(ctx context.Context, actor models.Actor) ([]ConversationSummary, error) {
	if !actor.IsLeader() {
		return nil, models.NewRoleViolationError("Only leaders can list leader conversations")
	}
	return s.listConversations(ctx, actor.ID)
}

// ListConversationsForWorshiper lists a worshiper's conversations, most recent activity first.
func (s *ConversationService) ListConversationsForWorshiper(ctx context.Context, actor models.Actor) ([]ConversationSummary, error) {
	if !actor.IsWorshiper() {
		return nil, models.NewRoleViolationError("Only worshipers can list worshiper conversations")
	}
	return s.listConversations(ctx, actor.ID)
}

// ListConversations dispatches on the actor's role.
func (s *ConversationService) ListConversations(ctx context.Context, actor models.Actor) ([]ConversationSummary, error) {
	if actor.IsLeader() {
		return s.ListConversationsForLeader(ctx, actor)
	}
	return s.ListConversationsForWorshiper(ctx, actor)
}

func (s *ConversationService) listConversations(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	last, err := s.conversations.LastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	unread, err := s.conversations.UnreadCounts(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, ConversationSummary{
			ID:          c.ID,
			Counterpart: c.Counterpart(userID).Summary(),
			LastMessage: last[c.ID],
			UnreadCount: unread[c.ID],
			UpdatedAt:   c.UpdatedAt,
		})
	}
	return out, nil
}

// MarkConversationRead flips read receipts on the other participant's
// messages and returns how many changed.
func (s *ConversationService) MarkConversationRead(ctx context.Context, actor models.Actor, conversationID uint) (int64, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(actor.ID) {
		return 0, models.NewPermissionDeniedError("You are not a participant in this conversation")
	}
	return s.conversations.MarkRead(ctx, conversationID, actor.ID, s.now())
}
