package server

import (
	"github.com/gofiber/fiber/v2"
)

// SendFirstMessage handles POST /api/conversations/leaders/:leaderId/messages.
// It opens the worshiper's conversation with the leader, or appends to it.
func (s *Server) SendFirstMessage(c *fiber.Ctx) error {
	leaderID, err := s.parseID(c, "leaderId")
	if err != nil {
		return nil
	}
	text, err := parseText(c)
	if err != nil {
		return nil
	}
	msg, err := s.conversations.SendFirstMessage(c.UserContext(), actor(c), leaderID, text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// SendMessage handles POST /api/conversations/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	text, err := parseText(c)
	if err != nil {
		return nil
	}
	msg, err := s.conversations.SendMessage(c.UserContext(), actor(c), id, text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetConversation handles GET /api/conversations/:id
func (s *Server) GetConversation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	conv, err := s.conversations.GetConversation(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

// ListConversations handles GET /api/conversations
func (s *Server) ListConversations(c *fiber.Ctx) error {
	convs, err := s.conversations.ListConversations(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(convs)
}

// MarkConversationRead handles POST /api/conversations/:id/read
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	updated, err := s.conversations.MarkConversationRead(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "marked_count": updated})
}
