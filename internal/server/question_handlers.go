package server

import (
	"github.com/gofiber/fiber/v2"
)

// AskQuestion handles POST /api/questions/:leaderId
func (s *Server) AskQuestion(c *fiber.Ctx) error {
	leaderID, err := s.parseID(c, "leaderId")
	if err != nil {
		return nil
	}
	text, err := parseText(c)
	if err != nil {
		return nil
	}
	q, err := s.questions.AskQuestion(c.UserContext(), actor(c), leaderID, text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// AnswerQuestion handles POST /api/questions/:id/answer
func (s *Server) AnswerQuestion(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	text, err := parseText(c)
	if err != nil {
		return nil
	}
	q, err := s.questions.AnswerQuestion(c.UserContext(), actor(c), id, text)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(q)
}

// QuestionInbox handles GET /api/questions/inbox
func (s *Server) QuestionInbox(c *fiber.Ctx) error {
	inbox, err := s.questions.ListLeaderInbox(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inbox)
}

// MyQuestions handles GET /api/questions/mine
func (s *Server) MyQuestions(c *fiber.Ctx) error {
	asked, err := s.questions.ListAskedQuestions(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(asked)
}
