package server

import (
	"context"

	"shepherd/internal/models"
	"shepherd/internal/service"

	"github.com/gofiber/fiber/v2"
)

func parsePostInput(c *fiber.Ctx) (service.CreatePostInput, error) {
	var in service.CreatePostInput
	if err := c.BodyParser(&in); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return in, errResponseWritten
	}
	return in, nil
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Leaders only. A post without scheduled_at (or scheduled in the past) is published and fanned out to followers at once
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} service.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in, err := parsePostInput(c)
	if err != nil {
		return nil
	}
	post, err := s.posts.CreatePost(c.UserContext(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// PreviewPost handles POST /api/posts/preview
func (s *Server) PreviewPost(c *fiber.Ctx) error {
	in, err := parsePostInput(c)
	if err != nil {
		return nil
	}
	post, err := s.posts.PreviewPost(c.UserContext(), actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// ListMyPosts handles GET /api/posts/mine
func (s *Server) ListMyPosts(c *fiber.Ctx) error {
	posts, err := s.posts.ListLeaderPosts(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

type engagementToggle func(ctx context.Context, a models.Actor, postID uint) (*models.Post, error)

func (s *Server) toggleEngagement(c *fiber.Ctx, op engagementToggle) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := op(c.UserContext(), actor(c), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.toggleEngagement(c, s.engagement.Like)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.toggleEngagement(c, s.engagement.Unlike)
}

// SavePost handles POST /api/posts/:id/save
func (s *Server) SavePost(c *fiber.Ctx) error {
	return s.toggleEngagement(c, s.engagement.Save)
}

// UnsavePost handles DELETE /api/posts/:id/save
func (s *Server) UnsavePost(c *fiber.Ctx) error {
	return s.toggleEngagement(c, s.engagement.Unsave)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	text, err := parseText(c)
	if err != nil {
		return nil
	}
	comment, err := s.engagement.AddComment(c.UserContext(), actor(c), postID, text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments handles GET /api/posts/:id/comments
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.engagement.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}
