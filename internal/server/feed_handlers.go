package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ExploreFeed handles GET /api/feed/explore
// @Summary Explore feed
// @Description Every visible post, newest first
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.FeedPage
// @Router /feed/explore [get]
func (s *Server) ExploreFeed(c *fiber.Ctx) error {
	page := parsePagination(c)
	feed, err := s.feed.Explore(c.UserContext(), actor(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// FollowingFeed handles GET /api/feed/following
// @Summary Following feed
// @Description Visible posts from followed leaders, newest first
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.FeedPage
// @Router /feed/following [get]
func (s *Server) FollowingFeed(c *fiber.Ctx) error {
	page := parsePagination(c)
	feed, err := s.feed.Following(c.UserContext(), actor(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// DailyReflection handles GET /api/feed/daily-reflection
func (s *Server) DailyReflection(c *fiber.Ctx) error {
	reflection, err := s.feed.DailyReflection(c.UserContext(), time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reflection)
}
