package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListLeaders handles GET /api/leaders
// @Summary List leaders
// @Description Every leader, flagged with whether the caller follows them
// @Tags leaders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.LeaderListing
// @Failure 401 {object} models.ErrorResponse
// @Router /leaders [get]
func (s *Server) ListLeaders(c *fiber.Ctx) error {
	leaders, err := s.follows.ListLeaders(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(leaders)
}

// GetLeaderProfile handles GET /api/leaders/:id
func (s *Server) GetLeaderProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.follows.GetLeaderProfile(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// Follow handles POST /api/follows/:leaderId
// @Summary Follow a leader
// @Description Idempotent; the leader is notified only the first time
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param leaderId path int true "Leader ID"
// @Success 201 {object} object{following=bool,created=bool}
// @Success 200 {object} object{following=bool,created=bool}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /follows/{leaderId} [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	leaderID, err := s.parseID(c, "leaderId")
	if err != nil {
		return nil
	}
	created, err := s.follows.Follow(c.UserContext(), actor(c), leaderID)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"following": true, "created": created})
}

// Unfollow handles DELETE /api/follows/:leaderId
func (s *Server) Unfollow(c *fiber.Ctx) error {
	leaderID, err := s.parseID(c, "leaderId")
	if err != nil {
		return nil
	}
	if err := s.follows.Unfollow(c.UserContext(), actor(c), leaderID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

// ListFollowing handles GET /api/follows/following
func (s *Server) ListFollowing(c *fiber.Ctx) error {
	following, err := s.follows.ListFollowing(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(following)
}

// ListFollowers handles GET /api/follows/followers
func (s *Server) ListFollowers(c *fiber.Ctx) error {
	followers, err := s.follows.ListFollowers(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(followers)
}
