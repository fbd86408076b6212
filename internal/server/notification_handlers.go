package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListNotifications handles GET /api/notifications?limit=&include_read=
// @Summary List notifications
// @Description Newest first. Unread only unless include_read=true
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 50, max 100)"
// @Param include_read query bool false "Include read notifications"
// @Success 200 {object} notifications.NotificationPage
// @Router /notifications [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	page, err := s.engine.ListNotifications(c.UserContext(), actor(c).ID,
		c.QueryInt("limit", 0), c.QueryBool("include_read", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.engine.MarkRead(c.UserContext(), id, actor(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"is_read": true})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.engine.MarkAllRead(c.UserContext(), actor(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "marked_count": updated})
}
