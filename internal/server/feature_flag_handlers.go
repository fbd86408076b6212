package server

import (
	"shepherd/internal/featureflags"

	"github.com/gofiber/fiber/v2"
)

// FlagState is one flag as configured and as evaluated for a user.
type FlagState struct {
	Name       string `json:"name"`
	Configured string `json:"configured,omitempty"`
	Default    string `json:"default,omitempty"`
	Enabled    bool   `json:"enabled"`
}

// GetFeatureFlags lists every known or configured flag. Rollout percentages
// are evaluated for ?user_id=, defaulting to the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := actor(c).ID
	if q := c.QueryInt("user_id", 0); q > 0 {
		userID = uint(q)
	}

	flags := s.featureFlags
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	raw := flags.Raw()
	states := make([]FlagState, 0, len(raw))
	for _, name := range flags.Names() {
		states = append(states, FlagState{
			Name:       name,
			Configured: raw[name],
			Default:    featureflags.Defaults[name],
			Enabled:    flags.Enabled(name, userID),
		})
	}
	return c.JSON(fiber.Map{"user_id": userID, "flags": states})
}
