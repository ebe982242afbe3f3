package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/discgolf/internal/apperr"
	"github.com/trentd187/discgolf/internal/models"
	"github.com/trentd187/discgolf/internal/session"
	"github.com/trentd187/discgolf/internal/store"
)

// ProfileRequest is the JSON body for POST /api/v1/profile.
type ProfileRequest struct {
	Alias      string  `json:"alias"`       // Required display name
	AvatarURL  string  `json:"avatar_url"`  // Optional
	HomeCourse *string `json:"home_course"` // Optional course id; "" clears it
}

// GetCurrentProfile returns a handler for GET /api/v1/profile.
// An authenticated caller without a profile gets 404, not 401.
func GetCurrentProfile(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := session.From(c)
		if who == nil {
			return apperr.Unauthenticated()
		}
		p, err := st.GetProfile(c.UserContext(), who.UserID)
		if err != nil {
			return err
		}
		return c.JSON(toProfile(*p))
	}
}

// UpsertProfile returns a handler for POST /api/v1/profile.
// The caller's profile is created or overwritten as a whole: a field left out of
// the body is cleared, never merged with the stored value.
func UpsertProfile(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := session.From(c)
		if who == nil {
			return apperr.Unauthenticated()
		}

		var req ProfileRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		alias := strings.TrimSpace(req.Alias)
		if alias == "" {
			return apperr.Required("alias")
		}
		home, err := parseOptionalID("home_course", req.HomeCourse)
		if err != nil {
			return err
		}

		p := models.Profile{
			ID:         who.UserID,
			Alias:      alias,
			AvatarURL:  strings.TrimSpace(req.AvatarURL),
			HomeCourse: home,
		}
		if err := st.UpsertProfile(c.UserContext(), &p); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Profile updated", "profile": toProfile(p)})
	}
}

// ListProfiles returns a handler for GET /api/v1/profiles: id and alias of every
// player, ordered by alias.
func ListProfiles(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profiles, err := st.ListProfiles(c.UserContext())
		if err != nil {
			return err
		}
		out := make([]fiber.Map, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, fiber.Map{"id": p.ID.String(), "alias": p.Alias})
		}
		return c.JSON(out)
	}
}
