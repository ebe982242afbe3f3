// Package session carries the resolved caller identity through a request.
//
// The auth middleware resolves the token once and stores an *Identity in the
// request locals. Handlers read it with From and pass it explicitly to the
// policy and store layers, which never look at cookies or headers themselves.
package session

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// localsKey is the c.Locals key the identity is stored under.
const localsKey = "identity"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string // auth provider role claim, e.g. "authenticated"
}

// Set stores the identity on the request.
func Set(c *fiber.Ctx, id *Identity) {
	c.Locals(localsKey, id)
}

// From returns the identity stored on the request, or nil for anonymous callers.
func From(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(localsKey).(*Identity)
	return id
}

// Is reports whether the identity is the given user. A nil identity is nobody.
func (i *Identity) Is(userID uuid.UUID) bool {
	return i != nil && i.UserID == userID
}
