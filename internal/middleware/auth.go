// Package middleware contains HTTP middleware functions for the disc golf API.
// Everything here runs before the route handlers: resolving who the caller is,
// guarding routes that need a signed-in user, logging each request and turning
// returned errors into JSON responses.
package middleware

import (
	"errors"
	"strings"

	// fiber is the HTTP framework; fiber.Handler is the function signature for middleware
	"github.com/gofiber/fiber/v2"
	// jwt parses and verifies the session token issued by the auth provider
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trentd187/discgolf/internal/apperr"
	"github.com/trentd187/discgolf/internal/config"
	"github.com/trentd187/discgolf/internal/session"
)

// Claims is the payload of an auth provider access token.
// Subject is the user's UUID; Role is "authenticated" for signed-in users and
// "anon" for the public key the frontend ships with.
type Claims struct {
	jwt.RegisteredClaims        // Subject (user id), ExpiresAt, IssuedAt, ...
	Email                string `json:"email"`
	Role                 string `json:"role"`
}

// anonRole is the role claim carried by tokens that identify nobody.
const anonRole = "anon"

// Session returns a middleware that resolves the caller's identity once per request.
//
// The token is read from the "Authorization: Bearer <token>" header, or failing that
// from the session cookie the web client sets. It must be an HS256 token signed with
// the configured secret. A valid token stores a *session.Identity in the request;
// a missing or invalid one leaves the request anonymous. Session never rejects a
// request itself: routes that need a user add RequireAuth.
func Session(cfg *config.Config, log *zap.Logger) fiber.Handler {
	secret := []byte(cfg.JWTSecret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		raw := tokenFrom(c, cfg.SessionCookie)
		if raw == "" {
			return c.Next()
		}

		id, err := identityFromToken(parser, secret, raw)
		if err != nil {
			log.Debug("ignoring session token", zap.String("path", c.Path()), zap.Error(err))
			return c.Next()
		}
		session.Set(c, id)
		return c.Next()
	}
}

// tokenFrom extracts the raw token from the Authorization header or the session cookie.
func tokenFrom(c *fiber.Ctx, cookie string) string {
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie == "" {
		return ""
	}
	return c.Cookies(cookie)
}

func identityFromToken(parser *jwt.Parser, secret []byte, raw string) (*session.Identity, error) {
	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Role == anonRole {
		return nil, errors.New("anonymous token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.New("token subject is not a user id")
	}
	return &session.Identity{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

// RequireAuth rejects requests that Session could not attach an identity to.
// It must be used AFTER Session.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if session.From(c) == nil {
			return apperr.Unauthenticated()
		}
		return c.Next()
	}
}
