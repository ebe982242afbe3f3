// Package handlers contains the HTTP route handler functions for the disc golf API.
//
// Each exported function follows the "handler factory" pattern: it takes its
// dependencies (the store, the live hub, config) and returns a fiber.Handler.
// This lets us inject the database without using global variables, and lets the
// tests build the same handlers over an in-memory database.
//
// Handlers never write error responses themselves. They return an *apperr.Error
// and the app-wide error handler (middleware.ErrorHandler) turns it into
// {"error": "..."} with the right status code.
package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/apperr"
)

const dateLayout = "2006-01-02"

// formatOptionalDate converts a *time.Time to a *string in "2006-01-02" format.
// Returns nil if the input is nil (preserving the nullable property in the JSON response).
func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

// parseOptionalDate parses an optional date string ("YYYY-MM-DD") into a *time.Time.
// Returns nil if the input string pointer is nil or empty.
// Returns a validation error naming field if the string is not a valid date.
func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, apperr.Validation(field, field+" must be in YYYY-MM-DD format")
	}
	return &t, nil
}

// parseBody decodes the JSON request body into dst. Field decoders may reject a value
// with their own validation error; any other failure is reported as a bad body.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperr.Validation("body", "invalid request body")
	}
	return nil
}

// parseID parses a required UUID from a path or body value.
func parseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperr.Required(field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(field, field+" must be a valid id")
	}
	return id, nil
}

// parseOptionalID parses a UUID that may be absent; nil and "" mean absent.
func parseOptionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := parseID(field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// pathID reads the ":id" route parameter.
func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	return parseID("id", c.Params("id"))
}

// optionalText trims s and turns an empty result into nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// looseFloat accepts a JSON number or a numeric string. Anything else (empty
// string, text, null, NaN) decodes to "no value" rather than failing the request,
// because web forms post coordinates as whatever the input box held.
type looseFloat struct {
	Value *float64
}

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	f.Value = nil
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var x float64
	switch t := v.(type) {
	case float64:
		x = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		x = p
	default:
		return nil
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	f.Value = &x
	return nil
}

// looseInt accepts a JSON integer or an integer string. Set reports whether the
// field held a usable number at all. Range checks are left to the caller.
type looseInt struct {
	Value int64
	Set   bool
}

// maxExactFloat is the largest integer a JSON number (a float64) holds exactly.
const maxExactFloat = 1 << 53

func (n *looseInt) UnmarshalJSON(b []byte) error {
	*n = looseInt{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) <= maxExactFloat {
			n.Value, n.Set = int64(t), true
		}
	case string:
		if p, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			n.Value, n.Set = p, true
		}
	}
	return nil
}

// companions is the with_friends field: either free text ("Anna, Per") or a list
// of names. Both decode to a trimmed list without empty entries.
type companions []string

func (cs *companions) UnmarshalJSON(b []byte) error {
	*cs = companions{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var names []string
	switch t := v.(type) {
	case string:
		names = strings.Split(t, ",")
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return apperr.Validation("with_friends", "with_friends must be text or a list of names")
			}
			names = append(names, s)
		}
	case nil:
	default:
		return apperr.Validation("with_friends", "with_friends must be text or a list of names")
	}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			*cs = append(*cs, name)
		}
	}
	return nil
}
