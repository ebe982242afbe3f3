// Package policy is the single authorization policy consulted by every mutating handler.
//
// Rules:
//   - courses and competitions may be changed by their creator; rows created before
//     creators were recorded may be changed by any authenticated user
//   - scores may only be changed by the player they belong to
//   - anonymous callers may change nothing
package policy

import (
	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/apperr"
	"github.com/trentd187/discgolf/internal/models"
	"github.com/trentd187/discgolf/internal/session"
)

// CanEditCourse reports whether who may overwrite the course.
func CanEditCourse(who *session.Identity, c *models.Course) error {
	return creatorOnly(who, c.CreatedBy, "only the course creator can edit this course")
}

// CanDeleteCourse reports whether who may delete the course.
func CanDeleteCourse(who *session.Identity, c *models.Course) error {
	return creatorOnly(who, c.CreatedBy, "only the course creator can delete this course")
}

// CanEditCompetition reports whether who may change the competition or its course links.
func CanEditCompetition(who *session.Identity, comp *models.Competition) error {
	return creatorOnly(who, comp.CreatedBy, "only the competition creator can change this competition")
}

// CanEditScore reports whether who may update or delete the score.
func CanEditScore(who *session.Identity, s *models.Score) error {
	// nil means the request carried no valid session.
	if who == nil {
		return apperr.Unauthenticated()
	}
	if !who.Is(s.UserID) {
		return apperr.Forbidden("you can only change your own scores")
	}
	return nil
}

func creatorOnly(who *session.Identity, createdBy *uuid.UUID, msg string) error {
	if who == nil {
		return apperr.Unauthenticated()
	}
	// Rows from before created_by was recorded have no owner to compare against.
	if createdBy == nil {
		return nil
	}
	if !who.Is(*createdBy) {
		return apperr.Forbidden(msg)
	}
	return nil
}
