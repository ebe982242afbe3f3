package policy

import (
	"testing"

	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/apperr"
	"github.com/trentd187/discgolf/internal/models"
	"github.com/trentd187/discgolf/internal/session"
)

func TestCanEditScore(t *testing.T) {
	owner := uuid.New()
	score := &models.Score{UserID: owner}

	if err := CanEditScore(&session.Identity{UserID: owner}, score); err != nil {
		t.Errorf("owner rejected: %v", err)
	}
	err := CanEditScore(&session.Identity{UserID: uuid.New()}, score)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("non-owner: got %v, want forbidden", err)
	}
	err = CanEditScore(nil, score)
	if !apperr.Is(err, apperr.KindUnauthenticated) {
		t.Errorf("anonymous: got %v, want unauthenticated", err)
	}
}

func TestCanEditCourse(t *testing.T) {
	creator := uuid.New()
	other := &session.Identity{UserID: uuid.New()}

	tests := []struct {
		name   string
		who    *session.Identity
		course *models.Course
		want   apperr.Kind
	}{
		{"creator", &session.Identity{UserID: creator}, &models.Course{CreatedBy: &creator}, apperr.KindUnknown},
		{"other user", other, &models.Course{CreatedBy: &creator}, apperr.KindForbidden},
		{"legacy row without creator", other, &models.Course{}, apperr.KindUnknown},
		{"anonymous", nil, &models.Course{}, apperr.KindUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, check := range []func(*session.Identity, *models.Course) error{CanEditCourse, CanDeleteCourse} {
				err := check(tt.who, tt.course)
				if tt.want == apperr.KindUnknown {
					if err != nil {
						t.Errorf("unexpected error: %v", err)
					}
					continue
				}
				if !apperr.Is(err, tt.want) {
					t.Errorf("got %v, want kind %v", err, tt.want)
				}
			}
		})
	}
}

func TestCanEditCompetition(t *testing.T) {
	creator := uuid.New()
	comp := &models.Competition{CreatedBy: &creator}

	if err := CanEditCompetition(&session.Identity{UserID: creator}, comp); err != nil {
		t.Errorf("creator rejected: %v", err)
	}
	if err := CanEditCompetition(&session.Identity{UserID: uuid.New()}, comp); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("other user: got %v, want forbidden", err)
	}
}
