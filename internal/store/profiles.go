package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/trentd187/discgolf/internal/models"
)

// GetProfile loads the profile of a user.
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.with(ctx).First(&p, "id = ?", userID).Error; err != nil {
		return nil, classify(err, "profile")
	}
	return &p, nil
}

// UpsertProfile inserts p or, when a profile with p.ID exists, overwrites every field.
func (s *Store) UpsertProfile(ctx context.Context, p *models.Profile) error {
	// INSERT ... ON CONFLICT (id) DO UPDATE: one statement, no read-then-write race
	// between two saves from the same player.
	err := s.with(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"alias", "avatar_url", "home_course"}),
		}).
		Create(p).Error
	return classify(err, "profile")
}

// ListProfiles returns the id and alias of every player, ordered by alias.
func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.with(ctx).
		Select("id", "alias").
		Order("alias ASC").
		Find(&profiles).Error
	return profiles, classify(err, "profile")
}
