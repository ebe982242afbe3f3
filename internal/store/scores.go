package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/discgolf/internal/models"
)

// scoreEditable lists the columns a score update overwrites. The owner and the
// recording timestamp never change.
var scoreEditable = []string{"CourseID", "Score", "DatePlayed", "WithFriends", "CompetitionID"}

// AddScore inserts s. The caller has already bound s.UserID to the authenticated player.
func (s *Store) AddScore(ctx context.Context, sc *models.Score) error {
	// Score embeds Course, Profile and Competition for reads. Without Omit, GORM
	// would try to insert those (mostly empty) structs as well.
	return classify(s.with(ctx).Omit(clause.Associations).Create(sc).Error, "score")
}

// GetScore loads a single score with its course and player.
func (s *Store) GetScore(ctx context.Context, id uuid.UUID) (*models.Score, error) {
	var sc models.Score
	err := s.with(ctx).
		Preload("Course").
		Preload("Profile").
		First(&sc, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, "score")
	}
	return &sc, nil
}

// UpdateScore overwrites the editable columns of the score with sc.ID, but only if
// it belongs to owner. A score that exists but belongs to someone else is reported
// as not found here; ownership is checked by the policy before this is called.
func (s *Store) UpdateScore(ctx context.Context, owner uuid.UUID, sc *models.Score) error {
	// The user_id condition repeats the policy check inside the statement itself,
	// so a mistake in a handler still cannot touch another player's round.
	res := s.with(ctx).
		Model(&models.Score{}).
		Where("id = ? AND user_id = ?", sc.ID, owner).
		Select(scoreEditable).
		Updates(sc)
	if res.Error != nil {
		return classify(res.Error, "score")
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "score")
	}
	return nil
}

// DeleteScore removes the owner's score.
func (s *Store) DeleteScore(ctx context.Context, owner, id uuid.UUID) error {
	res := s.with(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&models.Score{})
	if res.Error != nil {
		return classify(res.Error, "score")
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "score")
	}
	return nil
}

// ScoresForCourse returns every score on a course with course name and player alias.
// Rows come back unordered; callers sort.
func (s *Store) ScoresForCourse(ctx context.Context, courseID uuid.UUID) ([]models.Score, error) {
	var scores []models.Score
	// Preload runs one extra query per association (not one per row) and only
	// fetches the columns the listing shows.
	err := s.with(ctx).
		Preload("Course", selectCourseName).
		Preload("Profile", selectAlias).
		Where("course_id = ?", courseID).
		Find(&scores).Error
	return scores, classify(err, "score")
}

// AllScores returns every score, most recently played first, with course name,
// player alias and competition title.
func (s *Store) AllScores(ctx context.Context) ([]models.Score, error) {
	var scores []models.Score
	err := s.with(ctx).
		Preload("Course", selectCourseName).
		Preload("Profile", selectAlias).
		Preload("Competition", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title") }).
		Order("date_played DESC").
		Find(&scores).Error
	return scores, classify(err, "score")
}

// TopScores returns the n lowest scores on a course.
func (s *Store) TopScores(ctx context.Context, courseID uuid.UUID, n int) ([]models.Score, error) {
	var scores []models.Score
	err := s.with(ctx).
		Preload("Profile", selectAlias).
		Where("course_id = ?", courseID).
		Order("score ASC").
		Order("created_at ASC"). // Ties go to whoever got there first
		Limit(n).
		Find(&scores).Error
	return scores, classify(err, "score")
}

// LatestScores returns the n most recently recorded scores.
func (s *Store) LatestScores(ctx context.Context, n int) ([]models.Score, error) {
	var scores []models.Score
	err := s.with(ctx).
		Preload("Course", selectCourseName).
		Preload("Profile", selectAlias).
		Order("created_at DESC").
		Limit(n).
		Find(&scores).Error
	return scores, classify(err, "score")
}

// CompetitionScores returns the scores tagged with a competition in recording order,
// with course name and player alias.
func (s *Store) CompetitionScores(ctx context.Context, competitionID uuid.UUID) ([]models.Score, error) {
	var scores []models.Score
	err := s.with(ctx).
		Preload("Course", selectCourseName).
		Preload("Profile", selectAlias).
		Where("competition_id = ?", competitionID).
		Order("created_at ASC").
		Find(&scores).Error
	return scores, classify(err, "score")
}

// ScoresWithAlias returns every score with the player alias, for in-memory reductions
// such as the latest score per course.
func (s *Store) ScoresWithAlias(ctx context.Context) ([]models.Score, error) {
	var scores []models.Score
	err := s.with(ctx).
		Select("id", "score", "course_id", "user_id", "date_played", "created_at").
		Preload("Profile", selectAlias).
		Find(&scores).Error
	return scores, classify(err, "score")
}

func selectCourseName(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }

func selectAlias(db *gorm.DB) *gorm.DB { return db.Select("id", "alias") }
