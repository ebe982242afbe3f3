package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/discgolf/internal/models"
)

// CreateCompetition inserts comp and links courseIDs to it in one transaction.
// If any link fails the competition row is rolled back too, so a competition never
// exists with only part of the requested courses.
func (s *Store) CreateCompetition(ctx context.Context, comp *models.Competition, courseIDs []uuid.UUID) error {
	// db.Transaction commits when the function returns nil and rolls back on any error.
	// Every statement inside must use tx, not s.db, to be part of the transaction.
	err := s.with(ctx).Transaction(func(tx *gorm.DB) error {
		// Links are inserted explicitly below, so GORM must not also save comp.Links.
		if err := tx.Omit(clause.Associations).Create(comp).Error; err != nil {
			return err
		}
		if len(courseIDs) == 0 {
			return nil
		}
		links := linkRows(comp.ID, courseIDs)
		if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
			return err
		}
		comp.Links = links
		return nil
	})
	return classify(err, "competition")
}

// LinkCourses adds every course in courseIDs to the competition as one batch.
// The batch is all-or-nothing; the first failure is returned classified
// (a course already linked is a Conflict, an unknown course a Validation error).
func (s *Store) LinkCourses(ctx context.Context, competitionID uuid.UUID, courseIDs []uuid.UUID) ([]models.CompetitionCourse, error) {
	links := linkRows(competitionID, courseIDs)
	if len(links) == 0 {
		return links, nil
	}
	// A slice passed to Create becomes one multi-row INSERT. The transaction keeps
	// the batch atomic even if GORM splits it into several statements.
	err := s.with(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&links).Error
	})
	if err != nil {
		return nil, classify(err, "competition course")
	}
	return links, nil
}

func linkRows(competitionID uuid.UUID, courseIDs []uuid.UUID) []models.CompetitionCourse {
	links := make([]models.CompetitionCourse, 0, len(courseIDs))
	for _, id := range courseIDs {
		links = append(links, models.CompetitionCourse{CompetitionID: competitionID, CourseID: id})
	}
	return links
}

// GetCompetition loads a competition with its linked courses.
func (s *Store) GetCompetition(ctx context.Context, id uuid.UUID) (*models.Competition, error) {
	var comp models.Competition
	err := s.with(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Links.Course").
		First(&comp, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, "competition")
	}
	return &comp, nil
}

// ListCompetitions returns every competition, soonest start date first.
// Competitions without a start date come last, newest first among themselves.
func (s *Store) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	var comps []models.Competition
	// "start_date IS NULL" sorts false before true, so undated competitions go last
	// on every database. SQLite would otherwise sort NULL dates first.
	err := s.with(ctx).
		Order("start_date IS NULL").
		Order("start_date ASC").
		Order("created_at DESC").
		Find(&comps).Error
	return comps, classify(err, "competition")
}

// LatestCompetitions returns the n most recently created competitions.
func (s *Store) LatestCompetitions(ctx context.Context, n int) ([]models.Competition, error) {
	var comps []models.Competition
	err := s.with(ctx).
		Order("created_at DESC").
		Limit(n).
		Find(&comps).Error
	return comps, classify(err, "competition")
}

// CompetitionsForCourse returns the competitions the course is linked to.
func (s *Store) CompetitionsForCourse(ctx context.Context, courseID uuid.UUID) ([]models.Competition, error) {
	var comps []models.Competition
	err := s.with(ctx).
		Joins("JOIN competition_courses cc ON cc.competition_id = competitions.id").
		Where("cc.course_id = ?", courseID).
		Order("competitions.start_date ASC").
		Find(&comps).Error
	return comps, classify(err, "competition")
}

// CompetitionLinksCourse reports whether the course belongs to the competition.
func (s *Store) CompetitionLinksCourse(ctx context.Context, competitionID, courseID uuid.UUID) (bool, error) {
	// A COUNT is enough: the caller only needs to know whether the pair exists.
	var n int64
	err := s.with(ctx).
		Model(&models.CompetitionCourse{}).
		Where("competition_id = ? AND course_id = ?", competitionID, courseID).
		Count(&n).Error
	if err != nil {
		return false, classify(err, "competition course")
	}
	return n > 0, nil
}
