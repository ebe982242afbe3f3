package store

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/discgolf/internal/models"
)

// courseEditable lists the columns a course update overwrites. Updates resend every
// editable field, so zero values (cleared coordinates, empty image lists) are written too.
var courseEditable = []string{
	"Name", "Location", "Latitude", "Longitude", "ImageURLs",
	"MainImageURL", "Description", "City", "Country",
}

// CreateCourse inserts c and fills in its generated id and timestamp.
func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	// Omit(clause.Associations) stops GORM from trying to upsert related rows;
	// a course is always created on its own.
	return classify(s.with(ctx).Omit(clause.Associations).Create(c).Error, "course")
}

// ListCourses returns every course ordered by name. There is no pagination.
func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.with(ctx).Order("name ASC").Find(&courses).Error
	return courses, classify(err, "course")
}

// GetCourse loads a single course.
func (s *Store) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var c models.Course
	if err := s.with(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, classify(err, "course")
	}
	return &c, nil
}

// UpdateCourse overwrites every editable column of the course with c.ID.
func (s *Store) UpdateCourse(ctx context.Context, c *models.Course) error {
	// Updates(struct) normally skips zero values. Select forces the listed columns
	// to be written anyway, which is what makes this a full overwrite.
	res := s.with(ctx).
		Model(&models.Course{ID: c.ID}).
		Select(courseEditable).
		Updates(c)
	if res.Error != nil {
		return classify(res.Error, "course")
	}
	// No error but nothing changed means there was no row with that id.
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "course")
	}
	return nil
}

// DeleteCourse physically removes the course.
func (s *Store) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	res := s.with(ctx).Delete(&models.Course{}, "id = ?", id)
	if res.Error != nil {
		return classify(res.Error, "course")
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "course")
	}
	return nil
}

// LatestCourses returns the n most recently created courses.
//
// Databases created before courses had a created_at column reject the ordered query
// with an undefined-column error. In that case a reduced query (id and name only,
// unordered) is issued exactly once; any other failure is returned untouched.
func (s *Store) LatestCourses(ctx context.Context, n int) ([]models.Course, error) {
	var courses []models.Course
	usedFallback, err := withSchemaFallback(
		func() error {
			err := s.with(ctx).
				Select("id", "name", "location", "created_at").
				Order("created_at DESC").
				Limit(n).
				Find(&courses).Error
			return classify(err, "course")
		},
		func() error {
			// Start from an empty slice in case the failed query left partial rows.
			// Only id and name are asked for: they exist in every schema version.
			courses = nil
			err := s.with(ctx).
				Select("id", "name").
				Limit(n).
				Find(&courses).Error
			return classify(err, "course")
		},
	)
	if usedFallback {
		s.log.Warn("latest courses: created_at missing, used reduced query", zap.Error(err))
	}
	return courses, err
}
