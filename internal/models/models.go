// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
//
// The data model represents a disc golf score tracker where:
//   - Users (identified by the auth provider) own a Profile with a display alias
//   - Courses are disc golf venues with a location and optional imagery
//   - Competitions span one or more Courses through the competition_courses join table
//   - Scores record one player's total throws on one course, optionally inside a competition
//
// Scores are "total throws": lower is better.
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys. The auth provider
	// already identifies users by UUID, so every table uses UUIDs for consistency.
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// assignID gives a row a fresh UUID unless the caller already chose one.
// Postgres could default the column with gen_random_uuid(), but generating it
// here keeps the models portable to the SQLite database used in tests.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Course represents a disc golf course.
// Latitude and longitude are nullable independently: a course may have one without the other.
// MainImageURL is stored separately from ImageURLs and need not appear in the list.
type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"not null"`
	Location     *string    // Free-text location, e.g. "Örebro"
	Latitude     *float64   // Decimal degrees; NULL when unknown
	Longitude    *float64   // Decimal degrees; NULL when unknown
	ImageURLs    ImageList  `gorm:"column:image_urls"` // Up to MaxImages supplementary images
	MainImageURL *string    // Cover image; shown first in the gallery
	Description  *string
	City         *string
	Country      *string
	CreatedBy    *uuid.UUID `gorm:"type:uuid;index"` // Older rows have no creator
	CreatedAt    time.Time
}

func (c *Course) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Profile holds the public face of an authenticated user.
// ID is the auth provider's user id: it is both the primary key and the link to the identity.
type Profile struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Alias      string     `gorm:"not null;default:''"` // Display name; uniqueness is not enforced
	AvatarURL  string     `gorm:"not null;default:''"`
	HomeCourse *uuid.UUID `gorm:"type:uuid"` // Optional favourite course
}

// Competition is a named event spanning one or more courses over an optional date range.
// A competition may exist before (or without) any linked courses.
type Competition struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"not null"`
	Description *string
	StartDate   *time.Time `gorm:"type:date"`
	EndDate     *time.Time `gorm:"type:date"`
	ImageURL    *string
	CreatedBy   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
	Links       []CompetitionCourse `gorm:"foreignKey:CompetitionID"` // Courses that belong to this competition
}

func (c *Competition) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// CompetitionCourse is the join row placing a Course inside a Competition.
// The unique index stops the same course being linked twice.
type CompetitionCourse struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompetitionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_competition_course"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_competition_course"`
	Course        Course    `gorm:"foreignKey:CourseID"`
	CreatedAt     time.Time
}

func (cc *CompetitionCourse) BeforeCreate(*gorm.DB) error {
	assignID(&cc.ID)
	return nil
}

// Score records one player's total throws on one course.
// CompetitionID is NULL for casual rounds. DatePlayed is when the round was played,
// which is distinct from CreatedAt (when it was recorded).
type Score struct {
	ID            uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	Score         int                        `gorm:"not null"`
	CourseID      uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Course        Course                     `gorm:"foreignKey:CourseID"`
	UserID        uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Profile       Profile                    `gorm:"foreignKey:UserID"`
	CompetitionID *uuid.UUID                 `gorm:"type:uuid;index"`
	Competition   *Competition               `gorm:"foreignKey:CompetitionID"`
	DatePlayed    *time.Time                 `gorm:"type:date"`
	WithFriends   datatypes.JSONSlice[string] // Companions on the round
	CreatedAt     time.Time
}

func (s *Score) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// All lists every model in dependency order, for AutoMigrate in tests and tooling.
func All() []any {
	return []any{
		&Course{},
		&Profile{},
		&Competition{},
		&CompetitionCourse{},
		&Score{},
	}
}
