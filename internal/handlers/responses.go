package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/models"
	"github.com/trentd187/discgolf/internal/views"
)

// The response structs below are what we send back to the web client.
// We use dedicated structs (instead of the raw GORM models) so we control exactly
// which fields are serialised and how nullable values and dates look in JSON.

// CourseResponse is one course as returned by the course endpoints and feeds.
type CourseResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Location     *string    `json:"location"`
	Latitude     *float64   `json:"latitude"`  // null when unknown
	Longitude    *float64   `json:"longitude"` // null when unknown
	ImageURLs    []string   `json:"image_urls"`
	MainImageURL *string    `json:"main_image_url"`
	Description  *string    `json:"description"`
	City         *string    `json:"city"`
	Country      *string    `json:"country"`
	CreatedBy    *uuid.UUID `json:"created_by"`
	CreatedAt    *string    `json:"created_at"` // RFC 3339; null when the database has no such column
}

func toCourse(c models.Course) CourseResponse {
	return CourseResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		Location:     c.Location,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		ImageURLs:    models.ParseImageList(c.ImageURLs),
		MainImageURL: c.MainImageURL,
		Description:  c.Description,
		City:         c.City,
		Country:      c.Country,
		CreatedBy:    c.CreatedBy,
		CreatedAt:    formatOptionalTimestamp(c.CreatedAt),
	}
}

// CourseDetailResponse is the course page: the course, its gallery, the competitions
// it belongs to and its best rounds.
type CourseDetailResponse struct {
	CourseResponse
	Gallery      []string              `json:"gallery"`
	Competitions []CompetitionResponse `json:"competitions"`
	TopScores    []ScoreResponse       `json:"top_scores"`
}

// ScoreResponse is one score. The nested objects mirror the joins the client expects:
// courses.name, profiles.alias and competitions.title.
type ScoreResponse struct {
	ID            string     `json:"id"`
	Score         int        `json:"score"`
	CourseID      string     `json:"course_id"`
	UserID        string     `json:"user_id"`
	CompetitionID *uuid.UUID `json:"competition_id"`
	DatePlayed    *string    `json:"date_played"` // "YYYY-MM-DD" or null
	WithFriends   []string   `json:"with_friends"`
	CreatedAt     *string    `json:"created_at"`

	Courses      *courseRef      `json:"courses,omitempty"`
	Profiles     *profileRef     `json:"profiles,omitempty"`
	Competitions *competitionRef `json:"competitions,omitempty"`
}

type courseRef struct {
	Name string `json:"name"`
}

type profileRef struct {
	Alias string `json:"alias"`
}

type competitionRef struct {
	Title string `json:"title"`
}

func toScore(s models.Score) ScoreResponse {
	friends := []string(s.WithFriends)
	if friends == nil {
		friends = []string{}
	}
	r := ScoreResponse{
		ID:            s.ID.String(),
		Score:         s.Score,
		CourseID:      s.CourseID.String(),
		UserID:        s.UserID.String(),
		CompetitionID: s.CompetitionID,
		DatePlayed:    formatOptionalDate(s.DatePlayed),
		WithFriends:   friends,
		CreatedAt:     formatOptionalTimestamp(s.CreatedAt),
	}
	// Joined rows are only present when the query preloaded them.
	if s.Course.ID != uuid.Nil {
		r.Courses = &courseRef{Name: s.Course.Name}
	}
	if s.Profile.ID != uuid.Nil {
		r.Profiles = &profileRef{Alias: s.Profile.Alias}
	}
	if s.Competition != nil {
		r.Competitions = &competitionRef{Title: s.Competition.Title}
	}
	return r
}

func toScores(scores []models.Score) []ScoreResponse {
	out := make([]ScoreResponse, 0, len(scores))
	for _, s := range scores {
		out = append(out, toScore(s))
	}
	return out
}

// CompetitionResponse is one competition without its courses.
type CompetitionResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartDate   *string    `json:"start_date"`
	EndDate     *string    `json:"end_date"`
	ImageURL    *string    `json:"image_url"`
	CreatedBy   *uuid.UUID `json:"created_by"`
	CreatedAt   *string    `json:"created_at"`
}

func toCompetition(c models.Competition) CompetitionResponse {
	return CompetitionResponse{
		ID:          c.ID.String(),
		Title:       c.Title,
		Description: c.Description,
		StartDate:   formatOptionalDate(c.StartDate),
		EndDate:     formatOptionalDate(c.EndDate),
		ImageURL:    c.ImageURL,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   formatOptionalTimestamp(c.CreatedAt),
	}
}

func toCompetitions(comps []models.Competition) []CompetitionResponse {
	out := make([]CompetitionResponse, 0, len(comps))
	for _, c := range comps {
		out = append(out, toCompetition(c))
	}
	return out
}

// CompetitionDetailResponse is a competition with the courses linked to it.
type CompetitionDetailResponse struct {
	CompetitionResponse
	Courses []CourseResponse `json:"courses"`
}

func toCompetitionDetail(c models.Competition) CompetitionDetailResponse {
	courses := make([]CourseResponse, 0, len(c.Links))
	for _, link := range c.Links {
		courses = append(courses, toCourse(link.Course))
	}
	return CompetitionDetailResponse{CompetitionResponse: toCompetition(c), Courses: courses}
}

// CourseResult is one course's leaderboard inside a competition.
type CourseResult struct {
	CourseID   string          `json:"course_id"`
	CourseName string          `json:"course_name"`
	Best       ScoreResponse   `json:"best"`
	Scores     []ScoreResponse `json:"scores"` // Ascending by score; ties keep recording order
}

// ProfileResponse is a player's profile.
type ProfileResponse struct {
	ID         string     `json:"id"`
	Alias      string     `json:"alias"`
	AvatarURL  string     `json:"avatar_url"`
	HomeCourse *uuid.UUID `json:"home_course"`
}

func toProfile(p models.Profile) ProfileResponse {
	return ProfileResponse{ID: p.ID.String(), Alias: p.Alias, AvatarURL: p.AvatarURL, HomeCourse: p.HomeCourse}
}

// LatestScoreResponse is one row of the per-course latest score feed.
type LatestScoreResponse struct {
	CourseID    string         `json:"courseId"`
	CourseName  string         `json:"courseName"`
	LatestScore *ScoreResponse `json:"latestScore"` // null when nobody has played the course
}

// formatOptionalTimestamp renders t as RFC 3339, or null for the zero time.
func formatOptionalTimestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// bestOf flags the winning round of a group, or nil for an empty group.
func bestOf(scores []models.Score) *ScoreResponse {
	best, err := views.BestScore(scores)
	if err != nil {
		return nil
	}
	r := toScore(best)
	return &r
}
