package handlers

// competitions.go handles /api/v1/competitions and /api/v1/competition-courses.
//
// A competition is a named event over an optional date range that spans one or
// more courses through the competition_courses join table. Its results are the
// scores tagged with it, grouped per course.

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/apperr"
	"github.com/trentd187/discgolf/internal/models"
	"github.com/trentd187/discgolf/internal/policy"
	"github.com/trentd187/discgolf/internal/session"
	"github.com/trentd187/discgolf/internal/store"
	"github.com/trentd187/discgolf/internal/views"
)

// CreateCompetitionRequest is the JSON body we expect on POST /api/v1/competitions.
type CreateCompetitionRequest struct {
	Title       string   `json:"title"`       // Required
	Description *string  `json:"description"` // Optional
	StartDate   *string  `json:"start_date"`  // Optional: "YYYY-MM-DD"
	EndDate     *string  `json:"end_date"`    // Optional: "YYYY-MM-DD", not before start_date
	ImageURL    *string  `json:"image_url"`   // Optional cover image
	CourseIDs   []string `json:"course_ids"`  // Optional courses to link straight away
}

// CreateCompetition returns a handler for POST /api/v1/competitions.
// The competition and its course links are written in one transaction: if any link
// fails, the competition is not created either.
func CreateCompetition(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := session.From(c)
		if who == nil {
			return apperr.Unauthenticated()
		}

		var req CreateCompetitionRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		title := strings.TrimSpace(req.Title)
		if title == "" {
			return apperr.Required("title")
		}
		start, err := parseOptionalDate("start_date", req.StartDate)
		if err != nil {
			return err
		}
		end, err := parseOptionalDate("end_date", req.EndDate)
		if err != nil {
			return err
		}
		if start != nil && end != nil && end.Before(*start) {
			return apperr.Validation("end_date", "end_date must not be before start_date")
		}
		courseIDs, err := parseIDList("course_ids", req.CourseIDs)
		if err != nil {
			return err
		}

		comp := models.Competition{
			Title:       title,
			Description: optionalText(req.Description),
			StartDate:   start,
			EndDate:     end,
			ImageURL:    optionalText(req.ImageURL),
			CreatedBy:   &who.UserID,
		}
		ctx := c.UserContext()
		if err := st.CreateCompetition(ctx, &comp, courseIDs); err != nil {
			// The only references written here are the course links.
			if apperr.Is(err, apperr.KindValidation) {
				return apperr.Validation("course_ids", "course_ids contains a course that does not exist")
			}
			return err
		}

		created, err := st.GetCompetition(ctx, comp.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toCompetitionDetail(*created))
	}
}

// parseIDList parses every entry of raw as a UUID.
func parseIDList(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, apperr.Validation(field, field+" must contain valid ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListCompetitions returns a handler for GET /api/v1/competitions.
func ListCompetitions(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		comps, err := st.ListCompetitions(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toCompetitions(comps))
	}
}

// GetCompetition returns a handler for GET /api/v1/competitions/:id: the competition
// and the courses linked to it.
func GetCompetition(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		comp, err := st.GetCompetition(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(toCompetitionDetail(*comp))
	}
}

// CompetitionResultsResponse is the body of GET /competitions/:id/results.
type CompetitionResultsResponse struct {
	Competition CompetitionResponse `json:"competition"`
	Results     []CourseResult      `json:"results"` // One entry per course, in order of first recorded round
}

// CompetitionResults returns a handler for GET /api/v1/competitions/:id/results.
// Scores are grouped by course; each group is sorted by score and carries its best round.
func CompetitionResults(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		comp, err := st.GetCompetition(ctx, id)
		if err != nil {
			return err
		}
		scores, err := st.CompetitionScores(ctx, id)
		if err != nil {
			return err
		}

		groups := views.GroupByCourse(scores)
		results := make([]CourseResult, 0, len(groups))
		for _, g := range groups {
			views.SortByScore(g.Items)
			best, err := views.BestScore(g.Items)
			if err != nil {
				continue // GroupBy never yields an empty group
			}
			results = append(results, CourseResult{
				CourseID:   g.Key.String(),
				CourseName: g.Items[0].Course.Name,
				Best:       toScore(best),
				Scores:     toScores(g.Items),
			})
		}
		return c.JSON(CompetitionResultsResponse{Competition: toCompetition(*comp), Results: results})
	}
}

// LinkCoursesRequest is the JSON body for POST /api/v1/competition-courses.
// courseIds is kept raw so a value that is not an array can be told apart from an
// empty one.
type LinkCoursesRequest struct {
	CompetitionID string          `json:"competitionId"`
	CourseIDs     json.RawMessage `json:"courseIds"`
}

// LinkCourses returns a handler for POST /api/v1/competition-courses.
// The batch is all-or-nothing: a course that is already linked (409) or does not
// exist (400) fails the whole request and no link is added.
func LinkCourses(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LinkCoursesRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		competitionID, err := parseID("competitionId", req.CompetitionID)
		if err != nil {
			return err
		}
		raw := bytes.TrimSpace(req.CourseIDs)
		if len(raw) == 0 || raw[0] != '[' {
			return apperr.Validation("courseIds", "courseIds must be an array")
		}
		var rawIDs []string
		if err := json.Unmarshal(raw, &rawIDs); err != nil {
			return apperr.Validation("courseIds", "courseIds must be an array of ids")
		}
		courseIDs, err := parseIDList("courseIds", rawIDs)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		comp, err := st.GetCompetition(ctx, competitionID)
		if err != nil {
			return err
		}
		if err := policy.CanEditCompetition(session.From(c), comp); err != nil {
			return err
		}

		links, err := st.LinkCourses(ctx, competitionID, courseIDs)
		if apperr.Is(err, apperr.KindValidation) {
			return apperr.Validation("courseIds", "courseIds contains a course that does not exist")
		}
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "linked": len(links)})
	}
}
