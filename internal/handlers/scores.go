package handlers

// scores.go handles the /api/v1/scores routes: the score ledger.
//
// A score always belongs to the player who recorded it. Only that player may change
// or delete it (policy.CanEditScore); the store filters by owner as well.

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/trentd187/discgolf/internal/apperr"
	"github.com/trentd187/discgolf/internal/config"
	"github.com/trentd187/discgolf/internal/models"
	"github.com/trentd187/discgolf/internal/policy"
	"github.com/trentd187/discgolf/internal/session"
	"github.com/trentd187/discgolf/internal/store"
	"github.com/trentd187/discgolf/internal/views"
	"github.com/trentd187/discgolf/internal/websocket"
)

// ScoreRequest is the JSON body for POST /scores and PUT /scores[/:id].
type ScoreRequest struct {
	ID            string     `json:"id"`             // Only read by PUT /scores
	CourseID      string     `json:"course_id"`      // Required
	Score         looseInt   `json:"score"`          // Required: total throws
	DatePlayed    *string    `json:"date_played"`    // Optional "YYYY-MM-DD"
	WithFriends   companions `json:"with_friends"`   // Optional text or list of names
	CompetitionID *string    `json:"competition_id"` // Optional; the competition must include the course
}

// toModel validates the request and builds the score it describes for owner.
func (r ScoreRequest) toModel(owner uuid.UUID) (models.Score, error) {
	courseID, err := parseID("course_id", r.CourseID)
	if err != nil {
		return models.Score{}, err
	}
	if !r.Score.Set {
		return models.Score{}, apperr.Validation("score", "score is required and must be a whole number")
	}
	if r.Score.Value <= 0 {
		return models.Score{}, apperr.Validation("score", "score must be positive")
	}
	// scores.score is a Postgres INTEGER.
	if r.Score.Value > math.MaxInt32 {
		return models.Score{}, apperr.Validation("score", "score must be at most "+strconv.Itoa(math.MaxInt32))
	}
	played, err := parseOptionalDate("date_played", r.DatePlayed)
	if err != nil {
		return models.Score{}, err
	}
	competitionID, err := parseOptionalID("competition_id", r.CompetitionID)
	if err != nil {
		return models.Score{}, err
	}
	friends := []string(r.WithFriends)
	if friends == nil {
		friends = []string{}
	}
	return models.Score{
		Score:         int(r.Score.Value),
		CourseID:      courseID,
		UserID:        owner,
		CompetitionID: competitionID,
		DatePlayed:    played,
		WithFriends:   datatypes.JSONSlice[string](friends),
	}, nil
}

// checkScoreRefs makes sure the course exists and, for competition rounds, that the
// competition includes that course. It returns the course for the response.
func checkScoreRefs(c *fiber.Ctx, st *store.Store, s *models.Score) (*models.Course, error) {
	ctx := c.UserContext()
	course, err := st.GetCourse(ctx, s.CourseID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Validation("course_id", "course_id does not match a course")
	}
	if err != nil {
		return nil, err
	}
	if s.CompetitionID == nil {
		return course, nil
	}
	linked, err := st.CompetitionLinksCourse(ctx, *s.CompetitionID, s.CourseID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperr.Validation("competition_id", "competition_id does not include this course")
	}
	return course, nil
}

// AddScore returns a handler for POST /api/v1/scores.
// The new score is pushed to everyone watching the course (and the competition, if any).
func AddScore(st *store.Store, hub *websocket.Hub, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := session.From(c)
		if who == nil {
			return apperr.Unauthenticated()
		}

		var req ScoreRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		score, err := req.toModel(who.UserID)
		if err != nil {
			return err
		}
		course, err := checkScoreRefs(c, st, &score)
		if err != nil {
			return err
		}

		if err := st.AddScore(c.UserContext(), &score); err != nil {
			return err
		}
		score.Course = *course

		resp := toScore(score)
		topics := []string{websocket.CourseTopic(score.CourseID)}
		if score.CompetitionID != nil {
			topics = append(topics, websocket.CompetitionTopic(*score.CompetitionID))
		}
		if err := hub.Publish(resp, topics...); err != nil {
			log.Warn("publish new score", zap.Stringer("score_id", score.ID), zap.Error(err))
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// UpdateScore returns a handler for PUT /api/v1/scores/:id and PUT /api/v1/scores.
// The second form reads the id from the body, for clients of the older API.
func UpdateScore(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ScoreRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		rawID := c.Params("id")
		if rawID == "" {
			rawID = req.ID
		}
		id, err := parseID("id", rawID)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		existing, err := st.GetScore(ctx, id)
		if err != nil {
			return err
		}
		who := session.From(c)
		if err := policy.CanEditScore(who, existing); err != nil {
			return err
		}

		score, err := req.toModel(who.UserID)
		if err != nil {
			return err
		}
		score.ID = existing.ID
		score.CreatedAt = existing.CreatedAt
		course, err := checkScoreRefs(c, st, &score)
		if err != nil {
			return err
		}
		if err := st.UpdateScore(ctx, who.UserID, &score); err != nil {
			return err
		}
		score.Course = *course
		score.Profile = existing.Profile
		return c.JSON(toScore(score))
	}
}

// DeleteScore returns a handler for DELETE /api/v1/scores/:id.
func DeleteScore(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		existing, err := st.GetScore(ctx, id)
		if err != nil {
			return err
		}
		who := session.From(c)
		if err := policy.CanEditScore(who, existing); err != nil {
			return err
		}
		if err := st.DeleteScore(ctx, who.UserID, id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// courseScores loads the rounds on ?courseId=, narrowed by the optional ?year= and
// ?month= filters and sorted by score ascending.
func courseScores(c *fiber.Ctx, st *store.Store) ([]models.Score, error) {
	courseID, err := parseID("courseId", c.Query("courseId"))
	if err != nil {
		return nil, err
	}
	year, err := queryInt(c, "year", 1, 9999)
	if err != nil {
		return nil, err
	}
	month, err := queryInt(c, "month", 1, 12)
	if err != nil {
		return nil, err
	}

	scores, err := st.ScoresForCourse(c.UserContext(), courseID)
	if err != nil {
		return nil, err
	}
	// Undated rounds drop out as soon as either filter is given.
	scores = filterByPlayDate(scores, year, month)
	views.SortByScore(scores)
	return scores, nil
}

// ListScoresForCourse returns a handler for GET /api/v1/scores?courseId=<id>.
// The body is a bare array of score rows, lowest score first.
func ListScoresForCourse(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scores, err := courseScores(c, st)
		if err != nil {
			return err
		}
		return c.JSON(toScores(scores))
	}
}

// BestScoreForCourse returns a handler for GET /api/v1/scores/best?courseId=<id>.
// It takes the same filters as ListScoresForCourse and answers with the single best
// round, or null when no round matches.
func BestScoreForCourse(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scores, err := courseScores(c, st)
		if err != nil {
			return err
		}
		return c.JSON(bestOf(scores))
	}
}

// queryInt reads an optional integer query parameter within [lo, hi]; 0 means absent.
func queryInt(c *fiber.Ctx, name string, lo, hi int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, apperr.Validation(name, name+" must be a number between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
	return n, nil
}

func filterByPlayDate(scores []models.Score, year, month int) []models.Score {
	if year == 0 && month == 0 {
		return scores
	}
	out := scores[:0]
	for _, s := range scores {
		if s.DatePlayed == nil {
			continue
		}
		if year != 0 && s.DatePlayed.Year() != year {
			continue
		}
		if month != 0 && int(s.DatePlayed.Month()) != month {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ListAllScores returns a handler for GET /api/v1/scores/all: every round, most
// recently played first.
func ListAllScores(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scores, err := st.AllScores(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toScores(scores))
	}
}

// LatestScorePerCourse returns a handler for GET /api/v1/scores/latest-per-course.
//
// ?mode= picks what "latest" means (played, recorded or earliest; see views.LatestMode)
// and defaults to the configured mode. Two queries are issued, one for courses and one
// for scores, and the reduction happens in memory. Courses come back ordered by name;
// a course nobody has played has a null latestScore.
func LatestScorePerCourse(st *store.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode, err := views.ParseLatestMode(c.Query("mode", cfg.LatestMode))
		if err != nil {
			return apperr.Validation("mode", err.Error())
		}
		ctx := c.UserContext()

		courses, err := st.ListCourses(ctx)
		if err != nil {
			return err
		}
		scores, err := st.ScoresWithAlias(ctx)
		if err != nil {
			return err
		}
		latest := views.LatestPerGroup(scores, func(s models.Score) uuid.UUID { return s.CourseID }, mode.Newer())

		out := make([]LatestScoreResponse, 0, len(courses))
		for _, course := range courses {
			row := LatestScoreResponse{CourseID: course.ID.String(), CourseName: course.Name}
			if s, ok := latest[course.ID]; ok {
				r := toScore(s)
				row.LatestScore = &r
			}
			out = append(out, row)
		}
		return c.JSON(out)
	}
}
