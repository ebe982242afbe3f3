package handlers

// feeds.go serves the "latest N" lists on the start page, one route per feed plus
// a dashboard route that fetches all three at once.

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trentd187/discgolf/internal/apperr"
	"github.com/trentd187/discgolf/internal/config"
	"github.com/trentd187/discgolf/internal/store"
)

// dashboardTimeout bounds how long the dashboard waits for its slowest feed.
const dashboardTimeout = 10 * time.Second

// LatestCourses returns a handler for GET /api/v1/feeds/courses.
// On databases that predate courses.created_at the store answers from a reduced,
// unordered query instead of failing.
func LatestCourses(st *store.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courses, err := st.LatestCourses(c.UserContext(), cfg.FeedLimit)
		if err != nil {
			return err
		}
		out := make([]CourseResponse, 0, len(courses))
		for _, course := range courses {
			out = append(out, toCourse(course))
		}
		return c.JSON(out)
	}
}

// LatestScores returns a handler for GET /api/v1/feeds/scores.
func LatestScores(st *store.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scores, err := st.LatestScores(c.UserContext(), cfg.FeedLimit)
		if err != nil {
			return err
		}
		return c.JSON(toScores(scores))
	}
}

// LatestCompetitions returns a handler for GET /api/v1/feeds/competitions.
func LatestCompetitions(st *store.Store, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		comps, err := st.LatestCompetitions(c.UserContext(), cfg.FeedLimit)
		if err != nil {
			return err
		}
		return c.JSON(toCompetitions(comps))
	}
}

// FeedSection is one feed on the dashboard. Exactly one of Items and Error is
// meaningful: a failed feed has empty Items and a message in Error.
type FeedSection[T any] struct {
	Items []T    `json:"items"`
	Error string `json:"error,omitempty"`
}

// DashboardResponse is the body of GET /api/v1/feeds.
type DashboardResponse struct {
	Courses      FeedSection[CourseResponse]      `json:"courses"`
	Scores       FeedSection[ScoreResponse]       `json:"scores"`
	Competitions FeedSection[CompetitionResponse] `json:"competitions"`
}

// Dashboard returns a handler for GET /api/v1/feeds.
//
// The three feeds are fetched concurrently. Each one reports its own failure in its
// section; a failing feed never cancels or hides the others, so every goroutine
// returns nil to the group and keeps its error to itself.
func Dashboard(st *store.Store, cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), dashboardTimeout)
		defer cancel()

		resp := DashboardResponse{
			Courses:      FeedSection[CourseResponse]{Items: []CourseResponse{}},
			Scores:       FeedSection[ScoreResponse]{Items: []ScoreResponse{}},
			Competitions: FeedSection[CompetitionResponse]{Items: []CompetitionResponse{}},
		}

		var g errgroup.Group
		g.Go(func() error {
			courses, err := st.LatestCourses(ctx, cfg.FeedLimit)
			if err != nil {
				resp.Courses.Error = feedError(log, "courses", err)
				return nil
			}
			for _, course := range courses {
				resp.Courses.Items = append(resp.Courses.Items, toCourse(course))
			}
			return nil
		})
		g.Go(func() error {
			scores, err := st.LatestScores(ctx, cfg.FeedLimit)
			if err != nil {
				resp.Scores.Error = feedError(log, "scores", err)
				return nil
			}
			resp.Scores.Items = toScores(scores)
			return nil
		})
		g.Go(func() error {
			comps, err := st.LatestCompetitions(ctx, cfg.FeedLimit)
			if err != nil {
				resp.Competitions.Error = feedError(log, "competitions", err)
				return nil
			}
			resp.Competitions.Items = toCompetitions(comps)
			return nil
		})
		_ = g.Wait()

		return c.JSON(resp)
	}
}

// feedError logs a failed dashboard feed and returns the message shown for it.
func feedError(log *zap.Logger, feed string, err error) string {
	log.Warn("dashboard feed failed",
		zap.String("feed", feed),
		zap.String("kind", apperr.KindOf(err).String()),
		zap.Error(err))
	return err.Error()
}
