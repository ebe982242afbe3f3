package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trentd187/discgolf/internal/config"
	"github.com/trentd187/discgolf/internal/middleware"
	"github.com/trentd187/discgolf/internal/store"
	"github.com/trentd187/discgolf/internal/websocket"
)

// Deps is everything the handlers need.
type Deps struct {
	Store  *store.Store
	Hub    *websocket.Hub
	Config *config.Config
	Log    *zap.Logger
}

// Register mounts every route on app.
//
// Reads are public. Routes that change data sit behind middleware.RequireAuth,
// and the handlers additionally consult the policy package for the specific row.
func Register(app *fiber.App, d Deps) {
	st, cfg, log := d.Store, d.Config, d.Log

	// GET /health is a liveness check used by load balancers to verify the server is running.
	app.Get("/health", HealthCheck(st, log))

	// Session resolves the caller (if any) for every API route.
	// Route group pattern: app.Group(prefix, middlewares...) applies the middleware
	// to every route registered on the returned group.
	api := app.Group("/api/v1", middleware.Session(cfg, log))
	auth := middleware.RequireAuth()

	// Courses
	api.Get("/courses", ListCourses(st))
	api.Post("/courses", auth, CreateCourse(st))
	api.Get("/courses/:id", GetCourse(st))
	api.Put("/courses/:id", auth, UpdateCourse(st))
	api.Delete("/courses/:id", auth, DeleteCourse(st, log))

	// Scores. Static paths are registered before the :id routes.
	api.Get("/scores", ListScoresForCourse(st))
	api.Get("/scores/best", BestScoreForCourse(st))
	api.Get("/scores/all", ListAllScores(st))
	api.Get("/scores/latest-per-course", LatestScorePerCourse(st, cfg))
	api.Post("/scores", auth, AddScore(st, d.Hub, log))
	api.Put("/scores", auth, UpdateScore(st))
	api.Put("/scores/:id", auth, UpdateScore(st))
	api.Delete("/scores/:id", auth, DeleteScore(st))

	// Competitions
	api.Get("/competitions", ListCompetitions(st))
	api.Post("/competitions", auth, CreateCompetition(st))
	api.Get("/competitions/:id", GetCompetition(st))
	api.Get("/competitions/:id/results", CompetitionResults(st))
	api.Post("/competition-courses", auth, LinkCourses(st))

	// Profiles
	api.Get("/profile", auth, GetCurrentProfile(st))
	api.Post("/profile", auth, UpsertProfile(st))
	api.Get("/profiles", ListProfiles(st))

	// Feeds
	api.Get("/feeds", Dashboard(st, cfg, log))
	api.Get("/feeds/courses", LatestCourses(st, cfg))
	api.Get("/feeds/scores", LatestScores(st, cfg))
	api.Get("/feeds/competitions", LatestCompetitions(st, cfg))

	// Live score streams (WebSocket)
	api.Get("/live/courses/:id", RequireUpgrade(websocket.CourseTopic), Live(d.Hub))
	api.Get("/live/competitions/:id", RequireUpgrade(websocket.CompetitionTopic), Live(d.Hub))
}
