// cmd/server/main.go
// This is the entry point for the disc golf score tracker API server.
// In Go, the "main" package and its "main()" function is where the program starts executing.
// The "cmd/server" directory follows a common Go convention: the cmd/ folder holds executable
// binaries, and internal/ holds reusable packages that are not meant to be imported by other projects.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	// fiber is a fast HTTP web framework inspired by Express.js
	"github.com/gofiber/fiber/v2"
	// cors handles Cross-Origin Resource Sharing so the web app can talk to
	// the API even though they're running on different origins (hosts/ports)
	"github.com/gofiber/fiber/v2/middleware/cors"
	// recover turns a panic inside a handler into a 500 instead of crashing the process
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	// Internal packages: our own code, imported by module path
	"github.com/trentd187/discgolf/internal/config"
	"github.com/trentd187/discgolf/internal/database"
	"github.com/trentd187/discgolf/internal/handlers"
	"github.com/trentd187/discgolf/internal/logging"
	"github.com/trentd187/discgolf/internal/middleware"
	"github.com/trentd187/discgolf/internal/store"
	"github.com/trentd187/discgolf/internal/websocket"
)

// shutdownTimeout bounds how long in-flight requests get to finish after SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration from environment variables (and optionally a .env file).
	// cfg is a pointer (*Config) containing all runtime settings like port, database URL, etc.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Build the structured logger. From here on everything logs through zap.
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	// ctx is cancelled when the process receives SIGINT (Ctrl+C) or SIGTERM (ECS stopping the task).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the PostgreSQL database.
	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run any pending SQL migration files (in cfg.MigrationsPath).
	// Running them on startup ensures the database schema is always in sync when the server starts.
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	st := store.New(db, logger)

	// Create the WebSocket Hub and start it in a goroutine.
	// The Hub fans newly recorded scores out to everyone watching a course or competition.
	// "go hub.Run(ctx)" starts Run() as a goroutine that stops when ctx is cancelled.
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Create a new Fiber app (our HTTP server).
	// ErrorHandler renders every error returned by a handler as {"error": "..."} with the right status.
	app := fiber.New(fiber.Config{
		AppName:      "Disc Golf API",
		ErrorHandler: middleware.ErrorHandler(logger),
	})

	// --- Global middleware ---
	// These run on every request before any route handler.
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins(),
	}))
	app.Use(middleware.RequestLogger(logger))

	handlers.Register(app, handlers.Deps{
		Store:  st,
		Hub:    hub,
		Config: cfg,
		Log:    logger,
	})

	// Listen in the background so main can wait for a shutdown signal.
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
