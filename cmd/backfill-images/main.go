// cmd/backfill-images/main.go
// One-off maintenance tool that normalises courses.image_urls on databases created
// before the column was jsonb. Run it once, then again with -alter to convert the column:
//
//	go run ./cmd/backfill-images
//	go run ./cmd/backfill-images -alter
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/trentd187/discgolf/internal/config"
	"github.com/trentd187/discgolf/internal/database"
	"github.com/trentd187/discgolf/internal/logging"
)

func main() {
	alter := flag.Bool("alter", false, "convert courses.image_urls to jsonb after the backfill")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	changed, err := database.BackfillImageURLs(ctx, db, logger)
	if err != nil {
		logger.Fatal("backfill failed", zap.Error(err))
	}
	logger.Info("backfill complete", zap.Int("rows_changed", changed))

	if *alter {
		if err := database.AlterImageColumnToJSONB(ctx, db); err != nil {
			logger.Fatal("column conversion failed", zap.Error(err))
		}
		logger.Info("image_urls is now jsonb")
	}
}
