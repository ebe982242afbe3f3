// Package store is the data-access layer: every query the API issues lives here.
//
// Each method is a single round trip (or a single transaction) against the database.
// Errors leave this package already classified with an apperr.Kind, so handlers never
// inspect driver errors or message text.
package store

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store wraps the gorm handle shared by all queries.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// New returns a Store backed by db. A nil logger disables store logging.
func New(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

// DB exposes the underlying handle, e.g. for the health check ping.
func (s *Store) DB() *gorm.DB { return s.db }

// with binds ctx to a fresh session so cancellations reach the driver.
func (s *Store) with(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}
