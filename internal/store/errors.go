package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/trentd187/discgolf/internal/apperr"
)

// Postgres SQLSTATE codes the store reacts to.
const (
	pgUndefinedColumn       = "42703"
	pgUndefinedTable        = "42P01"
	pgInsufficientPrivilege = "42501"
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
	pgNotNullViolation      = "23502"
	pgCheckViolation        = "23514"
	pgInvalidText           = "22P02"
	pgNumericOutOfRange     = "22003"
)

// classify turns a driver or gorm error into an *apperr.Error.
// what names the resource for not-found messages ("course", "score", ...).
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.KindConflict, err, "%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Wrap(apperr.KindValidation, err, "%s references a row that does not exist", what)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedColumn, pgUndefinedTable:
			return apperr.Wrap(apperr.KindSchemaMismatch, err, "%s", pgErr.Message)
		case pgInsufficientPrivilege:
			return apperr.Wrap(apperr.KindForbidden, err, "%s", pgErr.Message)
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, err, "%s already exists", what)
		case pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation, pgInvalidText, pgNumericOutOfRange:
			return apperr.Wrap(apperr.KindValidation, err, "%s", pgErr.Message)
		}
	}

	return apperr.Wrap(apperr.KindDataStore, err, "%s", err.Error())
}

// withSchemaFallback runs primary and, only if it fails with a schema mismatch, runs
// fallback exactly once. It reports whether the fallback ran. Any other primary error,
// or a failing fallback, is returned as is.
func withSchemaFallback(primary, fallback func() error) (bool, error) {
	err := primary()
	if err == nil {
		return false, nil
	}
	if !apperr.Is(err, apperr.KindSchemaMismatch) {
		return false, err
	}
	return true, fallback()
}
