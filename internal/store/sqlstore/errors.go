package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"smartjournal/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// mapError translates driver errors into store sentinels, keeping the
// original error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
		case foreignKeyViolationCode, checkViolationCode, notNullViolationCode:
			return fmt.Errorf("%w: constraint %s: %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
		default:
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	return err
}

func storeErr(entity, op, msg string, err error) error {
	return store.NewStoreError(entity, op, msg, mapError(err))
}
