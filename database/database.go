package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/dibadokht/kelaasor-final/config"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrDBNotFound is returned by stores when a lookup matches no row.
	ErrDBNotFound = sql.ErrNoRows

	// ErrDBDuplicatedEntry is returned when a write violates a unique key.
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
)

const uniqueViolation = pq.ErrorCode("23505")

// WrapError translates driver errors into the store-level sentinels so that
// core packages never inspect pq internals.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrDBNotFound
	}

	var pqerr *pq.Error
	if errors.As(err, &pqerr) && pqerr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDBDuplicatedEntry, pqerr.Constraint)
	}

	return err
}

func Open(cfg config.DB) (*sqlx.DB, error) {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}

	return sqlx.Open("postgres", u.String())
}

// StatusCheck waits for the database to be ready to accept queries.
func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	var pingError error
	for attempts := 1; ; attempts++ {
		pingError = db.Ping()
		if pingError == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	const q = `SELECT true`
	var tmp bool
	return db.QueryRowContext(ctx, q).Scan(&tmp)
}

// Transaction runs fn within a database transaction: either every write in fn
// commits, or none does.
func Transaction(db *sqlx.DB, fn func(sqlx.ExtContext) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if errTx := tx.Rollback(); errTx != nil {
			return fmt.Errorf("rolling back transaction: %v: %w", errTx, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
