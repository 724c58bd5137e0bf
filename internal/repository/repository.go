// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/gurkanbulca/projecttracker/internal/database"
	"github.com/gurkanbulca/projecttracker/internal/models"
)

var (
	// ErrNotFound is returned when an entity does not exist or is not owned
	// by the caller; callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("task %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrEmailTaken = errors.New("email already taken")
)

// Clock supplies the current time and the time zone in which "today" is
// evaluated for due dates.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemClock reads the wall clock and evaluates dates in loc.
func SystemClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today is the calendar date of the current instant in the clock's zone.
func (c Clock) Today() models.Date {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return models.DateOf(c.now().In(loc))
}

// Timestamp is the current instant as stored in created_at / updated_at.
func (c Clock) Timestamp() time.Time {
	return c.now().UTC()
}

// store carries what every repository needs: the connection, a query
// builder bound to its dialect and the clock.
type store struct {
	db    *database.DB
	sql   *sql.DialectBuilder
	clock Clock
}

func newStore(db *database.DB, clock Clock) store {
	return store{
		db:    db,
		sql:   sql.Dialect(db.Dialect),
		clock: clock,
	}
}

// Today is the date overdue flags are computed against.
func (s *store) Today() models.Date {
	return s.clock.Today()
}

// withTx runs fn in a transaction, committing on success and rolling back
// on any error.
func (s *store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		return rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Helper function for transaction rollback
func rollback(tx *sqlx.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		err = fmt.Errorf("%w: %v", err, rerr)
	}
	return err
}

// lockable reports whether SELECT ... FOR UPDATE is available. SQLite
// serialises writers on its own.
func (s *store) lockable() bool {
	return s.db.Dialect == dialect.Postgres
}

func get(ctx context.Context, tx *sqlx.Tx, dest any, q sql.Querier) error {
	query, args := q.Query()
	return tx.GetContext(ctx, dest, query, args...)
}

func selectAll(ctx context.Context, tx *sqlx.Tx, dest any, q sql.Querier) error {
	query, args := q.Query()
	return tx.SelectContext(ctx, dest, query, args...)
}

func exec(ctx context.Context, tx *sqlx.Tx, q sql.Querier) (int64, error) {
	query, args := q.Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// isUniqueViolation recognises unique constraint failures from every
// supported driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
