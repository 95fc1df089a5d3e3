package database

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors repositories return so callers can branch on error class
// without depending on PostgreSQL internals.
var (
	ErrNotFound            = errors.New("not found")
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)

// MapError translates pgx/PostgreSQL errors to sentinel errors. The original
// error stays available via errors.Unwrap for logging.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return wrapped{sentinel: ErrUniqueViolation, err: err}
	case pgerrcode.ForeignKeyViolation:
		return wrapped{sentinel: ErrForeignKeyViolation, err: err}
	}
	return err
}

type wrapped struct {
	sentinel error
	err      error
}

func (w wrapped) Error() string { return w.sentinel.Error() + ": " + w.err.Error() }

func (w wrapped) Is(target error) bool { return target == w.sentinel }

func (w wrapped) Unwrap() error { return w.err }
