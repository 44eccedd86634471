package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/olek/paywire/internal/domain"
)

// PostgreSQL error codes this package maps or retries.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
	pgErrCheckViolation       = "23514"
	pgErrUniqueViolation      = "23505"
)

// mapPgError translates driver-level failures into domain sentinels where
// a stable meaning exists; everything else passes through untouched.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrLockNotAvailable:
		return domain.ErrLockTimeout
	case pgErrCheckViolation:
		return domain.ErrBalanceInvariant
	case pgErrUniqueViolation:
		if pgErr.ConstraintName == "accounts_email_key" {
			return domain.ErrEmailTaken
		}
		return err
	default:
		return err
	}
}
