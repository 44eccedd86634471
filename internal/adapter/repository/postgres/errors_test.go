package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/olek/paywire/internal/domain"
)

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"lock timeout", &pgconn.PgError{Code: pgErrLockNotAvailable}, domain.ErrLockTimeout},
		{"check violation", &pgconn.PgError{Code: pgErrCheckViolation}, domain.ErrBalanceInvariant},
		{"email unique violation", &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "accounts_email_key"}, domain.ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPgError(tt.in)
			if !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("unknown pg error passes through", func(t *testing.T) {
		in := &pgconn.PgError{Code: "42P01"}
		got := mapPgError(in)
		var pgErr *pgconn.PgError
		if !errors.As(got, &pgErr) || pgErr.Code != "42P01" {
			t.Fatalf("expected original error back, got %v", got)
		}
	})

	t.Run("other unique violation passes through", func(t *testing.T) {
		in := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "transactions_pkey"}
		if got := mapPgError(in); errors.Is(got, domain.ErrEmailTaken) {
			t.Fatalf("expected original error back, got %v", got)
		}
	})
}
