//go:build unit

package repository

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"facility-booking/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapErr(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		name string
		err  error
		want infra.RepositoryErrorKind
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: infra.KindNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: pgErrUniqueViolation}, want: infra.KindDuplicateKey},
		{name: "foreign key violation", err: &pgconn.PgError{Code: pgErrForeignKeyViolation}, want: infra.KindForeignKeyViolated},
		{name: "exclusion violation", err: &pgconn.PgError{Code: pgErrExclusionViolation, ConstraintName: "reservations_no_overlap"}, want: infra.KindExclusionViolated},
		{name: "other pg error", err: &pgconn.PgError{Code: "42P01"}, want: infra.KindDBFailure},
		{name: "plain error", err: errors.New("conn reset"), want: infra.KindDBFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := wrapErr(logger, "op", tc.err)
			assert.True(t, infra.IsKind(got, tc.want), got.Error())
		})
	}

	t.Run("serialization failures stay reachable", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "40001"}
		got := wrapErr(logger, "op", pgErr)

		var target *pgconn.PgError
		assert.True(t, errors.As(got, &target))
		assert.Equal(t, "40001", target.Code)
	})
}
