//go:build unit || e2e

package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by *pgxpool.Pool and pgx.Tx.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func CreateTestFacility(t *testing.T, db DBLike, ownerID uuid.UUID, name, hourlyRate string) uuid.UUID {
	t.Helper()

	facilityID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO facilities (id, owner_id, name, hourly_rate, active) VALUES ($1, $2, $3, $4::numeric, true)",
		facilityID, ownerID, name, hourlyRate)
	require.NoError(t, err)

	return facilityID
}

func CreateTestSpace(t *testing.T, db DBLike, facilityID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	spaceID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO spaces (id, facility_id, name) VALUES ($1, $2, $3)", spaceID, facilityID, name)
	require.NoError(t, err)

	return spaceID
}

func DeactivateFacility(t *testing.T, db DBLike, facilityID uuid.UUID) {
	t.Helper()

	_, err := db.Exec(context.Background(), "UPDATE facilities SET active = false WHERE id = $1", facilityID)
	require.NoError(t, err)
}

// CreateCompletedReservation inserts a paid reservation that ended two hours ago with its review window open.
func CreateCompletedReservation(t *testing.T, db DBLike, consumerID, ownerID, facilityID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	end := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Hour)
	start := end.Add(-2 * time.Hour)
	_, err := db.Exec(context.Background(), `
		INSERT INTO reservations (
			id, consumer_id, owner_id, facility_id, start_at, end_at,
			hourly_rate, duration_hours, commission_rate, subtotal, commission, total, currency,
			status, payment_status, payment_reference, payment_method,
			review_deadline, confirmed_at, started_at, completed_at, created_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			40.00, 2, 0.15, 80.00, 12.00, 92.00, 'EUR',
			'completed', 'succeeded', 'pi_fixture', 'card',
			$7, $8, $5, $6, $8, $6, 4
		)`,
		id, consumerID, ownerID, facilityID, start, end,
		end.Add(30*24*time.Hour), start.Add(-48*time.Hour))
	require.NoError(t, err)

	return id
}

// CountActiveOverlaps counts pairs of active reservations of a facility whose intervals intersect.
func CountActiveOverlaps(t *testing.T, db DBLike, facilityID uuid.UUID) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), `
		SELECT count(*)
		FROM reservations a
		JOIN reservations b ON a.facility_id = b.facility_id AND a.id < b.id
		WHERE a.facility_id = $1
		  AND a.status IN ('pending', 'confirmed', 'in_progress')
		  AND b.status IN ('pending', 'confirmed', 'in_progress')
		  AND a.start_at < b.end_at AND b.start_at < a.end_at`, facilityID).Scan(&n)
	require.NoError(t, err)
	return n
}

const resetSQL = `TRUNCATE reviews, profile_ratings, reservations, spaces, facilities CASCADE`

// ResetDB empties every table between subtests.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx, resetSQL)
	return err
}
