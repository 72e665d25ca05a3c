package repository

import (
	"context"
	"log/slog"
	"time"

	"facility-booking/internal/domain/facility"
	"facility-booking/internal/infra"
	"facility-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type FacilityRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewFacilityRepository(db DBTX, logger *slog.Logger) *FacilityRepository {
	return &FacilityRepository{db: db, logger: logger}
}

func (r *FacilityRepository) Insert(ctx context.Context, f *facility.Facility) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO facilities (id, owner_id, name, hourly_rate, active, total_bookings, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)`,
		f.ID(), f.OwnerID(), f.Name(), pgconv.DecimalToText(f.HourlyRate()), f.IsActive(), f.TotalBookings(),
		f.CreatedAt(), f.UpdatedAt())
	if err != nil {
		return wrapErr(r.logger, "failed to insert facility", err)
	}
	return nil
}

func (r *FacilityRepository) InsertSpace(ctx context.Context, s *facility.Space) error {
	_, err := r.db.Exec(ctx, `INSERT INTO spaces (id, facility_id, name) VALUES ($1, $2, $3)`,
		s.ID(), s.FacilityID(), s.Name())
	if err != nil {
		return wrapErr(r.logger, "failed to insert space", err)
	}
	return nil
}

func (r *FacilityRepository) FindByID(ctx context.Context, id uuid.UUID) (*facility.Facility, error) {
	var (
		fid, ownerID         uuid.UUID
		name, rate           string
		active               bool
		total                int
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, name, hourly_rate::text, active, total_bookings, created_at, updated_at
		FROM facilities WHERE id = $1`, id).
		Scan(&fid, &ownerID, &name, &rate, &active, &total, &createdAt, &updatedAt)
	if err != nil {
		return nil, wrapErr(r.logger, "facility not found", err)
	}

	hourlyRate, err := pgconv.DecimalFromText(rate)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to parse facility rate", err)
	}
	return facility.ReconstructFacility(fid, ownerID, name, hourlyRate, active, total, createdAt, updatedAt), nil
}

func (r *FacilityRepository) FindSpace(ctx context.Context, id uuid.UUID) (*facility.Space, error) {
	var (
		sid, facilityID uuid.UUID
		name            string
	)
	err := r.db.QueryRow(ctx, `SELECT id, facility_id, name FROM spaces WHERE id = $1`, id).
		Scan(&sid, &facilityID, &name)
	if err != nil {
		return nil, wrapErr(r.logger, "space not found", err)
	}
	return facility.ReconstructSpace(sid, facilityID, name), nil
}

func (r *FacilityRepository) IncrementBookings(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE facilities SET total_bookings = total_bookings + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return wrapErr(r.logger, "failed to increment bookings", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NotFound("facility not found")
	}
	return nil
}

func (r *FacilityRepository) ListIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM facilities WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to list owner facilities", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, wrapErr(r.logger, "failed to scan owner facilities", err)
	}
	return ids, nil
}
