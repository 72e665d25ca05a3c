package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/infra"
	"facility-booking/internal/pkg/errs"
	"facility-booking/internal/pkg/pgconv"
	"facility-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type ReservationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewReservationRepository(db DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{db: db, logger: logger}
}

// numerics leave the database as text so decimals never pass through float64
const reservationColumns = `
	id, consumer_id, owner_id, facility_id, space_id, start_at, end_at,
	hourly_rate::text, duration_hours::text, commission_rate::text,
	subtotal::text, commission::text, total::text, currency,
	status, payment_status, payment_reference, payment_method, payment_failure_reason, refunded_amount::text,
	cancellation_reason, cancelled_by, cancelled_by_id, refund_rate::text, refund_amount::text, cancelled_at,
	has_review, review_deadline, reminder_sent_at, review_reminder_sent_at,
	confirmed_at, started_at, completed_at, created_at, updated_at, version`

func (r *ReservationRepository) Insert(ctx context.Context, res *reservation.Reservation) error {
	s := res.State()
	c := cancellationParams(s.Cancellation)
	_, err := r.db.Exec(ctx, `
		INSERT INTO reservations (
			id, consumer_id, owner_id, facility_id, space_id, start_at, end_at,
			hourly_rate, duration_hours, commission_rate, subtotal, commission, total, currency,
			status, payment_status, payment_reference, payment_method, payment_failure_reason, refunded_amount,
			cancellation_reason, cancelled_by, cancelled_by_id, refund_rate, refund_amount, cancelled_at,
			has_review, review_deadline, reminder_sent_at, review_reminder_sent_at,
			confirmed_at, started_at, completed_at, created_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8::numeric, $9::numeric, $10::numeric, $11::numeric, $12::numeric, $13::numeric, $14,
			$15, $16, $17, $18, $19, $20::numeric,
			$21, $22, $23, $24::numeric, $25::numeric, $26,
			$27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36
		)`,
		s.ID, s.ConsumerID, s.OwnerID, s.FacilityID, pgconv.UUIDPtrToPgtype(s.SpaceID), s.Start, s.End,
		pgconv.DecimalToText(s.Pricing.HourlyRate), pgconv.DecimalToText(s.Pricing.DurationHours),
		pgconv.DecimalToText(s.Pricing.CommissionRate), s.Pricing.Subtotal.String(), s.Pricing.Commission.String(),
		s.Pricing.Total.String(), s.Currency,
		string(s.Status), string(s.Payment.Status), s.Payment.Reference, s.Payment.Method, s.Payment.FailureReason,
		s.Payment.RefundedAmount.String(),
		c.reason, c.by, c.byID, c.rate, c.amount, c.at,
		s.HasReview, pgconv.TimePtrToPgtype(s.ReviewDeadline),
		pgconv.TimePtrToPgtype(s.ReminderSentAt), pgconv.TimePtrToPgtype(s.ReviewReminderSentAt),
		pgconv.TimePtrToPgtype(s.ConfirmedAt), pgconv.TimePtrToPgtype(s.StartedAt), pgconv.TimePtrToPgtype(s.CompletedAt),
		s.CreatedAt, s.UpdatedAt, s.Version,
	)
	if err != nil {
		return wrapErr(r.logger, "failed to insert reservation", err)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row)
	if err != nil {
		return nil, wrapErr(r.logger, "reservation not found", err)
	}
	return res, nil
}

// Update writes every mutable column when the stored version still matches.
func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	s := res.State()
	c := cancellationParams(s.Cancellation)
	tag, err := r.db.Exec(ctx, `
		UPDATE reservations SET
			status = $3, payment_status = $4, payment_reference = $5, payment_method = $6,
			payment_failure_reason = $7, refunded_amount = $8::numeric,
			cancellation_reason = $9, cancelled_by = $10, cancelled_by_id = $11,
			refund_rate = $12::numeric, refund_amount = $13::numeric, cancelled_at = $14,
			has_review = $15, review_deadline = $16, reminder_sent_at = $17, review_reminder_sent_at = $18,
			confirmed_at = $19, started_at = $20, completed_at = $21,
			updated_at = $22, version = version + 1
		WHERE id = $1 AND version = $2`,
		s.ID, s.Version,
		string(s.Status), string(s.Payment.Status), s.Payment.Reference, s.Payment.Method,
		s.Payment.FailureReason, s.Payment.RefundedAmount.String(),
		c.reason, c.by, c.byID, c.rate, c.amount, c.at,
		s.HasReview, pgconv.TimePtrToPgtype(s.ReviewDeadline),
		pgconv.TimePtrToPgtype(s.ReminderSentAt), pgconv.TimePtrToPgtype(s.ReviewReminderSentAt),
		pgconv.TimePtrToPgtype(s.ConfirmedAt), pgconv.TimePtrToPgtype(s.StartedAt), pgconv.TimePtrToPgtype(s.CompletedAt),
		s.UpdatedAt,
	)
	if err != nil {
		return wrapErr(r.logger, "failed to update reservation", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
		return wrapErr(r.logger, "failed to check reservation", err)
	}
	if !exists {
		return infra.NotFound("reservation not found")
	}
	return infra.StaleWrite("reservation version changed")
}

func (r *ReservationRepository) Occupancy(ctx context.Context, facilityID uuid.UUID, from, to time.Time) ([]reservation.Occupancy, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, start_at, end_at, status
		FROM reservations
		WHERE facility_id = $1 AND status = ANY($2) AND start_at < $4 AND end_at > $3
		ORDER BY start_at`,
		facilityID, statusStrings(reservation.ActiveStatuses), from, to)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to read occupancy", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (reservation.Occupancy, error) {
		var (
			o      reservation.Occupancy
			status string
		)
		if err := row.Scan(&o.ReservationID, &o.Start, &o.End, &status); err != nil {
			return o, err
		}
		o.Status = reservation.Status(status)
		return o, nil
	})
	if err != nil {
		return nil, wrapErr(r.logger, "failed to scan occupancy", err)
	}
	return out, nil
}

func (r *ReservationRepository) CountPending(ctx context.Context, consumerID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM reservations WHERE consumer_id = $1 AND status = $2`,
		consumerID, string(reservation.StatusPending)).Scan(&n)
	if err != nil {
		return 0, wrapErr(r.logger, "failed to count pending reservations", err)
	}
	return n, nil
}

func (r *ReservationRepository) CountSameDay(ctx context.Context, consumerID uuid.UUID, dayStart, dayEnd time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM reservations
		WHERE consumer_id = $1 AND status = ANY($2) AND start_at BETWEEN $3 AND $4`,
		consumerID, statusStrings(reservation.QuotaStatuses), dayStart, dayEnd).Scan(&n)
	if err != nil {
		return 0, wrapErr(r.logger, "failed to count same-day reservations", err)
	}
	return n, nil
}

func (r *ReservationRepository) ListDue(ctx context.Context, f shared.DueFilter) ([]uuid.UUID, error) {
	var (
		where string
		args  []any
	)
	switch f.Kind {
	case shared.SweepStart:
		where, args = `status = 'confirmed' AND start_at <= $1 AND end_at > $1`, []any{f.Now}
	case shared.SweepComplete:
		where, args = `status IN ('confirmed', 'in_progress') AND end_at <= $1`, []any{f.Now}
	case shared.SweepExpire:
		where, args = `status = 'pending' AND payment_status <> 'succeeded' AND created_at <= $1`, []any{f.Cutoff}
	case shared.SweepRemind:
		where = `status = 'confirmed' AND reminder_sent_at IS NULL AND start_at > $1 AND start_at <= $2`
		args = []any{f.Now, f.Cutoff}
	case shared.SweepReviewRemind:
		// an unset deadline falls back to completion + window, which the entity re-checks
		where = `status = 'completed' AND review_reminder_sent_at IS NULL AND completed_at <= $1
			AND (review_deadline IS NULL OR review_deadline >= $2)`
		args = []any{f.Cutoff, f.Now}
	default:
		return nil, errs.Newf("unknown sweep kind %q", f.Kind)
	}

	query := `SELECT id FROM reservations WHERE ` + where + ` ORDER BY id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to list due reservations", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, wrapErr(r.logger, "failed to scan due reservations", err)
	}
	return ids, nil
}

func (r *ReservationRepository) List(ctx context.Context, f shared.ReservationFilter) ([]*reservation.Reservation, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ParticipantID != nil {
		p := arg(*f.ParticipantID)
		switch f.Role {
		case shared.AsConsumer:
			conds = append(conds, "consumer_id = "+p)
		case shared.AsOwner:
			conds = append(conds, "owner_id = "+p)
		default:
			conds = append(conds, "(consumer_id = "+p+" OR owner_id = "+p+")")
		}
	}
	if f.Status != nil {
		conds = append(conds, "status = "+arg(string(*f.Status)))
	}
	if f.After != nil {
		conds = append(conds, "(start_at, id) < ("+arg(f.After.At)+", "+arg(f.After.ID)+")")
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(r.logger, "failed to list reservations", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, wrapErr(r.logger, "failed to scan reservation", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.logger, "failed to iterate reservations", err)
	}
	return out, nil
}

type cancellationArgs struct {
	reason pgtype.Text
	by     pgtype.Text
	byID   pgtype.UUID
	rate   pgtype.Text
	amount pgtype.Text
	at     pgtype.Timestamptz
}

func cancellationParams(c *reservation.Cancellation) cancellationArgs {
	if c == nil {
		return cancellationArgs{}
	}
	return cancellationArgs{
		reason: pgconv.StringToPgtype(c.Reason),
		by:     pgconv.StringToPgtype(string(c.InitiatedBy)),
		byID:   pgconv.UUIDToPgtype(c.InitiatorID),
		rate:   pgconv.StringToPgtype(c.RefundRate.String()),
		amount: pgconv.StringToPgtype(c.RefundAmount.String()),
		at:     pgconv.TimeToPgtype(c.CancelledAt),
	}
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		s                                              reservation.State
		spaceID, cancelledByID                         pgtype.UUID
		hourlyRate, duration, commissionRate           string
		subtotal, commission, total, refunded          string
		status, paymentStatus                          string
		cancelReason, cancelledBy, refundRate, refundA pgtype.Text
		cancelledAt, reviewDeadline                    pgtype.Timestamptz
		reminderSentAt, reviewReminderSentAt           pgtype.Timestamptz
		confirmedAt, startedAt, completedAt            pgtype.Timestamptz
	)
	err := row.Scan(
		&s.ID, &s.ConsumerID, &s.OwnerID, &s.FacilityID, &spaceID, &s.Start, &s.End,
		&hourlyRate, &duration, &commissionRate, &subtotal, &commission, &total, &s.Currency,
		&status, &paymentStatus, &s.Payment.Reference, &s.Payment.Method, &s.Payment.FailureReason, &refunded,
		&cancelReason, &cancelledBy, &cancelledByID, &refundRate, &refundA, &cancelledAt,
		&s.HasReview, &reviewDeadline, &reminderSentAt, &reviewReminderSentAt, &confirmedAt, &startedAt, &completedAt, &s.CreatedAt, &s.UpdatedAt, &s.Version,
	)
	if err != nil {
		return nil, err
	}

	decimals, err := parseDecimals(hourlyRate, duration, commissionRate, subtotal, commission, total, refunded)
	if err != nil {
		return nil, err
	}
	s.Pricing = reservation.PriceBreakdown{
		HourlyRate:     decimals[0],
		DurationHours:  decimals[1],
		CommissionRate: decimals[2],
		Subtotal:       reservation.NewMoney(decimals[3]),
		Commission:     reservation.NewMoney(decimals[4]),
		Total:          reservation.NewMoney(decimals[5]),
	}
	s.Payment.RefundedAmount = reservation.NewMoney(decimals[6])
	s.Status = reservation.Status(status)
	s.Payment.Status = reservation.PaymentStatus(paymentStatus)
	s.SpaceID = pgconv.UUIDPtrFromPgtype(spaceID)
	s.ReviewDeadline = pgconv.TimePtrFromPgtype(reviewDeadline)
	s.ReminderSentAt = pgconv.TimePtrFromPgtype(reminderSentAt)
	s.ReviewReminderSentAt = pgconv.TimePtrFromPgtype(reviewReminderSentAt)
	s.ConfirmedAt = pgconv.TimePtrFromPgtype(confirmedAt)
	s.StartedAt = pgconv.TimePtrFromPgtype(startedAt)
	s.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)

	if cancelledAt.Valid {
		rate, err := pgconv.DecimalPtrFromText(refundRate)
		if err != nil {
			return nil, err
		}
		amount, err := pgconv.DecimalPtrFromText(refundA)
		if err != nil {
			return nil, err
		}
		c := &reservation.Cancellation{
			Reason:      pgconv.StringFromPgtype(cancelReason),
			InitiatedBy: reservation.Party(pgconv.StringFromPgtype(cancelledBy)),
			CancelledAt: cancelledAt.Time,
		}
		if id := pgconv.UUIDPtrFromPgtype(cancelledByID); id != nil {
			c.InitiatorID = *id
		}
		if rate != nil {
			c.RefundRate = *rate
		}
		if amount != nil {
			c.RefundAmount = reservation.NewMoney(*amount)
		}
		s.Cancellation = c
	}
	return reservation.Reconstruct(s), nil
}

func parseDecimals(values ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		d, err := pgconv.DecimalFromText(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func statusStrings(statuses []reservation.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
