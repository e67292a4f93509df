package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/application"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bookings (
			id            TEXT PRIMARY KEY,
			code          TEXT NOT NULL UNIQUE,
			hotel_id      TEXT NOT NULL,
			room_id       TEXT NOT NULL,
			check_in      DATE NOT NULL,
			check_out     DATE NOT NULL,
			user_id       TEXT NOT NULL,
			hold_id       TEXT NOT NULL UNIQUE,
			amount_cents  BIGINT NOT NULL,
			guest_name    TEXT NOT NULL,
			guest_email   TEXT NOT NULL,
			status        TEXT NOT NULL,
			cancel_reason TEXT NOT NULL DEFAULT '',
			rating        INT,
			feedback      TEXT NOT NULL DEFAULT '',
			late_checkout BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL,
			cancelled_at  TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS booking_guests (
			booking_id TEXT NOT NULL REFERENCES bookings(id),
			full_name  TEXT NOT NULL,
			age        INT NOT NULL,
			id_type    TEXT NOT NULL,
			id_number  TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS outbox (
			id             BIGSERIAL PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id   TEXT NOT NULL,
			type           TEXT NOT NULL,
			payload        BYTEA NOT NULL,
			headers        JSONB,
			traceparent    TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'pending',
			relay_id       TEXT,
			lease_until    TIMESTAMPTZ,
			retry_count    INT NOT NULL DEFAULT 0,
			last_error     TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (r *Repository) SaveWithOutbox(ctx context.Context, b domain.Booking, guests []domain.BookingGuest, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO bookings
		(id, code, hotel_id, room_id, check_in, check_out, user_id, hold_id, amount_cents, guest_name, guest_email, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		b.ID, b.Code, b.HotelID, b.RoomID, b.CheckIn, b.CheckOut, b.UserID, b.HoldID, b.AmountCents, b.GuestName, b.GuestEmail, b.Status, b.CreatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, g := range guests {
		batch.Queue(`INSERT INTO booking_guests (booking_id, full_name, age, id_type, id_number) VALUES ($1,$2,$3,$4,$5)`,
			b.ID, g.FullName, g.Age, g.IDType, g.IDNumber)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"booking", b.ID, eventType, payload, headers, traceparent)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// TransitionWithOutbox serializes concurrent transitions on the same booking:
// the UPDATE only matches when the current status is still in the allowed
// set, so a lost race surfaces as InvalidTransitionError instead of a silent
// overwrite.
func (r *Repository) TransitionWithOutbox(ctx context.Context, id string, allowed []domain.Status, to domain.Status, fields application.TransitionFields, eventType string, payload []byte, headers map[string]string, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	allowedStr := make([]string, 0, len(allowed))
	for _, s := range allowed {
		allowedStr = append(allowedStr, string(s))
	}

	ct, err := tx.Exec(ctx, `UPDATE bookings SET
			status        = $2,
			cancel_reason = COALESCE($3, cancel_reason),
			cancelled_at  = COALESCE($4, cancelled_at),
			rating        = COALESCE($5, rating),
			feedback      = COALESCE($6, feedback),
			late_checkout = COALESCE($7, late_checkout)
		WHERE id = $1 AND status = ANY($8)`,
		id, to, fields.CancelReason, fields.CancelledAt, fields.Rating, fields.Feedback, fields.LateCheckout, allowedStr)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var current string
		err := r.pool.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		return &domain.InvalidTransitionError{BookingID: id, Current: domain.Status(current), Requested: to}
	}

	if eventType != "" {
		_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
			VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
			"booking", id, eventType, payload, headers, traceparent)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Booking, error) {
	var b domain.Booking
	err := r.pool.QueryRow(ctx, `SELECT id, code, hotel_id, room_id, check_in, check_out, user_id, hold_id,
			amount_cents, guest_name, guest_email, status, cancel_reason, rating, feedback, late_checkout, created_at, cancelled_at
		FROM bookings WHERE id=$1`, id).
		Scan(&b.ID, &b.Code, &b.HotelID, &b.RoomID, &b.CheckIn, &b.CheckOut, &b.UserID, &b.HoldID,
			&b.AmountCents, &b.GuestName, &b.GuestEmail, &b.Status, &b.CancelReason, &b.Rating, &b.Feedback, &b.LateCheckout, &b.CreatedAt, &b.CancelledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *Repository) Guests(ctx context.Context, bookingID string) ([]domain.BookingGuest, error) {
	rows, err := r.pool.Query(ctx, `SELECT full_name, age, id_type, id_number FROM booking_guests WHERE booking_id=$1`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []domain.BookingGuest
	for rows.Next() {
		var g domain.BookingGuest
		if err := rows.Scan(&g.FullName, &g.Age, &g.IDType, &g.IDNumber); err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}
