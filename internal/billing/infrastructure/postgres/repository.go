package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS bills (
		booking_id   TEXT PRIMARY KEY,
		bill_number  TEXT NOT NULL,
		amount_cents BIGINT NOT NULL,
		status       TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		paid_at      TIMESTAMPTZ
	)`)
	return err
}

func (r *Repository) Create(ctx context.Context, b domain.Bill) (bool, error) {
	ct, err := r.pool.Exec(ctx, `INSERT INTO bills (booking_id, bill_number, amount_cents, status, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (booking_id) DO NOTHING`,
		b.BookingID, b.BillNumber, b.AmountCents, b.Status, b.CreatedAt)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repository) GetByBookingID(ctx context.Context, bookingID string) (domain.Bill, error) {
	var b domain.Bill
	err := r.pool.QueryRow(ctx, `SELECT booking_id, bill_number, amount_cents, status, created_at, paid_at FROM bills WHERE booking_id=$1`, bookingID).
		Scan(&b.BookingID, &b.BillNumber, &b.AmountCents, &b.Status, &b.CreatedAt, &b.PaidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Bill{}, domain.ErrBillNotFound
	}
	if err != nil {
		return domain.Bill{}, err
	}
	return b, nil
}

func (r *Repository) MarkPaid(ctx context.Context, bookingID string, at time.Time) error {
	ct, err := r.pool.Exec(ctx, `UPDATE bills SET status=$2, paid_at=$3 WHERE booking_id=$1 AND status=$4`,
		bookingID, domain.BillPaid, at, domain.BillGenerated)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var status string
		err := r.pool.QueryRow(ctx, `SELECT status FROM bills WHERE booking_id=$1`, bookingID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBillNotFound
		}
		if err != nil {
			return err
		}
		return domain.ErrBillAlreadyPaid
	}
	return nil
}
