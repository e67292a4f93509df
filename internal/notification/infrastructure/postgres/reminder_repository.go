package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/domain"
)

type ReminderRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewReminderRepository(log *slog.Logger, pool *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{log: log, pool: pool}
}

func (r *ReminderRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS scheduled_reminders (
		booking_id     TEXT NOT NULL,
		reminder_type  TEXT NOT NULL,
		scheduled_date DATE NOT NULL,
		check_in_date  DATE NOT NULL,
		hotel_id       TEXT NOT NULL,
		guest_name     TEXT NOT NULL,
		guest_email    TEXT NOT NULL,
		sent           BOOLEAN NOT NULL DEFAULT FALSE,
		cancelled      BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at        TIMESTAMPTZ,
		PRIMARY KEY (booking_id, reminder_type)
	)`)
	return err
}

func (r *ReminderRepository) Upsert(ctx context.Context, rem domain.ScheduledReminder) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO scheduled_reminders
		(booking_id, reminder_type, scheduled_date, check_in_date, hotel_id, guest_name, guest_email)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (booking_id, reminder_type) DO NOTHING`,
		rem.BookingID, rem.Type, rem.ScheduledDate, rem.CheckInDate, rem.HotelID, rem.GuestName, rem.GuestEmail)
	return err
}

func (r *ReminderRepository) CancelByBooking(ctx context.Context, bookingID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE scheduled_reminders SET cancelled=TRUE WHERE booking_id=$1`, bookingID)
	return err
}

func (r *ReminderRepository) DueOn(ctx context.Context, day time.Time) ([]domain.ScheduledReminder, error) {
	rows, err := r.pool.Query(ctx, `SELECT booking_id, reminder_type, scheduled_date, check_in_date, hotel_id, guest_name, guest_email, sent, cancelled, sent_at
		FROM scheduled_reminders
		WHERE scheduled_date = $1 AND sent = FALSE AND cancelled = FALSE`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.ScheduledReminder
	for rows.Next() {
		var rem domain.ScheduledReminder
		if err := rows.Scan(&rem.BookingID, &rem.Type, &rem.ScheduledDate, &rem.CheckInDate, &rem.HotelID,
			&rem.GuestName, &rem.GuestEmail, &rem.Sent, &rem.Cancelled, &rem.SentAt); err != nil {
			return nil, err
		}
		due = append(due, rem)
	}
	return due, rows.Err()
}

// Claim is the synchronization point between concurrent sweeps and the
// consumer's cancel writes: the row-level atomic update only succeeds for a
// row that is still unsent and uncancelled.
func (r *ReminderRepository) Claim(ctx context.Context, bookingID, reminderType string, at time.Time) (bool, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE scheduled_reminders SET sent=TRUE, sent_at=$3
		WHERE booking_id=$1 AND reminder_type=$2 AND sent=FALSE AND cancelled=FALSE`,
		bookingID, reminderType, at)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *ReminderRepository) Unclaim(ctx context.Context, bookingID, reminderType string) error {
	_, err := r.pool.Exec(ctx, `UPDATE scheduled_reminders SET sent=FALSE, sent_at=NULL
		WHERE booking_id=$1 AND reminder_type=$2`, bookingID, reminderType)
	return err
}
