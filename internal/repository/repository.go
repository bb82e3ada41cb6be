// Package repository implements all database access for bookings.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asiacuisine/reservation-api/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested booking does not exist.
var ErrNotFound = errors.New("booking not found")

// ErrDateTaken is returned when a booking already exists for the date.
// The unique constraint on booking_date is the sole conflict-prevention
// mechanism: two concurrent inserts for the same date yield exactly one
// success and one ErrDateTaken.
var ErrDateTaken = errors.New("date already booked")

// ErrTableMissing is returned when the bookings table has not been created
// yet (first deployment). The availability read path treats it as an empty
// data set.
var ErrTableMissing = errors.New("bookings table does not exist")

const createTableSQL = `
CREATE TABLE IF NOT EXISTS bookings (
	id SERIAL PRIMARY KEY,
	service VARCHAR(255) NOT NULL,
	booking_date DATE NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(50),
	message TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// BookingRepository owns the bookings table.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// EnsureSchema idempotently creates the bookings table. It is run once at
// process startup, serialized under an advisory lock so concurrent cold
// starts do not race the DDL.
func (r *BookingRepository) EnsureSchema(ctx context.Context) error {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	const schemaLockID int64 = 727401193
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, schemaLockID)
	}()

	if _, err := conn.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}
	return nil
}

// Insert atomically persists a new booking and returns it with its generated
// id and creation timestamp. There is deliberately no existence pre-check:
// check-then-insert is racy, so conflicts surface only through the unique
// constraint.
func (r *BookingRepository) Insert(ctx context.Context, b model.Booking) (model.Booking, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO bookings (service, booking_date, name, email, phone, message)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		 RETURNING id, created_at`,
		b.Service, b.BookingDate.Time, b.Name, b.Email, b.Phone, b.Message,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Booking{}, ErrDateTaken
		}
		return model.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	return b, nil
}

// ListBookedDates returns every date that already has a booking, in no
// particular order.
func (r *BookingRepository) ListBookedDates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_date FROM bookings`)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, ErrTableMissing
		}
		return nil, fmt.Errorf("list booked dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan booked date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return nil, ErrTableMissing
		}
		return nil, err
	}
	return dates, nil
}

// ListAll returns all bookings ordered by booking date descending.
func (r *BookingRepository) ListAll(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, service, booking_date, name, email,
		        COALESCE(phone, ''), COALESCE(message, ''), created_at
		 FROM bookings
		 ORDER BY booking_date DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		var date time.Time
		if err := rows.Scan(&b.ID, &b.Service, &date, &b.Name, &b.Email, &b.Phone, &b.Message, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.BookingDate = model.NewDate(date)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Delete removes a booking by id, returning ErrNotFound when no row matches.
func (r *BookingRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
