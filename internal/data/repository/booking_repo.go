package repository

import (
	"context"
	"errors"
	"fmt"

	"bus-booking/internal/data/entity"
	"bus-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const bookingColumns = `id, trip_id, user_id, seat_number, booking_reference, unit_price, payment_status, payment_method, status, created_at, updated_at`

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByReference(ctx context.Context, reference string) ([]*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindActiveSeatBooking(ctx context.Context, tripID, userID uuid.UUID, seatNumber string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.TripID,
		booking.UserID,
		booking.SeatNumber,
		booking.BookingReference,
		booking.UnitPrice,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		// 23505 on the partial unique index: this user already holds a live
		// booking for this (trip, seat). Surfaced as ErrDuplicateSeat so the
		// usecase returns the existing row instead of failing the retry.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("booking seat %s on trip %s for user %s: %w",
				booking.SeatNumber, booking.TripID.String(), booking.UserID.String(), ErrDuplicateSeat)
		}

		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_reference", booking.BookingReference),
			zap.String("user_id", booking.UserID.String()),
			zap.String("seat_number", booking.SeatNumber),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingReference, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanOne(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByReference(ctx context.Context, reference string) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_reference = $1
		ORDER BY seat_number
	`

	rows, err := r.db.Query(ctx, query, reference)
	if err != nil {
		r.log.Error("Failed to find bookings by reference",
			zap.Error(err),
			zap.String("booking_reference", reference),
		)
		return nil, fmt.Errorf("find bookings by reference %s: %w", reference, err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC, seat_number
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindActiveSeatBooking(ctx context.Context, tripID, userID uuid.UUID, seatNumber string) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE trip_id = $1 AND user_id = $2 AND seat_number = $3 AND status <> 'cancelled'
	`

	booking, err := r.scanOne(r.db.QueryRow(ctx, query, tripID, userID, seatNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("Failed to find active seat booking",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.String("user_id", userID.String()),
			zap.String("seat_number", seatNumber),
		)
		return nil, fmt.Errorf("find active booking for seat %s on trip %s: %w", seatNumber, tripID.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", bookingID.String(), ErrBookingNotFound)
	}

	return nil
}

func (r *bookingRepository) scanOne(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.TripID,
		&booking.UserID,
		&booking.SeatNumber,
		&booking.BookingReference,
		&booking.UnitPrice,
		&booking.PaymentStatus,
		&booking.PaymentMethod,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) scanAll(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanOne(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}
