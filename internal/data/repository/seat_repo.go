package repository

import (
	"context"
	"fmt"

	"bus-booking/internal/data/entity"
	"bus-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SeatRepository interface {
	CreateBatch(ctx context.Context, seats []*entity.Seat) error
	FindByTripID(ctx context.Context, tripID uuid.UUID) ([]*entity.Seat, error)
	FindByNumber(ctx context.Context, tripID uuid.UUID, seatNumber string) (*entity.Seat, error)

	// MarkOccupied is the system's only concurrency control: a conditional
	// write that succeeds iff the seat is currently free. The loser of a race
	// gets ErrSeatConflict.
	MarkOccupied(ctx context.Context, tripID uuid.UUID, seatNumber string) error
	Release(ctx context.Context, tripID uuid.UUID, seatNumber string) error
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

func (r *seatRepository) CreateBatch(ctx context.Context, seats []*entity.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// Build batch insert
	query := `INSERT INTO seats (id, trip_id, seat_number, seat_row, seat_column, seat_type, price_modifier_pct, occupied, created_at, updated_at) VALUES `
	args := []interface{}{}

	for i, seat := range seats {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*10+1, i*10+2, i*10+3, i*10+4, i*10+5, i*10+6, i*10+7, i*10+8, i*10+9, i*10+10)

		args = append(args,
			seat.ID,
			seat.TripID,
			seat.SeatNumber,
			seat.SeatRow,
			seat.SeatColumn,
			seat.Type,
			seat.PriceModifierPct,
			seat.Occupied,
			seat.CreatedAt,
			seat.UpdatedAt,
		)
	}

	// ON CONFLICT: two callers may materialize the fallback layout for the
	// same trip concurrently; the layout is deterministic so the first write
	// wins and the rest are no-ops.
	query += ` ON CONFLICT (trip_id, seat_number) DO NOTHING`

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to create batch seats",
			zap.Error(err),
			zap.Int("count", len(seats)),
		)
		return fmt.Errorf("create batch seats: %w", err)
	}

	return nil
}

func (r *seatRepository) FindByTripID(ctx context.Context, tripID uuid.UUID) ([]*entity.Seat, error) {
	query := `
		SELECT id, trip_id, seat_number, seat_row, seat_column, seat_type, price_modifier_pct, occupied, created_at, updated_at
		FROM seats
		WHERE trip_id = $1
		ORDER BY seat_row, seat_column
	`

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		r.log.Error("Failed to find seats by trip ID",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
		)
		return nil, fmt.Errorf("find seats by trip ID %s: %w", tripID.String(), err)
	}
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.TripID,
			&seat.SeatNumber,
			&seat.SeatRow,
			&seat.SeatColumn,
			&seat.Type,
			&seat.PriceModifierPct,
			&seat.Occupied,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, &seat)
	}

	return seats, nil
}

func (r *seatRepository) FindByNumber(ctx context.Context, tripID uuid.UUID, seatNumber string) (*entity.Seat, error) {
	query := `
		SELECT id, trip_id, seat_number, seat_row, seat_column, seat_type, price_modifier_pct, occupied, created_at, updated_at
		FROM seats
		WHERE trip_id = $1 AND seat_number = $2
	`

	var seat entity.Seat
	err := r.db.QueryRow(ctx, query, tripID, seatNumber).Scan(
		&seat.ID,
		&seat.TripID,
		&seat.SeatNumber,
		&seat.SeatRow,
		&seat.SeatColumn,
		&seat.Type,
		&seat.PriceModifierPct,
		&seat.Occupied,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat by number",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.String("seat_number", seatNumber),
		)
		return nil, fmt.Errorf("find seat %s on trip %s: %w", seatNumber, tripID.String(), err)
	}

	return &seat, nil
}

func (r *seatRepository) MarkOccupied(ctx context.Context, tripID uuid.UUID, seatNumber string) error {
	query := `
		UPDATE seats SET occupied = true, updated_at = NOW()
		WHERE trip_id = $1 AND seat_number = $2 AND occupied = false
	`

	result, err := r.db.Exec(ctx, query, tripID, seatNumber)
	if err != nil {
		r.log.Error("Failed to mark seat occupied",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.String("seat_number", seatNumber),
		)
		return fmt.Errorf("mark seat %s occupied on trip %s: %w", seatNumber, tripID.String(), err)
	}

	// Zero rows means the compare-and-set lost: the seat is already occupied
	// or does not exist.
	if result.RowsAffected() == 0 {
		return fmt.Errorf("seat %s on trip %s: %w", seatNumber, tripID.String(), ErrSeatConflict)
	}

	return nil
}

func (r *seatRepository) Release(ctx context.Context, tripID uuid.UUID, seatNumber string) error {
	query := `
		UPDATE seats SET occupied = false, updated_at = NOW()
		WHERE trip_id = $1 AND seat_number = $2 AND occupied = true
	`

	result, err := r.db.Exec(ctx, query, tripID, seatNumber)
	if err != nil {
		r.log.Error("Failed to release seat",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
			zap.String("seat_number", seatNumber),
		)
		return fmt.Errorf("release seat %s on trip %s: %w", seatNumber, tripID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("seat %s on trip %s: %w", seatNumber, tripID.String(), ErrSeatNotFound)
	}

	return nil
}
