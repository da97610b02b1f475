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

type TripRepository interface {
	Create(ctx context.Context, trip *entity.Trip) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error)
	FindByRoute(ctx context.Context, departureCity, arrivalCity string) ([]*entity.Trip, error)
}

type tripRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTripRepository(db database.PgxIface, log *zap.Logger) TripRepository {
	return &tripRepository{
		db:  db,
		log: log.With(zap.String("repository", "trip")),
	}
}

func (r *tripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	query := `
		INSERT INTO trips (id, departure_city, arrival_city, departure_at, arrival_at, bus_ref, is_vip, seat_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		trip.ID,
		trip.DepartureCity,
		trip.ArrivalCity,
		trip.DepartureAt,
		trip.ArrivalAt,
		trip.BusRef,
		trip.VIP,
		trip.SeatCount,
		trip.CreatedAt,
		trip.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create trip",
			zap.Error(err),
			zap.String("trip_id", trip.ID.String()),
		)
		return fmt.Errorf("create trip %s: %w", trip.ID.String(), err)
	}

	return nil
}

func (r *tripRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	query := `
		SELECT id, departure_city, arrival_city, departure_at, arrival_at, bus_ref, is_vip, seat_count, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	var trip entity.Trip
	err := r.db.QueryRow(ctx, query, id).Scan(
		&trip.ID,
		&trip.DepartureCity,
		&trip.ArrivalCity,
		&trip.DepartureAt,
		&trip.ArrivalAt,
		&trip.BusRef,
		&trip.VIP,
		&trip.SeatCount,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find trip by ID",
			zap.Error(err),
			zap.String("trip_id", id.String()),
		)
		return nil, fmt.Errorf("find trip by ID %s: %w", id.String(), err)
	}

	return &trip, nil
}

func (r *tripRepository) FindByRoute(ctx context.Context, departureCity, arrivalCity string) ([]*entity.Trip, error) {
	query := `
		SELECT id, departure_city, arrival_city, departure_at, arrival_at, bus_ref, is_vip, seat_count, created_at, updated_at
		FROM trips
		WHERE departure_city = $1 AND arrival_city = $2
		ORDER BY departure_at
	`

	rows, err := r.db.Query(ctx, query, departureCity, arrivalCity)
	if err != nil {
		r.log.Error("Failed to find trips by route",
			zap.Error(err),
			zap.String("departure_city", departureCity),
			zap.String("arrival_city", arrivalCity),
		)
		return nil, fmt.Errorf("find trips by route %s-%s: %w", departureCity, arrivalCity, err)
	}
	defer rows.Close()

	var trips []*entity.Trip
	for rows.Next() {
		var trip entity.Trip
		err := rows.Scan(
			&trip.ID,
			&trip.DepartureCity,
			&trip.ArrivalCity,
			&trip.DepartureAt,
			&trip.ArrivalAt,
			&trip.BusRef,
			&trip.VIP,
			&trip.SeatCount,
			&trip.CreatedAt,
			&trip.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan trip row", zap.Error(err))
			return nil, fmt.Errorf("scan trip row: %w", err)
		}
		trips = append(trips, &trip)
	}

	return trips, nil
}
