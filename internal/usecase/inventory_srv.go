package usecase

import (
	"context"
	"fmt"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryService interface {
	// CreateTrip registers a trip; its seat layout is materialized lazily on
	// the first layout fetch.
	CreateTrip(ctx context.Context, req *request.CreateTripRequest) (*response.TripResponse, error)

	// FindTrips lists trips on one route, soonest departure first.
	FindTrips(ctx context.Context, departureCity, arrivalCity string) ([]response.TripResponse, error)

	// GetLayout returns the trip's seats grouped by row, sorted by column.
	// Trips without a persisted layout get the deterministic fallback.
	GetLayout(ctx context.Context, tripID uuid.UUID) ([]*entity.Seat, error)

	// IsAvailable is the optimistic check; MarkOccupied is the pessimistic
	// confirmation (compare-and-set). Both are re-run immediately before any
	// reservation write.
	IsAvailable(ctx context.Context, tripID uuid.UUID, seatNumber string) (bool, error)
	MarkOccupied(ctx context.Context, tripID uuid.UUID, seatNumber string) error
	Release(ctx context.Context, tripID uuid.UUID, seatNumber string) error
}

type inventoryService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewInventoryService(repo *repository.Repository, log *zap.Logger) InventoryService {
	return &inventoryService{
		repo: repo,
		log:  log.With(zap.String("service", "inventory")),
	}
}

func (s *inventoryService) CreateTrip(ctx context.Context, req *request.CreateTripRequest) (*response.TripResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create trip validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	trip := &entity.Trip{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DepartureCity: req.DepartureCity,
		ArrivalCity:   req.ArrivalCity,
		DepartureAt:   req.DepartureAt,
		ArrivalAt:     req.ArrivalAt,
		BusRef:        req.BusRef,
		VIP:           req.VIP,
		SeatCount:     req.SeatCount,
	}

	if err := s.repo.Trip.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	s.log.Info("Trip created",
		zap.String("trip_id", trip.ID.String()),
		zap.String("route", req.DepartureCity+"-"+req.ArrivalCity),
		zap.Bool("vip", req.VIP),
		zap.Int("seat_count", req.SeatCount),
	)

	resp := response.TripToResponse(trip)
	return &resp, nil
}

func (s *inventoryService) FindTrips(ctx context.Context, departureCity, arrivalCity string) ([]response.TripResponse, error) {
	if departureCity == "" || arrivalCity == "" {
		return nil, fmt.Errorf("validation failed: departure_city and arrival_city are required")
	}

	trips, err := s.repo.Trip.FindByRoute(ctx, departureCity, arrivalCity)
	if err != nil {
		return nil, fmt.Errorf("find trips: %w", err)
	}

	return response.TripsToResponse(trips), nil
}

func (s *inventoryService) GetLayout(ctx context.Context, tripID uuid.UUID) ([]*entity.Seat, error) {
	trip, err := s.repo.Trip.FindByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	if trip == nil {
		return nil, fmt.Errorf("trip %s: %w", tripID.String(), repository.ErrTripNotFound)
	}

	seats, err := s.repo.Seat.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}

	if len(seats) > 0 || trip.SeatCount == 0 {
		return seats, nil
	}

	// No inventory yet (demo/test trip): materialize the generated layout so
	// the compare-and-set path has rows to write against. The generator is
	// deterministic per trip, so concurrent materialization writes identical
	// rows and the batch insert's conflict clause absorbs the race.
	generated := GenerateLayout(trip.ID, trip.VIP, trip.SeatCount)
	now := time.Now()
	for _, seat := range generated {
		seat.CreatedAt = now
		seat.UpdatedAt = now
	}

	if err := s.repo.Seat.CreateBatch(ctx, generated); err != nil {
		return nil, fmt.Errorf("materialize layout for trip %s: %w", tripID.String(), err)
	}

	s.log.Info("Fallback seat layout materialized",
		zap.String("trip_id", tripID.String()),
		zap.Bool("vip", trip.VIP),
		zap.Int("seat_count", len(generated)),
	)

	seats, err = s.repo.Seat.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	return seats, nil
}

func (s *inventoryService) IsAvailable(ctx context.Context, tripID uuid.UUID, seatNumber string) (bool, error) {
	seat, err := s.repo.Seat.FindByNumber(ctx, tripID, seatNumber)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	if seat == nil {
		return false, fmt.Errorf("seat %s on trip %s: %w", seatNumber, tripID.String(), repository.ErrSeatNotFound)
	}
	return !seat.Occupied, nil
}

func (s *inventoryService) MarkOccupied(ctx context.Context, tripID uuid.UUID, seatNumber string) error {
	return s.repo.Seat.MarkOccupied(ctx, tripID, seatNumber)
}

func (s *inventoryService) Release(ctx context.Context, tripID uuid.UUID, seatNumber string) error {
	return s.repo.Seat.Release(ctx, tripID, seatNumber)
}
