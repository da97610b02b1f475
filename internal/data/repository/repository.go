package repository

import (
	"bus-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Trip    TripRepository
	Seat    SeatRepository
	Booking BookingRepository
	Reward  RewardRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Trip:    NewTripRepository(db, log),
		Seat:    NewSeatRepository(db, log),
		Booking: NewBookingRepository(db, log),
		Reward:  NewRewardRepository(db, log),
	}
}
