package usecase

import (
	"time"

	"bus-booking/internal/data/repository"
	"bus-booking/pkg/feed"
	"bus-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Inventory InventoryService
	Booking   BookingService
	Reward    RewardService
	Reconcile ReconcileService
}

func NewService(repo *repository.Repository, source feed.Source, config *utils.Config, log *zap.Logger) *Service {
	guard := NewIdempotencyGuard(
		config.Booking.IdempotencyCacheSize,
		time.Duration(config.Booking.IdempotencyTTLMinutes)*time.Minute,
	)
	grace := time.Duration(config.Booking.ReconcileGraceSeconds) * time.Second

	inventory := NewInventoryService(repo, log)

	return &Service{
		Inventory: inventory,
		Booking:   NewBookingService(repo, inventory, guard, log),
		Reward:    NewRewardService(repo, log),
		Reconcile: NewReconcileService(repo, source, grace, log),
	}
}
