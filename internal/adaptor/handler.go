package adaptor

import (
	"bus-booking/internal/usecase"
	"bus-booking/pkg/feed"

	"go.uber.org/zap"
)

type Handler struct {
	Booking   *BookingHandler
	Inventory *InventoryHandler
	Reward    *RewardHandler
	Feed      *FeedHandler
}

func NewHandler(service *usecase.Service, source feed.Source, log *zap.Logger) *Handler {
	return &Handler{
		Booking:   NewBookingHandler(service.Booking, service.Reconcile, log),
		Inventory: NewInventoryHandler(service.Inventory, log),
		Reward:    NewRewardHandler(service.Reward, log),
		Feed:      NewFeedHandler(source, log),
	}
}
