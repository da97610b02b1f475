package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/internal/usecase"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	service usecase.InventoryService
	log     *zap.Logger
}

func NewInventoryHandler(service usecase.InventoryService, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		log:     log.With(zap.String("handler", "inventory")),
	}
}

// CreateTrip handles POST /api/trips
func (h *InventoryHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	trip, err := h.service.CreateTrip(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			utils.ResponseBadRequest(w, err.Error(), nil)
			return
		}
		h.log.Error("Failed to create trip", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseCreated(w, "success", trip)
}

// FindTrips handles GET /api/trips?departure_city=...&arrival_city=...
func (h *InventoryHandler) FindTrips(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	departure := query.Get("departure_city")
	arrival := query.Get("arrival_city")
	if departure == "" || arrival == "" {
		utils.ResponseBadRequest(w, "departure_city and arrival_city are required", nil)
		return
	}

	trips, err := h.service.FindTrips(r.Context(), departure, arrival)
	if err != nil {
		h.log.Error("Failed to find trips",
			zap.Error(err),
			zap.String("departure_city", departure),
			zap.String("arrival_city", arrival),
		)
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", trips)
}

// GetSeatLayout handles GET /api/trips/{tripID}/seats
func (h *InventoryHandler) GetSeatLayout(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuid.Parse(chi.URLParam(r, "tripID"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid trip ID", nil)
		return
	}

	seats, err := h.service.GetLayout(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			utils.ResponseNotFound(w, err.Error())
			return
		}
		h.log.Error("Failed to get seat layout",
			zap.Error(err),
			zap.String("trip_id", tripID.String()),
		)
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", response.SeatsToRows(seats))
}
