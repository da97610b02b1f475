package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/internal/usecase"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service   usecase.BookingService
	reconcile usecase.ReconcileService
	log       *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, reconcile usecase.ReconcileService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		reconcile: reconcile,
		log:       log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	// Optimistic entries before the write: visible as unconfirmed until the
	// ledger answers, then replaced or dropped by reconciliation. A timeout
	// here leaves them unconfirmed, never occupied.
	h.noteOptimistic(&req)

	result, err := h.service.CreateBooking(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	if userID, perr := uuid.Parse(req.UserID); perr == nil {
		if rerr := h.reconcile.Refresh(r.Context(), userID); rerr != nil {
			h.log.Warn("Post-checkout reconciliation failed", zap.Error(rerr))
		}
	}

	if len(result.Bookings) == 0 && len(result.Conflicts) > 0 {
		utils.ResponseConflict(w, "All requested seats were taken", result)
		return
	}
	if result.Duplicate {
		utils.ResponseSuccess(w, "success", result)
		return
	}

	utils.ResponseCreated(w, "success", result)
}

// GetUserBookings handles GET /api/users/{userID}/bookings
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		utils.ResponseBadRequest(w, "User ID is required", nil)
		return
	}

	req := &request.PaginatedRequest{Page: 1, PerPage: 10}
	query := r.URL.Query()
	req.Page = utils.ParseInt(query.Get("page"), 1)
	req.PerPage = utils.ParseInt(query.Get("per_page"), 10)

	bookings, err := h.service.GetUserBookings(r.Context(), userID, req)
	if err != nil {
		h.handleServiceError(w, err, "get user bookings")
		return
	}

	// Optional read-time receipt projection; rows themselves stay per-seat.
	if query.Get("group") == "reference" {
		utils.ResponseSuccess(w, "success", map[string]any{
			"groups":     response.GroupByReference(bookings.Data),
			"pagination": bookings.Pagination,
		})
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetReconciledView handles GET /api/users/{userID}/view — the merged
// optimistic + authoritative view kept live by the change feed.
func (h *BookingHandler) GetReconciledView(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.reconcile.Watch(r.Context(), userID); err != nil {
		h.handleServiceError(w, err, "reconcile view")
		return
	}

	visible := h.reconcile.Visible(userID)
	out := make([]response.BookingResponse, len(visible))
	for i := range visible {
		out[i] = response.BookingToResponse(&visible[i])
	}

	utils.ResponseSuccess(w, "success", out)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.handleServiceError(w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	if err := h.service.CancelBooking(r.Context(), bookingID); err != nil {
		h.handleServiceError(w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

func (h *BookingHandler) noteOptimistic(req *request.CreateBookingRequest) {
	tripID, terr := uuid.Parse(req.TripID)
	userID, uerr := uuid.Parse(req.UserID)
	if terr != nil || uerr != nil {
		return
	}

	now := time.Now()
	for _, seat := range req.SeatNumbers {
		h.reconcile.NoteSubmission(entity.Booking{
			Base:          entity.Base{CreatedAt: now, UpdatedAt: now},
			TripID:        tripID,
			UserID:        userID,
			SeatNumber:    seat,
			PaymentStatus: entity.PaymentStatusPending,
			Status:        entity.BookingStatusPending,
		})
	}
}

// handleServiceError classifies errors for booking operations
func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, repository.ErrTripNotFound),
		errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrBookingNotFound):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "validation failed"),
		strings.Contains(errMsg, "invalid"),
		strings.Contains(errMsg, "cannot"):
		h.log.Warn(operation+" rejected",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
