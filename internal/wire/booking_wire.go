package wire

import (
	"bus-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// POST /api/bookings - checkout, one row per seat
	r.Post("/api/bookings", bookingHandler.CreateBooking)

	// GET /api/bookings/{id} - single booking row
	r.Get("/api/bookings/{id}", bookingHandler.GetBooking)

	// PUT /api/bookings/{id}/cancel - cancel one row, release its seat
	r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)

	// GET /api/users/{userID}/bookings - booking history, per-seat rows
	r.Get("/api/users/{userID}/bookings", bookingHandler.GetUserBookings)

	// GET /api/users/{userID}/view - reconciled optimistic+authoritative view
	r.Get("/api/users/{userID}/view", bookingHandler.GetReconciledView)
}
