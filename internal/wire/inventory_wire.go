package wire

import (
	"bus-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireInventory(r chi.Router, inventoryHandler *adaptor.InventoryHandler) {
	// POST /api/trips - register a trip; layout materializes on first fetch
	r.Post("/api/trips", inventoryHandler.CreateTrip)

	// GET /api/trips?departure_city=...&arrival_city=... - route search
	r.Get("/api/trips", inventoryHandler.FindTrips)

	// GET /api/trips/{tripID}/seats - seat layout grouped by row
	r.Get("/api/trips/{tripID}/seats", inventoryHandler.GetSeatLayout)
}
