package wire

import (
	"bus-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireFeed(r chi.Router, feedHandler *adaptor.FeedHandler) {
	// GET /api/feed - SSE stream of seat/trip/booking mutations
	r.Get("/api/feed", feedHandler.Subscribe)
}
