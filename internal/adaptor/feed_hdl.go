package adaptor

import (
	"encoding/json"
	"fmt"
	"net/http"

	"bus-booking/pkg/feed"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FeedHandler struct {
	source feed.Source
	log    *zap.Logger
}

func NewFeedHandler(source feed.Source, log *zap.Logger) *FeedHandler {
	return &FeedHandler{
		source: source,
		log:    log.With(zap.String("handler", "feed")),
	}
}

// Subscribe handles GET /api/feed as a server-sent-events stream, filtered by
// ?trip_id=... or ?departure_city=...&arrival_city=...
func (h *FeedHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFeedFilter(r)
	if err != nil {
		utils.ResponseBadRequest(w, err.Error(), nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.ResponseInternalError(w, "Streaming not supported")
		return
	}

	events, err := h.source.Subscribe(r.Context(), filter)
	if err != nil {
		h.log.Error("Failed to subscribe to feed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("Failed to encode feed event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}

func parseFeedFilter(r *http.Request) (feed.Filter, error) {
	query := r.URL.Query()

	if tripIDStr := query.Get("trip_id"); tripIDStr != "" {
		tripID, err := uuid.Parse(tripIDStr)
		if err != nil {
			return feed.Filter{}, fmt.Errorf("invalid trip_id")
		}
		return feed.Filter{TripID: &tripID}, nil
	}

	departure := query.Get("departure_city")
	arrival := query.Get("arrival_city")
	if departure != "" && arrival != "" {
		return feed.Filter{DepartureCity: departure, ArrivalCity: arrival}, nil
	}

	return feed.Filter{}, fmt.Errorf("filter required: trip_id or departure_city and arrival_city")
}
