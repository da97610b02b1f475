package response

import (
	"time"

	"bus-booking/internal/data/entity"
)

type TripResponse struct {
	ID            string    `json:"id"`
	DepartureCity string    `json:"departure_city"`
	ArrivalCity   string    `json:"arrival_city"`
	DepartureAt   time.Time `json:"departure_at"`
	ArrivalAt     time.Time `json:"arrival_at"`
	BusRef        string    `json:"bus_ref"`
	VIP           bool      `json:"vip"`
	SeatCount     int       `json:"seat_count"`
}

func TripToResponse(t *entity.Trip) TripResponse {
	return TripResponse{
		ID:            t.ID.String(),
		DepartureCity: t.DepartureCity,
		ArrivalCity:   t.ArrivalCity,
		DepartureAt:   t.DepartureAt,
		ArrivalAt:     t.ArrivalAt,
		BusRef:        t.BusRef,
		VIP:           t.VIP,
		SeatCount:     t.SeatCount,
	}
}

func TripsToResponse(trips []*entity.Trip) []TripResponse {
	out := make([]TripResponse, len(trips))
	for i, t := range trips {
		out[i] = TripToResponse(t)
	}
	return out
}
