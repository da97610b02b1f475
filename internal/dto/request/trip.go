package request

import "time"

type CreateTripRequest struct {
	DepartureCity string    `json:"departure_city" validate:"required"`
	ArrivalCity   string    `json:"arrival_city" validate:"required"`
	DepartureAt   time.Time `json:"departure_at" validate:"required"`
	ArrivalAt     time.Time `json:"arrival_at" validate:"required,gtfield=DepartureAt"`
	BusRef        string    `json:"bus_ref"`
	VIP           bool      `json:"vip"`
	SeatCount     int       `json:"seat_count" validate:"required,gt=0,lte=100"`
}
