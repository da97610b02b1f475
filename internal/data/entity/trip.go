package entity

import "time"

type Trip struct {
	Base
	DepartureCity string    `db:"departure_city"`
	ArrivalCity   string    `db:"arrival_city"`
	DepartureAt   time.Time `db:"departure_at"`
	ArrivalAt     time.Time `db:"arrival_at"`
	BusRef        string    `db:"bus_ref"`
	VIP           bool      `db:"is_vip"`
	SeatCount     int       `db:"seat_count"`
}
