package entity

import "github.com/google/uuid"

type SeatType string

const (
	SeatTypeStandard SeatType = "standard"
	SeatTypePremium  SeatType = "premium"
	SeatTypeVIP      SeatType = "vip"
)

// Seat is one bookable place on one trip. Occupied must hold exactly when a
// non-cancelled booking with completed payment references (TripID, SeatNumber).
type Seat struct {
	Base
	TripID           uuid.UUID `db:"trip_id"`
	SeatNumber       string    `db:"seat_number"` // A1, A2, B1, etc.
	SeatRow          int       `db:"seat_row"`
	SeatColumn       int       `db:"seat_column"`
	Type             SeatType  `db:"seat_type"`
	PriceModifierPct int       `db:"price_modifier_pct"` // percent on top of the base unit price
	Occupied         bool      `db:"occupied"`
}
