package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Booking is one seat on one trip for one user. A checkout of N seats writes
// exactly N rows sharing a BookingReference; rows are never merged.
// UnitPrice is in minor currency units.
type Booking struct {
	Base
	TripID           uuid.UUID     `db:"trip_id"`
	UserID           uuid.UUID     `db:"user_id"`
	SeatNumber       string        `db:"seat_number"`
	BookingReference string        `db:"booking_reference"`
	UnitPrice        int64         `db:"unit_price"`
	PaymentStatus    PaymentStatus `db:"payment_status"`
	PaymentMethod    string        `db:"payment_method"`
	Status           BookingStatus `db:"status"`
}
