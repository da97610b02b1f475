package response

import (
	"time"

	"bus-booking/internal/data/entity"
)

// BookingResponse is always one seat. BookingReference is a grouping hint for
// receipt display only; rows are never summed or merged into one entity.
type BookingResponse struct {
	ID               string               `json:"id"`
	TripID           string               `json:"trip_id"`
	UserID           string               `json:"user_id"`
	SeatNumber       string               `json:"seat_number"`
	BookingReference string               `json:"booking_reference"`
	UnitPrice        int64                `json:"unit_price"`
	PaymentStatus    entity.PaymentStatus `json:"payment_status"`
	PaymentMethod    string               `json:"payment_method"`
	Status           entity.BookingStatus `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
}

// CheckoutResponse reports a possibly-partial checkout: the seats that were
// written and the seats that lost the availability race. Duplicate marks a
// collapsed resubmission (the rows are the original ones, nothing was
// written).
type CheckoutResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	Conflicts []string          `json:"conflicts,omitempty"`
	Duplicate bool              `json:"duplicate,omitempty"`
}

// ReceiptGroup is the read-time projection for receipt display. Computed from
// per-seat rows on every call, never stored.
type ReceiptGroup struct {
	BookingReference string            `json:"booking_reference"`
	SeatNumbers      []string          `json:"seat_numbers"`
	Bookings         []BookingResponse `json:"bookings"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID.String(),
		TripID:           b.TripID.String(),
		UserID:           b.UserID.String(),
		SeatNumber:       b.SeatNumber,
		BookingReference: b.BookingReference,
		UnitPrice:        b.UnitPrice,
		PaymentStatus:    b.PaymentStatus,
		PaymentMethod:    b.PaymentMethod,
		Status:           b.Status,
		CreatedAt:        b.CreatedAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = BookingToResponse(b)
	}
	return out
}

// GroupByReference projects per-seat rows into receipt groups, preserving row
// order. Each row stays intact inside its group.
func GroupByReference(bookings []BookingResponse) []ReceiptGroup {
	var groups []ReceiptGroup
	index := make(map[string]int)

	for _, b := range bookings {
		i, ok := index[b.BookingReference]
		if !ok {
			i = len(groups)
			index[b.BookingReference] = i
			groups = append(groups, ReceiptGroup{BookingReference: b.BookingReference})
		}
		groups[i].SeatNumbers = append(groups[i].SeatNumbers, b.SeatNumber)
		groups[i].Bookings = append(groups[i].Bookings, b)
	}

	return groups
}
