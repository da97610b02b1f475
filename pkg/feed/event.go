package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"

	// EventResync is synthesized locally whenever the consumer (re)attaches
	// to the broker. Delivery before the attach may have been lost, so the
	// subscriber must answer with a full reconciliation fetch instead of
	// assuming the stream picked up seamlessly.
	EventResync EventType = "resync"
)

const (
	TableTrips    = "trips"
	TableSeats    = "seats"
	TableBookings = "bookings"
)

// Event is one mutation notification. Delivery is at-least-once and possibly
// out of order; consumers apply events by replacing the full record for an id
// and discard stale duplicates using the record's own UpdatedAt, never
// arrival order.
type Event struct {
	Type      EventType `json:"type"`
	Table     string    `json:"table"`
	Timestamp time.Time `json:"ts"`

	// Exactly one of these is set for insert/update/delete, matching Table.
	Seat    *SeatRecord    `json:"seat,omitempty"`
	Booking *BookingRecord `json:"booking,omitempty"`
}

// SeatRecord is the normalized seat payload.
type SeatRecord struct {
	ID         uuid.UUID `json:"id"`
	TripID     uuid.UUID `json:"trip_id"`
	SeatNumber string    `json:"seat_number"`
	Occupied   bool      `json:"occupied"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookingRecord is the normalized booking payload.
type BookingRecord struct {
	ID               uuid.UUID `json:"id"`
	TripID           uuid.UUID `json:"trip_id"`
	UserID           uuid.UUID `json:"user_id"`
	SeatNumber       string    `json:"seat_number"`
	BookingReference string    `json:"booking_reference"`
	UnitPrice        int64     `json:"unit_price"`
	PaymentStatus    string    `json:"payment_status"`
	Status           string    `json:"status"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// wireEvent is the single schema accepted on the wire. Payloads are validated
// here, once, at the system boundary; nothing downstream re-guesses field
// names.
type wireEvent struct {
	Type   string          `json:"type"`
	Table  string          `json:"table"`
	TS     time.Time       `json:"ts"`
	Record json.RawMessage `json:"record"`
}

// ParseEvent decodes and validates one wire payload into a normalized Event.
func ParseEvent(body []byte) (Event, error) {
	var raw wireEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return Event{}, fmt.Errorf("decode feed event: %w", err)
	}

	switch EventType(raw.Type) {
	case EventInsert, EventUpdate, EventDelete:
	default:
		return Event{}, fmt.Errorf("feed event: unknown type %q", raw.Type)
	}

	ev := Event{
		Type:      EventType(raw.Type),
		Table:     raw.Table,
		Timestamp: raw.TS,
	}

	switch raw.Table {
	case TableSeats:
		var rec SeatRecord
		if err := json.Unmarshal(raw.Record, &rec); err != nil {
			return Event{}, fmt.Errorf("decode seat record: %w", err)
		}
		if rec.ID == uuid.Nil || rec.TripID == uuid.Nil || rec.SeatNumber == "" {
			return Event{}, fmt.Errorf("seat record missing id, trip_id or seat_number")
		}
		ev.Seat = &rec
	case TableBookings:
		var rec BookingRecord
		if err := json.Unmarshal(raw.Record, &rec); err != nil {
			return Event{}, fmt.Errorf("decode booking record: %w", err)
		}
		if rec.ID == uuid.Nil || rec.TripID == uuid.Nil || rec.SeatNumber == "" {
			return Event{}, fmt.Errorf("booking record missing id, trip_id or seat_number")
		}
		ev.Booking = &rec
	case TableTrips:
		// Trip mutations carry no per-seat state the cache tracks; they pass
		// through with table only so subscribers can refresh layouts.
	default:
		return Event{}, fmt.Errorf("feed event: unknown table %q", raw.Table)
	}

	return ev, nil
}
