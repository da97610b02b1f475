package response

import "bus-booking/internal/data/entity"

type SeatResponse struct {
	ID               string          `json:"id"`
	TripID           string          `json:"trip_id"`
	SeatNumber       string          `json:"seat_number"`
	SeatRow          int             `json:"seat_row"`
	SeatColumn       int             `json:"seat_column"`
	Type             entity.SeatType `json:"type"`
	PriceModifierPct int             `json:"price_modifier_pct"`
	Occupied         bool            `json:"occupied"`
}

// SeatRowResponse groups one row of the layout, sorted by column.
type SeatRowResponse struct {
	Row   int            `json:"row"`
	Seats []SeatResponse `json:"seats"`
}

func SeatToResponse(s *entity.Seat) SeatResponse {
	return SeatResponse{
		ID:               s.ID.String(),
		TripID:           s.TripID.String(),
		SeatNumber:       s.SeatNumber,
		SeatRow:          s.SeatRow,
		SeatColumn:       s.SeatColumn,
		Type:             s.Type,
		PriceModifierPct: s.PriceModifierPct,
		Occupied:         s.Occupied,
	}
}

// SeatsToRows builds the row-grouped layout from seats already ordered by
// (row, column).
func SeatsToRows(seats []*entity.Seat) []SeatRowResponse {
	var rows []SeatRowResponse
	for _, s := range seats {
		if len(rows) == 0 || rows[len(rows)-1].Row != s.SeatRow {
			rows = append(rows, SeatRowResponse{Row: s.SeatRow})
		}
		last := &rows[len(rows)-1]
		last.Seats = append(last.Seats, SeatToResponse(s))
	}
	return rows
}
