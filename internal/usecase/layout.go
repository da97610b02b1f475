package usecase

import (
	"fmt"
	"math/rand"

	"bus-booking/internal/data/entity"

	"github.com/google/uuid"
)

// Seats per row for each bus class: VIP coaches run 1+2, standard 2+2.
const (
	vipSeatsPerRow      = 3
	standardSeatsPerRow = 4

	vipPriceModifierPct     = 25
	premiumPriceModifierPct = 10
)

// GenerateLayout builds the fallback seat layout for trips that have no
// persisted inventory. It is pure: the same trip id always yields the same
// rows, numbers, types and ids (seat ids are name-derived UUIDs), so two
// processes materializing the same trip write identical rows.
func GenerateLayout(tripID uuid.UUID, vip bool, seatCount int) []*entity.Seat {
	if seatCount <= 0 {
		return nil
	}

	perRow := standardSeatsPerRow
	if vip {
		perRow = vipSeatsPerRow
	}
	rowCount := (seatCount + perRow - 1) / perRow

	// Seeded from the trip id so "random" placement of the premium row is
	// still reproducible.
	r := rand.New(rand.NewSource(layoutSeed(tripID)))
	premiumRow := -1
	if !vip && rowCount > 1 {
		premiumRow = 1 + r.Intn(rowCount)
	}

	seats := make([]*entity.Seat, 0, seatCount)
	for i := 0; i < seatCount; i++ {
		row := i/perRow + 1
		col := i%perRow + 1

		seatType := entity.SeatTypeStandard
		modifier := 0
		switch {
		case vip:
			seatType = entity.SeatTypeVIP
			modifier = vipPriceModifierPct
		case row == premiumRow:
			seatType = entity.SeatTypePremium
			modifier = premiumPriceModifierPct
		}

		number := fmt.Sprintf("%s%d", rowLabel(row), col)
		seats = append(seats, &entity.Seat{
			Base: entity.Base{
				ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(tripID.String()+"/"+number)),
			},
			TripID:           tripID,
			SeatNumber:       number,
			SeatRow:          row,
			SeatColumn:       col,
			Type:             seatType,
			PriceModifierPct: modifier,
			Occupied:         false,
		})
	}

	return seats
}

func layoutSeed(tripID uuid.UUID) int64 {
	var seed int64
	for _, b := range tripID {
		seed = seed*31 + int64(b)
	}
	return seed
}

// rowLabel: A..Z, then AA, AB, ...
func rowLabel(row int) string {
	label := ""
	for row > 0 {
		row--
		label = string(rune('A'+row%26)) + label
		row /= 26
	}
	return label
}
