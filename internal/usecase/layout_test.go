package usecase

import (
	"testing"

	"bus-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLayoutDeterministic(t *testing.T) {
	tripID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	first := GenerateLayout(tripID, false, 40)
	second := GenerateLayout(tripID, false, 40)

	require.Len(t, first, 40)
	require.Len(t, second, 40)

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].SeatNumber, second[i].SeatNumber)
		assert.Equal(t, first[i].Type, second[i].Type)
		assert.Equal(t, first[i].PriceModifierPct, second[i].PriceModifierPct)
	}
}

func TestGenerateLayoutStandardBus(t *testing.T) {
	tripID := uuid.New()
	seats := GenerateLayout(tripID, false, 40)

	require.Len(t, seats, 40)

	// 2+2 rows, row-major numbering: A1..A4, B1..B4, ...
	assert.Equal(t, "A1", seats[0].SeatNumber)
	assert.Equal(t, "A4", seats[3].SeatNumber)
	assert.Equal(t, "B1", seats[4].SeatNumber)
	assert.Equal(t, "J4", seats[39].SeatNumber)

	premiumRows := make(map[int]bool)
	premiumCount := 0
	for _, seat := range seats {
		assert.False(t, seat.Occupied)
		assert.Equal(t, tripID, seat.TripID)
		switch seat.Type {
		case entity.SeatTypePremium:
			premiumRows[seat.SeatRow] = true
			premiumCount++
			assert.Equal(t, premiumPriceModifierPct, seat.PriceModifierPct)
		case entity.SeatTypeStandard:
			assert.Equal(t, 0, seat.PriceModifierPct)
		default:
			t.Fatalf("unexpected seat type %s on a standard bus", seat.Type)
		}
	}

	// Exactly one premium row of full width.
	assert.Len(t, premiumRows, 1)
	assert.Equal(t, standardSeatsPerRow, premiumCount)
}

func TestGenerateLayoutVIPBus(t *testing.T) {
	seats := GenerateLayout(uuid.New(), true, 12)

	require.Len(t, seats, 12)

	// 1+2 rows: A1..A3, B1..B3, ...
	assert.Equal(t, "A3", seats[2].SeatNumber)
	assert.Equal(t, "B1", seats[3].SeatNumber)
	assert.Equal(t, "D3", seats[11].SeatNumber)

	for _, seat := range seats {
		assert.Equal(t, entity.SeatTypeVIP, seat.Type)
		assert.Equal(t, vipPriceModifierPct, seat.PriceModifierPct)
	}
}

func TestGenerateLayoutPartialLastRow(t *testing.T) {
	seats := GenerateLayout(uuid.New(), false, 6)

	require.Len(t, seats, 6)
	assert.Equal(t, "B2", seats[5].SeatNumber)
	assert.Equal(t, 2, seats[5].SeatRow)
	assert.Equal(t, 2, seats[5].SeatColumn)
}

func TestGenerateLayoutEmpty(t *testing.T) {
	assert.Nil(t, GenerateLayout(uuid.New(), false, 0))
	assert.Nil(t, GenerateLayout(uuid.New(), true, -3))
}

func TestRowLabel(t *testing.T) {
	assert.Equal(t, "A", rowLabel(1))
	assert.Equal(t, "Z", rowLabel(26))
	assert.Equal(t, "AA", rowLabel(27))
	assert.Equal(t, "AB", rowLabel(28))
}
