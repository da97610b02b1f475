package usecase

import (
	"context"
	"testing"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInventoryFixture(trip *entity.Trip) (*fakeTripRepo, *fakeSeatRepo, InventoryService) {
	trips := newFakeTripRepo()
	seats := newFakeSeatRepo()
	trips.trips[trip.ID] = trip

	repo := &repository.Repository{Trip: trips, Seat: seats}
	return trips, seats, NewInventoryService(repo, zap.NewNop())
}

func TestCreateTripAndFindByRoute(t *testing.T) {
	trips, _, svc := newInventoryFixture(&entity.Trip{Base: entity.Base{ID: uuid.New()}})

	created, err := svc.CreateTrip(context.Background(), &request.CreateTripRequest{
		DepartureCity: "Addis Ababa",
		ArrivalCity:   "Dire Dawa",
		DepartureAt:   time.Now().Add(24 * time.Hour),
		ArrivalAt:     time.Now().Add(32 * time.Hour),
		BusRef:        "AB-123",
		VIP:           true,
		SeatCount:     12,
	})
	require.NoError(t, err)
	assert.True(t, created.VIP)
	assert.Equal(t, 12, created.SeatCount)

	stored := trips.trips[uuid.MustParse(created.ID)]
	require.NotNil(t, stored)
	assert.Equal(t, "Addis Ababa", stored.DepartureCity)

	found, err := svc.FindTrips(context.Background(), "Addis Ababa", "Dire Dawa")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	none, err := svc.FindTrips(context.Background(), "Addis Ababa", "Bahir Dar")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateTripValidation(t *testing.T) {
	_, _, svc := newInventoryFixture(&entity.Trip{Base: entity.Base{ID: uuid.New()}})

	// Arrival before departure.
	_, err := svc.CreateTrip(context.Background(), &request.CreateTripRequest{
		DepartureCity: "Addis Ababa",
		ArrivalCity:   "Dire Dawa",
		DepartureAt:   time.Now().Add(24 * time.Hour),
		ArrivalAt:     time.Now().Add(12 * time.Hour),
		SeatCount:     12,
	})
	assert.Error(t, err)

	_, err = svc.FindTrips(context.Background(), "Addis Ababa", "")
	assert.Error(t, err)
}

func TestGetLayoutMaterializesFallback(t *testing.T) {
	tripID := uuid.New()
	_, seats, svc := newInventoryFixture(&entity.Trip{
		Base:        entity.Base{ID: tripID},
		DepartureAt: time.Now().Add(time.Hour),
		SeatCount:   8,
	})

	layout, err := svc.GetLayout(context.Background(), tripID)
	require.NoError(t, err)
	require.Len(t, layout, 8)
	assert.Equal(t, 1, seats.batches)

	// Already materialized: no second batch write.
	again, err := svc.GetLayout(context.Background(), tripID)
	require.NoError(t, err)
	require.Len(t, again, 8)
	assert.Equal(t, 1, seats.batches)

	// Row-major ordering survives the round trip.
	assert.Equal(t, "A1", layout[0].SeatNumber)
	assert.Equal(t, "B4", layout[7].SeatNumber)
}

func TestGetLayoutKeepsPersistedSeats(t *testing.T) {
	tripID := uuid.New()
	_, seats, svc := newInventoryFixture(&entity.Trip{
		Base:      entity.Base{ID: tripID},
		SeatCount: 40,
	})

	require.NoError(t, seats.CreateBatch(context.Background(), []*entity.Seat{
		{Base: entity.Base{ID: uuid.New()}, TripID: tripID, SeatNumber: "A1", SeatRow: 1, SeatColumn: 1},
	}))

	layout, err := svc.GetLayout(context.Background(), tripID)
	require.NoError(t, err)
	require.Len(t, layout, 1, "persisted inventory wins over the generator")
	assert.Equal(t, 1, seats.batches)
}

func TestGetLayoutUnknownTrip(t *testing.T) {
	_, _, svc := newInventoryFixture(&entity.Trip{Base: entity.Base{ID: uuid.New()}})

	_, err := svc.GetLayout(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrTripNotFound)
}

func TestIsAvailable(t *testing.T) {
	tripID := uuid.New()
	_, seats, svc := newInventoryFixture(&entity.Trip{
		Base:      entity.Base{ID: tripID},
		SeatCount: 4,
	})
	_, err := svc.GetLayout(context.Background(), tripID)
	require.NoError(t, err)

	free, err := svc.IsAvailable(context.Background(), tripID, "A1")
	require.NoError(t, err)
	assert.True(t, free)

	require.NoError(t, seats.MarkOccupied(context.Background(), tripID, "A1"))

	free, err = svc.IsAvailable(context.Background(), tripID, "A1")
	require.NoError(t, err)
	assert.False(t, free)

	_, err = svc.IsAvailable(context.Background(), tripID, "Z9")
	assert.ErrorIs(t, err, repository.ErrSeatNotFound)
}

func TestMarkOccupiedLoserGetsConflict(t *testing.T) {
	tripID := uuid.New()
	_, _, svc := newInventoryFixture(&entity.Trip{
		Base:      entity.Base{ID: tripID},
		SeatCount: 4,
	})
	_, err := svc.GetLayout(context.Background(), tripID)
	require.NoError(t, err)

	require.NoError(t, svc.MarkOccupied(context.Background(), tripID, "A1"))
	err = svc.MarkOccupied(context.Background(), tripID, "A1")
	assert.ErrorIs(t, err, repository.ErrSeatConflict)

	require.NoError(t, svc.Release(context.Background(), tripID, "A1"))
	assert.NoError(t, svc.MarkOccupied(context.Background(), tripID, "A1"))
}
