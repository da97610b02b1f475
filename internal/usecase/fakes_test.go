package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// In-memory repository doubles. The seat fake reproduces the conditional
// occupancy write, the booking fake reproduces the live-seat uniqueness
// constraint, so service tests exercise the same failure paths the SQL layer
// produces.

type fakeTripRepo struct {
	mu    sync.Mutex
	trips map[uuid.UUID]*entity.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[uuid.UUID]*entity.Trip)}
}

func (f *fakeTripRepo) Create(_ context.Context, trip *entity.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trips[trip.ID] = trip
	return nil
}

func (f *fakeTripRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trips[id], nil
}

func (f *fakeTripRepo) FindByRoute(_ context.Context, departureCity, arrivalCity string) ([]*entity.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Trip
	for _, t := range f.trips {
		if t.DepartureCity == departureCity && t.ArrivalCity == arrivalCity {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeSeatRepo struct {
	mu      sync.Mutex
	seats   map[uuid.UUID]map[string]*entity.Seat
	batches int
}

func newFakeSeatRepo() *fakeSeatRepo {
	return &fakeSeatRepo{seats: make(map[uuid.UUID]map[string]*entity.Seat)}
}

func (f *fakeSeatRepo) CreateBatch(_ context.Context, seats []*entity.Seat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	for _, seat := range seats {
		byNumber, ok := f.seats[seat.TripID]
		if !ok {
			byNumber = make(map[string]*entity.Seat)
			f.seats[seat.TripID] = byNumber
		}
		// ON CONFLICT DO NOTHING
		if _, exists := byNumber[seat.SeatNumber]; exists {
			continue
		}
		copied := *seat
		byNumber[seat.SeatNumber] = &copied
	}
	return nil
}

func (f *fakeSeatRepo) FindByTripID(_ context.Context, tripID uuid.UUID) ([]*entity.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Seat
	for _, seat := range f.seats[tripID] {
		copied := *seat
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeatRow != out[j].SeatRow {
			return out[i].SeatRow < out[j].SeatRow
		}
		return out[i].SeatColumn < out[j].SeatColumn
	})
	return out, nil
}

func (f *fakeSeatRepo) FindByNumber(_ context.Context, tripID uuid.UUID, seatNumber string) (*entity.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[tripID][seatNumber]
	if !ok {
		return nil, nil
	}
	copied := *seat
	return &copied, nil
}

func (f *fakeSeatRepo) MarkOccupied(_ context.Context, tripID uuid.UUID, seatNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[tripID][seatNumber]
	if !ok || seat.Occupied {
		return fmt.Errorf("seat %s on trip %s: %w", seatNumber, tripID.String(), repository.ErrSeatConflict)
	}
	seat.Occupied = true
	return nil
}

func (f *fakeSeatRepo) Release(_ context.Context, tripID uuid.UUID, seatNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[tripID][seatNumber]
	if !ok || !seat.Occupied {
		return fmt.Errorf("seat %s on trip %s: %w", seatNumber, tripID.String(), repository.ErrSeatNotFound)
	}
	seat.Occupied = false
	return nil
}

func (f *fakeSeatRepo) occupied(tripID uuid.UUID, seatNumber string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[tripID][seatNumber]
	return ok && seat.Occupied
}

type fakeBookingRepo struct {
	mu          sync.Mutex
	rows        []*entity.Booking
	createCalls int

	// createErr injects a write failure for one seat number.
	createErr map[string]error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{createErr: make(map[string]error)}
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	if err, ok := f.createErr[booking.SeatNumber]; ok {
		return err
	}

	// Partial unique index: one live row per (trip, user, seat).
	for _, row := range f.rows {
		if row.TripID == booking.TripID &&
			row.UserID == booking.UserID &&
			row.SeatNumber == booking.SeatNumber &&
			row.Status != entity.BookingStatusCancelled {
			return fmt.Errorf("insert booking: %w", repository.ErrDuplicateSeat)
		}
	}

	copied := *booking
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByReference(_ context.Context, reference string) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Booking
	for _, row := range f.rows {
		if row.BookingReference == reference {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (f *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*entity.Booking
	for _, row := range f.rows {
		if row.UserID == userID {
			copied := *row
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].SeatNumber < matched[j].SeatNumber
	})
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeBookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) FindActiveSeatBooking(_ context.Context, tripID, userID uuid.UUID, seatNumber string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TripID == tripID &&
			row.UserID == userID &&
			row.SeatNumber == seatNumber &&
			row.Status != entity.BookingStatusCancelled {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == bookingID {
			row.Status = status
			return nil
		}
	}
	return fmt.Errorf("booking %s: %w", bookingID.String(), repository.ErrBookingNotFound)
}

func (f *fakeBookingRepo) statusOf(id uuid.UUID) entity.BookingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			return row.Status
		}
	}
	return ""
}

type mockRewardRepo struct {
	mock.Mock
}

func (m *mockRewardRepo) Create(ctx context.Context, grant *entity.RewardGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *mockRewardRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.RewardGrant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RewardGrant), args.Error(1)
}

func (m *mockRewardRepo) FindAvailableByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RewardGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.RewardGrant), args.Error(1)
}

func (m *mockRewardRepo) Claim(ctx context.Context, grantID, bookingID uuid.UUID) (int64, bool, error) {
	args := m.Called(ctx, grantID, bookingID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}
