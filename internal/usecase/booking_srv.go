package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// CreateBooking writes one booking row per successfully reserved seat.
	// Partial success is allowed: seats that win the compare-and-set stay
	// booked, losers are reported in Conflicts for re-offer. A resubmission
	// within the idempotency window returns the original rows with zero new
	// writes.
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.CheckoutResponse, error)

	// GetUserBookings returns one row per seat, never aggregated. Visual
	// grouping by booking reference is a read-time projection done by the
	// caller.
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)

	// CancelBooking affects exactly one row and releases exactly one seat;
	// sibling seats from the same checkout are untouched.
	CancelBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo      *repository.Repository
	inventory InventoryService
	guard     *IdempotencyGuard
	log       *zap.Logger
}

func NewBookingService(repo *repository.Repository, inventory InventoryService, guard *IdempotencyGuard, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      repo,
		inventory: inventory,
		guard:     guard,
		log:       log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.CheckoutResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID format %s: %w", req.TripID, err)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", req.UserID, err)
	}

	trip, err := s.repo.Trip.FindByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if trip == nil {
		return nil, fmt.Errorf("trip %s: %w", req.TripID, repository.ErrTripNotFound)
	}
	if trip.DepartureAt.Before(time.Now()) {
		return nil, fmt.Errorf("cannot book for departed trip %s", req.TripID)
	}

	seatNumbers := normalizeSeatSet(req.SeatNumbers)
	if len(seatNumbers) == 0 {
		return nil, fmt.Errorf("validation failed: seat_numbers is empty")
	}

	// Duplicate submission: return the original outcome unchanged, no writes.
	key := s.guard.Key(tripID, userID, seatNumbers)
	if outcome, dup := s.guard.Check(key); dup {
		original, err := s.repo.Booking.FindByReference(ctx, outcome.Reference)
		if err != nil {
			return nil, fmt.Errorf("load original booking %s: %w", outcome.Reference, err)
		}
		if len(original) > 0 {
			s.log.Info("Duplicate submission collapsed",
				zap.String("booking_reference", outcome.Reference),
				zap.String("user_id", req.UserID),
			)
			return &response.CheckoutResponse{
				Bookings:  response.BookingsToResponse(original),
				Conflicts: outcome.Conflicts,
				Duplicate: true,
			}, nil
		}
		// Registered reference with no rows should not happen; fall through
		// and process normally, the storage constraint still protects us.
	}

	// Materializes the fallback layout if the trip has no inventory yet, and
	// gives us the price modifiers.
	layout, err := s.inventory.GetLayout(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	seatsByNumber := make(map[string]*entity.Seat, len(layout))
	for _, seat := range layout {
		seatsByNumber[seat.SeatNumber] = seat
	}
	for _, number := range seatNumbers {
		if _, ok := seatsByNumber[number]; !ok {
			return nil, fmt.Errorf("seat %s on trip %s: %w", number, req.TripID, repository.ErrSeatNotFound)
		}
	}

	splits := splitPrice(req.TotalPrice, len(seatNumbers))
	reference := utils.GenerateBookingReference()
	now := time.Now()

	var bookings []response.BookingResponse
	var conflicts []string
	created := 0

	for i, number := range seatNumbers {
		// Optimistic re-check, then the pessimistic conditional write. The
		// check keeps the common already-taken case off the write path; the
		// compare-and-set is what actually decides the race.
		available, err := s.inventory.IsAvailable(ctx, tripID, number)
		if err != nil {
			return nil, fmt.Errorf("create booking: %w", err)
		}
		if !available {
			conflicts = append(conflicts, number)
			continue
		}

		if err := s.inventory.MarkOccupied(ctx, tripID, number); err != nil {
			if errors.Is(err, repository.ErrSeatConflict) {
				conflicts = append(conflicts, number)
				continue
			}
			return nil, fmt.Errorf("create booking: %w", err)
		}

		seat := seatsByNumber[number]
		unitPrice := splits[i] + splits[i]*int64(seat.PriceModifierPct)/100

		booking := &entity.Booking{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			TripID:           tripID,
			UserID:           userID,
			SeatNumber:       number,
			BookingReference: reference,
			UnitPrice:        unitPrice,
			PaymentStatus:    entity.PaymentStatusCompleted,
			PaymentMethod:    req.PaymentMethod,
			Status:           entity.BookingStatusConfirmed,
		}

		if err := s.repo.Booking.Create(ctx, booking); err != nil {
			if errors.Is(err, repository.ErrDuplicateSeat) {
				// The storage constraint caught a retry the in-memory guard
				// missed (e.g. after a restart). The original row is the
				// result.
				existing, ferr := s.repo.Booking.FindActiveSeatBooking(ctx, tripID, userID, number)
				if ferr != nil {
					return nil, fmt.Errorf("create booking: %w", ferr)
				}
				if existing != nil {
					bookings = append(bookings, response.BookingToResponse(existing))
					continue
				}
			}

			// The seat was reserved but the row write failed: undo the
			// reservation so the seat is not stranded.
			if rerr := s.inventory.Release(ctx, tripID, number); rerr != nil {
				s.log.Error("Failed to release seat after booking write failure",
					zap.Error(rerr),
					zap.String("trip_id", req.TripID),
					zap.String("seat_number", number),
				)
			}
			return nil, fmt.Errorf("create booking: %w", err)
		}

		bookings = append(bookings, response.BookingToResponse(booking))
		created++
	}

	if created > 0 {
		s.guard.Register(key, CheckoutOutcome{Reference: reference, Conflicts: conflicts})
	}

	s.log.Info("Booking processed",
		zap.String("booking_reference", reference),
		zap.String("trip_id", req.TripID),
		zap.String("user_id", req.UserID),
		zap.Int("seats_requested", len(seatNumbers)),
		zap.Int("seats_booked", created),
		zap.Strings("conflicts", conflicts),
	)

	return &response.CheckoutResponse{
		Bookings:  bookings,
		Conflicts: conflicts,
	}, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, repository.ErrBookingNotFound)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID, repository.ErrBookingNotFound)
	}

	// Cancelling twice is a no-op, not an error.
	if booking.Status == entity.BookingStatusCancelled {
		return nil
	}

	if err := s.repo.Booking.UpdateStatus(ctx, id, entity.BookingStatusCancelled); err != nil {
		s.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	if err := s.inventory.Release(ctx, booking.TripID, booking.SeatNumber); err != nil {
		// The row is cancelled either way; a seat that was already free is
		// logged, not failed.
		s.log.Warn("Release after cancellation did not free a seat",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("seat_number", booking.SeatNumber),
		)
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("booking_reference", booking.BookingReference),
		zap.String("seat_number", booking.SeatNumber),
	)

	return nil
}

// normalizeSeatSet sorts and dedupes the requested seats so the idempotency
// key and the write order are canonical.
func normalizeSeatSet(seatNumbers []string) []string {
	seen := make(map[string]struct{}, len(seatNumbers))
	out := make([]string, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// splitPrice divides the checkout total evenly across n seats in integer
// minor units, spreading the remainder over the first seats so the parts sum
// exactly to the total.
func splitPrice(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	base := total / int64(n)
	rem := total % int64(n)

	parts := make([]int64, n)
	for i := range parts {
		parts[i] = base
		if int64(i) < rem {
			parts[i]++
		}
	}
	return parts
}
