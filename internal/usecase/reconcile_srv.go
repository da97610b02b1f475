package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/pkg/feed"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reconcileFetchLimit caps one authoritative refetch; a user with more live
// rows than this has bigger problems than cache coherence.
const reconcileFetchLimit = 500

// watchTTL bounds how long a user stays registered after their last view.
// Without it every user who ever watched would be refetched on every resync.
const watchTTL = 15 * time.Minute

type ReconcileService interface {
	// NoteSubmission records an optimistic entry at submission time. The seat
	// is not considered owned until the ledger confirms; the entry only keeps
	// the UI honest while the write is in flight.
	NoteSubmission(b entity.Booking)

	// Watch registers a user for live reconciliation and performs the initial
	// authoritative fetch.
	Watch(ctx context.Context, userID uuid.UUID) error

	// Refresh replaces the user's cached view with ledger truth. Called on
	// screen re-entry, manual refresh, shortly after submission, and on feed
	// resync.
	Refresh(ctx context.Context, userID uuid.UUID) error

	// Visible returns the merged view: at most one record per
	// (trip, user, seat).
	Visible(userID uuid.UUID) []entity.Booking

	// Run drains the change feed into the cache until ctx is done. One
	// goroutine applies all events, in order of arrival, idempotently.
	Run(ctx context.Context) error
}

type reconcileService struct {
	cache *ReconciliationCache
	repo  *repository.Repository
	feed  feed.Source
	log   *zap.Logger

	mu      sync.RWMutex
	watched map[uuid.UUID]time.Time // last time the user asked for the view
}

func NewReconcileService(repo *repository.Repository, source feed.Source, grace time.Duration, log *zap.Logger) ReconcileService {
	return &reconcileService{
		cache:   NewReconciliationCache(grace),
		repo:    repo,
		feed:    source,
		log:     log.With(zap.String("service", "reconcile")),
		watched: make(map[uuid.UUID]time.Time),
	}
}

func (s *reconcileService) NoteSubmission(b entity.Booking) {
	s.cache.PutOptimistic(b, time.Now())
}

func (s *reconcileService) Watch(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	s.watched[userID] = time.Now()
	s.mu.Unlock()

	return s.Refresh(ctx, userID)
}

func (s *reconcileService) Refresh(ctx context.Context, userID uuid.UUID) error {
	rows, err := s.repo.Booking.FindByUserID(ctx, userID, reconcileFetchLimit, 0)
	if err != nil {
		return fmt.Errorf("reconcile refresh for user %s: %w", userID.String(), err)
	}

	s.cache.ReplaceUser(userID, rows, time.Now())

	s.log.Debug("Reconciled user from ledger",
		zap.String("user_id", userID.String()),
		zap.Int("rows", len(rows)),
	)
	return nil
}

func (s *reconcileService) Visible(userID uuid.UUID) []entity.Booking {
	return s.cache.Snapshot(userID)
}

func (s *reconcileService) Run(ctx context.Context) error {
	events, err := s.feed.Subscribe(ctx, feed.Filter{})
	if err != nil {
		return fmt.Errorf("reconcile: subscribe feed: %w", err)
	}

	prune := time.NewTicker(s.cache.grace)
	defer prune.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-prune.C:
			s.cache.PruneExpired(now)
			s.pruneWatched(now)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.apply(ctx, ev)
		}
	}
}

func (s *reconcileService) apply(ctx context.Context, ev feed.Event) {
	switch ev.Type {
	case feed.EventResync:
		// The stream (re)attached; anything delivered during the gap is
		// lost. Full fetch, never partial patching.
		s.refreshAll(ctx)

	case feed.EventInsert, feed.EventUpdate:
		if ev.Booking == nil {
			return
		}
		if !s.isWatched(ev.Booking.UserID) {
			return
		}
		s.cache.ApplyAuthoritative(bookingFromRecord(ev.Booking))

	case feed.EventDelete:
		if ev.Booking == nil {
			return
		}
		if !s.isWatched(ev.Booking.UserID) {
			return
		}
		s.cache.ApplyDelete(CacheKey{
			TripID:     ev.Booking.TripID,
			UserID:     ev.Booking.UserID,
			SeatNumber: ev.Booking.SeatNumber,
		}, ev.Booking.UpdatedAt)
	}
}

func (s *reconcileService) refreshAll(ctx context.Context) {
	s.mu.RLock()
	users := make([]uuid.UUID, 0, len(s.watched))
	for userID := range s.watched {
		users = append(users, userID)
	}
	s.mu.RUnlock()

	for _, userID := range users {
		if err := s.Refresh(ctx, userID); err != nil {
			s.log.Error("Resync refresh failed", zap.Error(err), zap.String("user_id", userID.String()))
		}
	}
}

func (s *reconcileService) isWatched(userID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.watched[userID]
	return ok
}

// pruneWatched drops users who have not asked for their view within watchTTL;
// their next view call re-registers and refetches.
func (s *reconcileService) pruneWatched(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, last := range s.watched {
		if now.Sub(last) > watchTTL {
			delete(s.watched, userID)
		}
	}
}

// bookingFromRecord maps a normalized feed record onto the entity. Events
// carry the full record, so application is a whole-record replacement, never
// a field patch.
func bookingFromRecord(rec *feed.BookingRecord) entity.Booking {
	return entity.Booking{
		Base: entity.Base{
			ID:        rec.ID,
			UpdatedAt: rec.UpdatedAt,
		},
		TripID:           rec.TripID,
		UserID:           rec.UserID,
		SeatNumber:       rec.SeatNumber,
		BookingReference: rec.BookingReference,
		UnitPrice:        rec.UnitPrice,
		PaymentStatus:    entity.PaymentStatus(rec.PaymentStatus),
		Status:           entity.BookingStatus(rec.Status),
	}
}
