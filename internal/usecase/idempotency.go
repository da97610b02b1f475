package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// CheckoutOutcome is what the guard remembers about a processed submission:
// the reference its rows carry and the seats that lost the availability race,
// so a collapsed duplicate sees the same response shape as the original.
type CheckoutOutcome struct {
	Reference string
	Conflicts []string
}

// IdempotencyGuard collapses duplicate booking submissions (double-tap,
// navigation race, network retry) within a TTL window. It is a fast-path
// latency optimization only: the partial unique index on bookings is the
// durable mechanism, so losing this cache on restart costs nothing but a
// round trip.
type IdempotencyGuard struct {
	cache *lru.LRU[string, CheckoutOutcome]
}

func NewIdempotencyGuard(size int, ttl time.Duration) *IdempotencyGuard {
	if size <= 0 {
		size = 4096
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IdempotencyGuard{
		cache: lru.NewLRU[string, CheckoutOutcome](size, nil, ttl),
	}
}

// Key derives the canonical idempotency key for one checkout. The seat set is
// sorted so submissions differing only in seat order collapse to one key.
func (g *IdempotencyGuard) Key(tripID, userID uuid.UUID, seatNumbers []string) string {
	seats := make([]string, len(seatNumbers))
	copy(seats, seatNumbers)
	sort.Strings(seats)
	return tripID.String() + "|" + userID.String() + "|" + strings.Join(seats, ",")
}

// Check reports whether this key was already processed within the TTL. On a
// duplicate it returns the outcome registered for the original submission.
func (g *IdempotencyGuard) Check(key string) (CheckoutOutcome, bool) {
	outcome, ok := g.cache.Get(key)
	return outcome, ok
}

// Register records the outcome for a processed key.
func (g *IdempotencyGuard) Register(key string, outcome CheckoutOutcome) {
	g.cache.Add(key, outcome)
}
