package usecase

import (
	"sort"
	"sync"
	"time"

	"bus-booking/internal/data/entity"

	"github.com/google/uuid"
)

// CacheKey identifies at most one visible record. Entries are replaced whole,
// never combined: no summed prices, no merged seat lists.
type CacheKey struct {
	TripID     uuid.UUID
	UserID     uuid.UUID
	SeatNumber string
}

type cacheEntry struct {
	booking       entity.Booking
	authoritative bool
	addedAt       time.Time // when the optimistic entry was created locally
	recordTime    time.Time // the record's own UpdatedAt, for last-writer-wins
}

// ReconciliationCache merges optimistic local entries (created at submission
// time, before ledger confirmation) with authoritative ledger state. An
// authoritative record always replaces an optimistic one for the same key;
// among authoritative records the newer UpdatedAt wins regardless of arrival
// order; optimistic entries with no authoritative counterpart after the grace
// period are dropped as failed or superseded. Removals leave a tombstone
// carrying the removal timestamp, so a delayed older update cannot resurrect
// a cancelled or deleted row; tombstones expire with the grace sweep.
type ReconciliationCache struct {
	mu         sync.RWMutex
	entries    map[CacheKey]cacheEntry
	tombstones map[CacheKey]time.Time
	grace      time.Duration
}

func NewReconciliationCache(grace time.Duration) *ReconciliationCache {
	if grace <= 0 {
		grace = 30 * time.Second
	}
	return &ReconciliationCache{
		entries:    make(map[CacheKey]cacheEntry),
		tombstones: make(map[CacheKey]time.Time),
		grace:      grace,
	}
}

// PutOptimistic records a submission before the ledger confirms it. It never
// displaces authoritative state.
func (c *ReconciliationCache) PutOptimistic(b entity.Booking, now time.Time) {
	key := CacheKey{TripID: b.TripID, UserID: b.UserID, SeatNumber: b.SeatNumber}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok && existing.authoritative {
		return
	}
	if ts, ok := c.tombstones[key]; ok && !b.UpdatedAt.After(ts) {
		return
	}
	c.entries[key] = cacheEntry{
		booking:    b,
		addedAt:    now,
		recordTime: b.UpdatedAt,
	}
}

// ApplyAuthoritative installs one confirmed ledger record, replacing any
// optimistic entry and any older authoritative one. Cancelled records remove
// the key: a cancelled seat has no visible entry.
func (c *ReconciliationCache) ApplyAuthoritative(b entity.Booking) {
	key := CacheKey{TripID: b.TripID, UserID: b.UserID, SeatNumber: b.SeatNumber}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok && existing.authoritative && existing.recordTime.After(b.UpdatedAt) {
		// Stale duplicate or out-of-order delivery; the record's own
		// timestamp decides, not arrival order.
		return
	}
	if ts, ok := c.tombstones[key]; ok && !b.UpdatedAt.After(ts) {
		// The key was cancelled or deleted at a later timestamp; this record
		// is a delayed older delivery and must not resurrect the row.
		return
	}

	if b.Status == entity.BookingStatusCancelled {
		c.remove(key, b.UpdatedAt)
		return
	}

	delete(c.tombstones, key)
	c.entries[key] = cacheEntry{
		booking:       b,
		authoritative: true,
		recordTime:    b.UpdatedAt,
	}
}

// ApplyDelete removes the record for a key unless local state is newer.
func (c *ReconciliationCache) ApplyDelete(key CacheKey, ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok && existing.authoritative && existing.recordTime.After(ts) {
		return
	}
	c.remove(key, ts)
}

// remove drops the entry and records when the key died. Caller holds the lock.
func (c *ReconciliationCache) remove(key CacheKey, ts time.Time) {
	delete(c.entries, key)
	if existing, ok := c.tombstones[key]; !ok || ts.After(existing) {
		c.tombstones[key] = ts
	}
}

// ReplaceUser reconciles the full authoritative row set for one user, as
// fetched from the ledger. Authoritative entries absent from the fetch are
// removed; optimistic entries are replaced when confirmed and dropped when
// past grace with no counterpart.
func (c *ReconciliationCache) ReplaceUser(userID uuid.UUID, rows []*entity.Booking, now time.Time) {
	confirmed := make(map[CacheKey]*entity.Booking, len(rows))
	for _, b := range rows {
		confirmed[CacheKey{TripID: b.TripID, UserID: b.UserID, SeatNumber: b.SeatNumber}] = b
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if key.UserID != userID {
			continue
		}
		if _, ok := confirmed[key]; ok {
			continue
		}
		if entry.authoritative || now.Sub(entry.addedAt) > c.grace {
			delete(c.entries, key)
		}
	}

	for key, b := range confirmed {
		if b.Status == entity.BookingStatusCancelled {
			c.remove(key, b.UpdatedAt)
			continue
		}
		delete(c.tombstones, key)
		c.entries[key] = cacheEntry{
			booking:       *b,
			authoritative: true,
			recordTime:    b.UpdatedAt,
		}
	}
}

// PruneExpired drops optimistic entries and tombstones older than the grace
// period. Anything a tombstone was still guarding is by then either settled
// in the ledger or recoverable by the next full refresh.
func (c *ReconciliationCache) PruneExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if !entry.authoritative && now.Sub(entry.addedAt) > c.grace {
			delete(c.entries, key)
		}
	}
	for key, ts := range c.tombstones {
		if now.Sub(ts) > c.grace {
			delete(c.tombstones, key)
		}
	}
}

// Snapshot returns the visible records for a user, one per key, newest
// checkout first then by seat number.
func (c *ReconciliationCache) Snapshot(userID uuid.UUID) []entity.Booking {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []entity.Booking
	for key, entry := range c.entries {
		if key.UserID == userID {
			out = append(out, entry.booking)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].SeatNumber < out[j].SeatNumber
	})
	return out
}

// Len reports the number of cached entries.
func (c *ReconciliationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
