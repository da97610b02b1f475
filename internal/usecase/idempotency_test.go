package usecase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIdempotencyKeyCanonical(t *testing.T) {
	guard := NewIdempotencyGuard(16, time.Minute)
	tripID := uuid.New()
	userID := uuid.New()

	// Seat order must not change the key.
	a := guard.Key(tripID, userID, []string{"A1", "B2", "A2"})
	b := guard.Key(tripID, userID, []string{"B2", "A2", "A1"})
	assert.Equal(t, a, b)

	// Different seat sets and different users are distinct keys.
	assert.NotEqual(t, a, guard.Key(tripID, userID, []string{"A1", "B2"}))
	assert.NotEqual(t, a, guard.Key(tripID, uuid.New(), []string{"A1", "A2", "B2"}))
}

func TestIdempotencyCheckAndRegister(t *testing.T) {
	guard := NewIdempotencyGuard(16, time.Minute)
	key := guard.Key(uuid.New(), uuid.New(), []string{"A1"})

	outcome, dup := guard.Check(key)
	assert.False(t, dup)
	assert.Empty(t, outcome.Reference)

	guard.Register(key, CheckoutOutcome{
		Reference: "BUS-20260901-100000-0042",
		Conflicts: []string{"A2"},
	})

	outcome, dup = guard.Check(key)
	assert.True(t, dup)
	assert.Equal(t, "BUS-20260901-100000-0042", outcome.Reference)
	assert.Equal(t, []string{"A2"}, outcome.Conflicts)
}

func TestIdempotencyTTLExpiry(t *testing.T) {
	guard := NewIdempotencyGuard(16, 30*time.Millisecond)
	key := guard.Key(uuid.New(), uuid.New(), []string{"A1", "A2"})

	guard.Register(key, CheckoutOutcome{Reference: "BUS-20260901-100000-0001"})
	_, dup := guard.Check(key)
	assert.True(t, dup)

	time.Sleep(80 * time.Millisecond)

	_, dup = guard.Check(key)
	assert.False(t, dup, "keys past the TTL window must not collapse as duplicates")
}

func TestIdempotencyDefaults(t *testing.T) {
	guard := NewIdempotencyGuard(0, 0)
	key := guard.Key(uuid.New(), uuid.New(), []string{"C3"})

	guard.Register(key, CheckoutOutcome{Reference: "ref"})
	_, dup := guard.Check(key)
	assert.True(t, dup)
}
