package entity

import (
	"time"

	"github.com/google/uuid"
)

// RewardGrant is a referral-earned discount credit. Claimed transitions
// false -> true exactly once, always together with AppliedBookingID.
type RewardGrant struct {
	BaseSimple
	BeneficiaryUserID uuid.UUID  `db:"beneficiary_user_id"`
	Amount            int64      `db:"amount"`
	Claimed           bool       `db:"claimed"`
	ClaimedAt         *time.Time `db:"claimed_at"`
	AppliedBookingID  *uuid.UUID `db:"applied_booking_id"`
	ExpiresAt         time.Time  `db:"expires_at"`
}
