package request

import "time"

type GrantRewardRequest struct {
	UserID    string    `json:"user_id" validate:"required,uuid4"`
	Amount    int64     `json:"amount" validate:"required,gt=0"`
	ExpiresAt time.Time `json:"expires_at" validate:"required"`
}

type PreviewDiscountRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	Price  int64  `json:"price" validate:"required,gt=0"`
}

type ClaimRewardsRequest struct {
	RewardIDs []string `json:"reward_ids" validate:"required,min=1,dive,uuid4"`
	BookingID string   `json:"booking_id" validate:"required,uuid4"`
}
