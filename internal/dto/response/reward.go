package response

import (
	"time"

	"bus-booking/internal/data/entity"
)

type RewardResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type DiscountPreviewResponse struct {
	Discount   int64    `json:"discount"`
	RewardIDs  []string `json:"reward_ids"`
	FinalPrice int64    `json:"final_price"`
}

type ClaimResponse struct {
	AmountClaimed int64 `json:"amount_claimed"`
}

func RewardToResponse(g *entity.RewardGrant) RewardResponse {
	return RewardResponse{
		ID:        g.ID.String(),
		UserID:    g.BeneficiaryUserID.String(),
		Amount:    g.Amount,
		ExpiresAt: g.ExpiresAt,
		CreatedAt: g.CreatedAt,
	}
}

func RewardsToResponse(grants []*entity.RewardGrant) []RewardResponse {
	out := make([]RewardResponse, len(grants))
	for i, g := range grants {
		out[i] = RewardToResponse(g)
	}
	return out
}
