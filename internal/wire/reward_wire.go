package wire

import (
	"bus-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireReward(r chi.Router, rewardHandler *adaptor.RewardHandler) {
	// POST /api/rewards - issue a referral credit
	r.Post("/api/rewards", rewardHandler.GrantReward)

	// GET /api/rewards/{id} - single grant
	r.Get("/api/rewards/{id}", rewardHandler.GetReward)

	// GET /api/users/{userID}/rewards - unclaimed grants, oldest first
	r.Get("/api/users/{userID}/rewards", rewardHandler.GetAvailableRewards)

	// POST /api/rewards/preview - greedy discount preview capped at price
	r.Post("/api/rewards/preview", rewardHandler.PreviewDiscount)

	// POST /api/rewards/claim - exactly-once consumption against a booking
	r.Post("/api/rewards/claim", rewardHandler.ClaimRewards)
}
