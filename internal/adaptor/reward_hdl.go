package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/internal/usecase"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RewardHandler struct {
	service usecase.RewardService
	log     *zap.Logger
}

func NewRewardHandler(service usecase.RewardService, log *zap.Logger) *RewardHandler {
	return &RewardHandler{
		service: service,
		log:     log.With(zap.String("handler", "reward")),
	}
}

// GrantReward handles POST /api/rewards
func (h *RewardHandler) GrantReward(w http.ResponseWriter, r *http.Request) {
	var req request.GrantRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	grant, err := h.service.Grant(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "grant reward")
		return
	}

	utils.ResponseCreated(w, "success", grant)
}

// GetReward handles GET /api/rewards/{id}
func (h *RewardHandler) GetReward(w http.ResponseWriter, r *http.Request) {
	rewardID := chi.URLParam(r, "id")
	if rewardID == "" {
		utils.ResponseBadRequest(w, "Reward ID is required", nil)
		return
	}

	grant, err := h.service.GetReward(r.Context(), rewardID)
	if err != nil {
		h.handleServiceError(w, err, "get reward")
		return
	}

	utils.ResponseSuccess(w, "success", grant)
}

// GetAvailableRewards handles GET /api/users/{userID}/rewards
func (h *RewardHandler) GetAvailableRewards(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		utils.ResponseBadRequest(w, "User ID is required", nil)
		return
	}

	rewards, err := h.service.GetAvailableRewards(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "get available rewards")
		return
	}

	utils.ResponseSuccess(w, "success", rewards)
}

// PreviewDiscount handles POST /api/rewards/preview
func (h *RewardHandler) PreviewDiscount(w http.ResponseWriter, r *http.Request) {
	var req request.PreviewDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	preview, err := h.service.PreviewDiscount(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "preview discount")
		return
	}

	utils.ResponseSuccess(w, "success", preview)
}

// ClaimRewards handles POST /api/rewards/claim
func (h *RewardHandler) ClaimRewards(w http.ResponseWriter, r *http.Request) {
	var req request.ClaimRewardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	claimed, err := h.service.Claim(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "claim rewards")
		return
	}

	utils.ResponseSuccess(w, "success", response.ClaimResponse{AmountClaimed: claimed})
}

func (h *RewardHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "validation failed"),
		strings.Contains(errMsg, "invalid"):
		h.log.Warn(operation+" rejected",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
