package usecase

import (
	"context"
	"fmt"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RewardService interface {
	// Grant issues a referral credit to a user.
	Grant(ctx context.Context, req *request.GrantRewardRequest) (*response.RewardResponse, error)

	GetReward(ctx context.Context, rewardID string) (*response.RewardResponse, error)

	// GetAvailableRewards lists unclaimed, unexpired grants oldest-first.
	GetAvailableRewards(ctx context.Context, userID string) ([]response.RewardResponse, error)

	// PreviewDiscount greedily sums available grants, capped at price.
	PreviewDiscount(ctx context.Context, req *request.PreviewDiscountRequest) (*response.DiscountPreviewResponse, error)

	// Claim consumes each grant at most once against the booking. Grants lost
	// to a concurrent checkout are skipped; the returned amount is what was
	// actually claimed. Callers must re-price when it is below the previewed
	// discount — the booking may under-discount in a race, never
	// over-discount.
	Claim(ctx context.Context, req *request.ClaimRewardsRequest) (int64, error)
}

type rewardService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewRewardService(repo *repository.Repository, log *zap.Logger) RewardService {
	return &rewardService{
		repo: repo,
		log:  log.With(zap.String("service", "reward")),
	}
}

func (s *rewardService) Grant(ctx context.Context, req *request.GrantRewardRequest) (*response.RewardResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", req.UserID, err)
	}
	if !req.ExpiresAt.After(time.Now()) {
		return nil, fmt.Errorf("validation failed: expires_at must be in the future")
	}

	grant := &entity.RewardGrant{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BeneficiaryUserID: userUUID,
		Amount:            req.Amount,
		ExpiresAt:         req.ExpiresAt,
	}

	if err := s.repo.Reward.Create(ctx, grant); err != nil {
		return nil, fmt.Errorf("grant reward: %w", err)
	}

	s.log.Info("Reward granted",
		zap.String("grant_id", grant.ID.String()),
		zap.String("user_id", req.UserID),
		zap.Int64("amount", req.Amount),
	)

	resp := response.RewardToResponse(grant)
	return &resp, nil
}

func (s *rewardService) GetReward(ctx context.Context, rewardID string) (*response.RewardResponse, error) {
	id, err := uuid.Parse(rewardID)
	if err != nil {
		return nil, fmt.Errorf("invalid reward ID format %s: %w", rewardID, err)
	}

	grant, err := s.repo.Reward.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	if grant == nil {
		return nil, fmt.Errorf("reward %s: %w", rewardID, repository.ErrRewardNotFound)
	}

	resp := response.RewardToResponse(grant)
	return &resp, nil
}

func (s *rewardService) GetAvailableRewards(ctx context.Context, userID string) ([]response.RewardResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	grants, err := s.repo.Reward.FindAvailableByUser(ctx, userUUID)
	if err != nil {
		s.log.Error("Failed to get available rewards",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get available rewards: %w", err)
	}

	return response.RewardsToResponse(grants), nil
}

func (s *rewardService) PreviewDiscount(ctx context.Context, req *request.PreviewDiscountRequest) (*response.DiscountPreviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", req.UserID, err)
	}

	grants, err := s.repo.Reward.FindAvailableByUser(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("preview discount: %w", err)
	}

	// FIFO consumption order: oldest grants first, stop once the price is
	// covered. The discount never exceeds the price.
	var discount int64
	var rewardIDs []string
	for _, grant := range grants {
		if discount >= req.Price {
			break
		}
		discount += grant.Amount
		rewardIDs = append(rewardIDs, grant.ID.String())
	}
	if discount > req.Price {
		discount = req.Price
	}

	return &response.DiscountPreviewResponse{
		Discount:   discount,
		RewardIDs:  rewardIDs,
		FinalPrice: req.Price - discount,
	}, nil
}

func (s *rewardService) Claim(ctx context.Context, req *request.ClaimRewardsRequest) (int64, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return 0, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return 0, fmt.Errorf("invalid booking ID format %s: %w", req.BookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return 0, fmt.Errorf("claim rewards: %w", err)
	}
	if booking == nil {
		return 0, fmt.Errorf("booking %s not found for reward claim", req.BookingID)
	}

	var claimed int64
	skipped := 0
	for _, idStr := range req.RewardIDs {
		grantID, err := uuid.Parse(idStr)
		if err != nil {
			return claimed, fmt.Errorf("invalid reward ID format %s: %w", idStr, err)
		}

		amount, ok, err := s.repo.Reward.Claim(ctx, grantID, bookingID)
		if err != nil {
			s.log.Error("Failed to claim reward grant",
				zap.Error(err),
				zap.String("grant_id", idStr),
				zap.String("booking_id", req.BookingID),
			)
			return claimed, fmt.Errorf("claim rewards: %w", err)
		}
		if !ok {
			// Already claimed by a concurrent checkout, or expired. Skipped,
			// not failed.
			skipped++
			continue
		}
		claimed += amount
	}

	s.log.Info("Rewards claimed",
		zap.String("booking_id", req.BookingID),
		zap.Int("requested", len(req.RewardIDs)),
		zap.Int("skipped", skipped),
		zap.Int64("amount_claimed", claimed),
	)

	return claimed, nil
}
