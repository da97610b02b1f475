package usecase

import (
	"context"
	"testing"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func grant(id uuid.UUID, amount int64, createdAt time.Time) *entity.RewardGrant {
	return &entity.RewardGrant{
		BaseSimple: entity.BaseSimple{ID: id, CreatedAt: createdAt},
		Amount:     amount,
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
}

func TestPreviewDiscountGreedyFIFO(t *testing.T) {
	userID := uuid.New()
	g1 := uuid.New()
	g2 := uuid.New()
	g3 := uuid.New()

	rewards := new(mockRewardRepo)
	rewards.On("FindAvailableByUser", mock.Anything, userID).Return([]*entity.RewardGrant{
		grant(g1, 3000, time.Now().Add(-3*time.Hour)),
		grant(g2, 4000, time.Now().Add(-2*time.Hour)),
		grant(g3, 5000, time.Now().Add(-time.Hour)),
	}, nil)

	svc := NewRewardService(&repository.Repository{Reward: rewards}, zap.NewNop())

	// Price covered by the two oldest grants; the third stays untouched.
	preview, err := svc.PreviewDiscount(context.Background(), &request.PreviewDiscountRequest{
		UserID: userID.String(),
		Price:  6000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6000), preview.Discount, "discount is capped at the price")
	assert.Equal(t, []string{g1.String(), g2.String()}, preview.RewardIDs)
	assert.Zero(t, preview.FinalPrice)

	// Price above the total credit: everything is consumed, remainder is paid.
	preview, err = svc.PreviewDiscount(context.Background(), &request.PreviewDiscountRequest{
		UserID: userID.String(),
		Price:  20000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), preview.Discount)
	assert.Len(t, preview.RewardIDs, 3)
	assert.Equal(t, int64(8000), preview.FinalPrice)
}

func TestPreviewDiscountNoGrants(t *testing.T) {
	userID := uuid.New()
	rewards := new(mockRewardRepo)
	rewards.On("FindAvailableByUser", mock.Anything, userID).Return([]*entity.RewardGrant{}, nil)

	svc := NewRewardService(&repository.Repository{Reward: rewards}, zap.NewNop())

	preview, err := svc.PreviewDiscount(context.Background(), &request.PreviewDiscountRequest{
		UserID: userID.String(),
		Price:  5000,
	})
	require.NoError(t, err)
	assert.Zero(t, preview.Discount)
	assert.Equal(t, int64(5000), preview.FinalPrice)
}

func TestClaimSkipsGrantsLostToRace(t *testing.T) {
	bookingID := uuid.New()
	won := uuid.New()
	lost := uuid.New()

	bookings := newFakeBookingRepo()
	require.NoError(t, bookings.Create(context.Background(), &entity.Booking{
		Base:       entity.Base{ID: bookingID},
		TripID:     uuid.New(),
		UserID:     uuid.New(),
		SeatNumber: "A1",
	}))

	rewards := new(mockRewardRepo)
	rewards.On("Claim", mock.Anything, won, bookingID).Return(int64(3000), true, nil)
	// Consumed by a concurrent checkout between preview and claim.
	rewards.On("Claim", mock.Anything, lost, bookingID).Return(int64(0), false, nil)

	svc := NewRewardService(&repository.Repository{Booking: bookings, Reward: rewards}, zap.NewNop())

	claimed, err := svc.Claim(context.Background(), &request.ClaimRewardsRequest{
		RewardIDs: []string{won.String(), lost.String()},
		BookingID: bookingID.String(),
	})
	require.NoError(t, err)

	// Under-discounts, never over-discounts: only what was actually won.
	assert.Equal(t, int64(3000), claimed)
	rewards.AssertExpectations(t)
}

func TestClaimSecondClaimContributesNothing(t *testing.T) {
	bookingID := uuid.New()
	grantID := uuid.New()

	bookings := newFakeBookingRepo()
	require.NoError(t, bookings.Create(context.Background(), &entity.Booking{
		Base:       entity.Base{ID: bookingID},
		TripID:     uuid.New(),
		UserID:     uuid.New(),
		SeatNumber: "A1",
	}))

	rewards := new(mockRewardRepo)
	rewards.On("Claim", mock.Anything, grantID, bookingID).Return(int64(2500), true, nil).Once()
	rewards.On("Claim", mock.Anything, grantID, bookingID).Return(int64(0), false, nil)

	svc := NewRewardService(&repository.Repository{Booking: bookings, Reward: rewards}, zap.NewNop())
	req := &request.ClaimRewardsRequest{
		RewardIDs: []string{grantID.String()},
		BookingID: bookingID.String(),
	}

	first, err := svc.Claim(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), first)

	second, err := svc.Claim(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, second, "a grant is consumed exactly once")
}

func TestClaimUnknownBooking(t *testing.T) {
	rewards := new(mockRewardRepo)
	svc := NewRewardService(&repository.Repository{Booking: newFakeBookingRepo(), Reward: rewards}, zap.NewNop())

	_, err := svc.Claim(context.Background(), &request.ClaimRewardsRequest{
		RewardIDs: []string{uuid.New().String()},
		BookingID: uuid.New().String(),
	})
	require.Error(t, err)
	rewards.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
}

func TestGrantRewardPersistsGrant(t *testing.T) {
	userID := uuid.New()
	expires := time.Now().Add(48 * time.Hour)

	rewards := new(mockRewardRepo)
	rewards.On("Create", mock.Anything, mock.MatchedBy(func(g *entity.RewardGrant) bool {
		return g.BeneficiaryUserID == userID && g.Amount == 2500 && g.ExpiresAt.Equal(expires)
	})).Return(nil)

	svc := NewRewardService(&repository.Repository{Reward: rewards}, zap.NewNop())
	resp, err := svc.Grant(context.Background(), &request.GrantRewardRequest{
		UserID:    userID.String(),
		Amount:    2500,
		ExpiresAt: expires,
	})
	require.NoError(t, err)
	assert.Equal(t, userID.String(), resp.UserID)
	assert.Equal(t, int64(2500), resp.Amount)
	rewards.AssertExpectations(t)
}

func TestGrantRewardRejectsPastExpiry(t *testing.T) {
	rewards := new(mockRewardRepo)
	svc := NewRewardService(&repository.Repository{Reward: rewards}, zap.NewNop())

	_, err := svc.Grant(context.Background(), &request.GrantRewardRequest{
		UserID:    uuid.New().String(),
		Amount:    1000,
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.Error(t, err)
	rewards.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetReward(t *testing.T) {
	grantID := uuid.New()
	rewards := new(mockRewardRepo)
	rewards.On("FindByID", mock.Anything, grantID).Return(grant(grantID, 4000, time.Now()), nil)

	svc := NewRewardService(&repository.Repository{Reward: rewards}, zap.NewNop())
	resp, err := svc.GetReward(context.Background(), grantID.String())
	require.NoError(t, err)
	assert.Equal(t, grantID.String(), resp.ID)
	assert.Equal(t, int64(4000), resp.Amount)
}

func TestGetRewardNotFound(t *testing.T) {
	missing := uuid.New()
	rewards := new(mockRewardRepo)
	rewards.On("FindByID", mock.Anything, missing).Return(nil, nil)

	svc := NewRewardService(&repository.Repository{Reward: rewards}, zap.NewNop())
	_, err := svc.GetReward(context.Background(), missing.String())
	require.ErrorIs(t, err, repository.ErrRewardNotFound)
}
