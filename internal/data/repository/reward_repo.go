package repository

import (
	"context"
	"fmt"

	"bus-booking/internal/data/entity"
	"bus-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RewardRepository interface {
	Create(ctx context.Context, grant *entity.RewardGrant) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RewardGrant, error)

	// FindAvailableByUser returns unclaimed, unexpired grants oldest-first
	// (FIFO consumption order).
	FindAvailableByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RewardGrant, error)

	// Claim conditionally consumes one grant against a booking. Returns the
	// claimed amount and true on success; (0, false) when the grant was
	// already claimed or expired, which is not an error.
	Claim(ctx context.Context, grantID, bookingID uuid.UUID) (int64, bool, error)
}

type rewardRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRewardRepository(db database.PgxIface, log *zap.Logger) RewardRepository {
	return &rewardRepository{
		db:  db,
		log: log.With(zap.String("repository", "reward")),
	}
}

func (r *rewardRepository) Create(ctx context.Context, grant *entity.RewardGrant) error {
	query := `
		INSERT INTO reward_grants (id, beneficiary_user_id, amount, claimed, claimed_at, applied_booking_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		grant.ID,
		grant.BeneficiaryUserID,
		grant.Amount,
		grant.Claimed,
		grant.ClaimedAt,
		grant.AppliedBookingID,
		grant.ExpiresAt,
		grant.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create reward grant",
			zap.Error(err),
			zap.String("grant_id", grant.ID.String()),
			zap.String("user_id", grant.BeneficiaryUserID.String()),
		)
		return fmt.Errorf("create reward grant %s: %w", grant.ID.String(), err)
	}

	return nil
}

func (r *rewardRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RewardGrant, error) {
	query := `
		SELECT id, beneficiary_user_id, amount, claimed, claimed_at, applied_booking_id, expires_at, created_at
		FROM reward_grants
		WHERE id = $1
	`

	var grant entity.RewardGrant
	err := r.db.QueryRow(ctx, query, id).Scan(
		&grant.ID,
		&grant.BeneficiaryUserID,
		&grant.Amount,
		&grant.Claimed,
		&grant.ClaimedAt,
		&grant.AppliedBookingID,
		&grant.ExpiresAt,
		&grant.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reward grant by ID",
			zap.Error(err),
			zap.String("grant_id", id.String()),
		)
		return nil, fmt.Errorf("find reward grant by ID %s: %w", id.String(), err)
	}

	return &grant, nil
}

func (r *rewardRepository) FindAvailableByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RewardGrant, error) {
	query := `
		SELECT id, beneficiary_user_id, amount, claimed, claimed_at, applied_booking_id, expires_at, created_at
		FROM reward_grants
		WHERE beneficiary_user_id = $1 AND claimed = false AND expires_at > NOW()
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find available rewards",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find available rewards for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var grants []*entity.RewardGrant
	for rows.Next() {
		var grant entity.RewardGrant
		err := rows.Scan(
			&grant.ID,
			&grant.BeneficiaryUserID,
			&grant.Amount,
			&grant.Claimed,
			&grant.ClaimedAt,
			&grant.AppliedBookingID,
			&grant.ExpiresAt,
			&grant.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan reward grant row", zap.Error(err))
			return nil, fmt.Errorf("scan reward grant row: %w", err)
		}
		grants = append(grants, &grant)
	}

	return grants, nil
}

func (r *rewardRepository) Claim(ctx context.Context, grantID, bookingID uuid.UUID) (int64, bool, error) {
	// Conditional update: only an unclaimed, unexpired grant transitions, and
	// the applied booking is recorded in the same write. A grant that lost a
	// concurrent claim simply affects zero rows.
	query := `
		UPDATE reward_grants
		SET claimed = true, claimed_at = NOW(), applied_booking_id = $2
		WHERE id = $1 AND claimed = false AND expires_at > NOW()
		RETURNING amount
	`

	var amount int64
	err := r.db.QueryRow(ctx, query, grantID, bookingID).Scan(&amount)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		r.log.Error("Failed to claim reward grant",
			zap.Error(err),
			zap.String("grant_id", grantID.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, false, fmt.Errorf("claim reward grant %s: %w", grantID.String(), err)
	}

	return amount, true, nil
}
