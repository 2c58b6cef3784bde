package repository

import (
	"context"
	"time"

	"mangaverse/database"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"
)

const rewardEpochID = 1

// RewardEpochRepository implements the RewardEpochRepository interface
type RewardEpochRepository struct {
	q Queryable
}

// NewRewardEpochRepository creates a new reward epoch repository
func NewRewardEpochRepository(db *database.DB) *RewardEpochRepository {
	return &RewardEpochRepository{q: db.Pool}
}

func newRewardEpochRepository(q Queryable) interfaces.RewardEpochRepository {
	return &RewardEpochRepository{q: q}
}

// GetForUpdate locks the epoch row, creating it if a database was seeded without one
func (r *RewardEpochRepository) GetForUpdate(ctx context.Context) (*entities.RewardEpoch, error) {
	if _, err := r.q.Exec(ctx, `INSERT INTO reward_epochs (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, rewardEpochID); err != nil {
		return nil, translateError(err, "ensure reward epoch")
	}

	query := `
		SELECT id, last_distribution_at, updated_at
		FROM reward_epochs
		WHERE id = $1
		FOR UPDATE
	`
	var epoch entities.RewardEpoch
	err := r.q.QueryRow(ctx, query, rewardEpochID).Scan(&epoch.ID, &epoch.LastDistributionAt, &epoch.UpdatedAt)
	if err != nil {
		return nil, translateError(err, "lock reward epoch")
	}
	return &epoch, nil
}

// UpdateLastDistribution stamps the epoch with the distribution time
func (r *RewardEpochRepository) UpdateLastDistribution(ctx context.Context, at time.Time) error {
	query := `UPDATE reward_epochs SET last_distribution_at = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, rewardEpochID, at); err != nil {
		return translateError(err, "update reward epoch")
	}
	return nil
}
