package services

import (
	"context"
	"fmt"
	"time"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/events"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// DefaultRewardCooldown is the minimum gap between two distributions
const DefaultRewardCooldown = 7 * 24 * time.Hour

// RewardSettings configures the weekly split
type RewardSettings struct {
	Cooldown time.Duration
	Decimals int32
}

type rewardDistributionService struct {
	accountRepo    interfaces.AccountRepository
	epochRepo      interfaces.RewardEpochRepository
	ledger         interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
	settings       RewardSettings
	now            func() time.Time
}

// NewRewardDistributionService creates a new reward distribution service
func NewRewardDistributionService(
	accountRepo interfaces.AccountRepository,
	epochRepo interfaces.RewardEpochRepository,
	ledger interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
	settings RewardSettings,
) interfaces.RewardDistributionService {
	return newRewardDistributionService(accountRepo, epochRepo, ledger, eventPublisher, settings, time.Now)
}

func newRewardDistributionService(
	accountRepo interfaces.AccountRepository,
	epochRepo interfaces.RewardEpochRepository,
	ledger interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
	settings RewardSettings,
	now func() time.Time,
) *rewardDistributionService {
	if settings.Cooldown <= 0 {
		settings.Cooldown = DefaultRewardCooldown
	}
	return &rewardDistributionService{
		accountRepo:    accountRepo,
		epochRepo:      epochRepo,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		settings:       settings,
		now:            now,
	}
}

// RunWeeklyDistribution splits pool across every account with weekly points.
// The epoch row is locked first so concurrent triggers serialize, and the
// cooldown check happens under that lock.
func (s *rewardDistributionService) RunWeeklyDistribution(ctx context.Context, pool decimal.Decimal) (*entities.DistributionResult, error) {
	if !pool.IsPositive() {
		return nil, fmt.Errorf("%w: reward pool must be positive", domain.ErrInvalidInput)
	}

	epoch, err := s.epochRepo.GetForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock reward epoch: %w", err)
	}

	now := s.now().UTC()
	if !epoch.IsEligible(now, s.settings.Cooldown) {
		next := epoch.NextEligibleAt(s.settings.Cooldown)
		log.WithField("nextEligibleAt", next).Info("Weekly distribution skipped, cooldown active")
		return &entities.DistributionResult{
			Distributed:      false,
			NextEligibleAt:   next,
			Message:          fmt.Sprintf("Rewards were already distributed this week, next distribution after %s", next.Format(time.RFC3339)),
			Pool:             pool,
			TotalDistributed: decimal.Zero,
			Dust:             decimal.Zero,
		}, nil
	}

	accounts, err := s.accountRepo.GetWithWeeklyPointsForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts with points: %w", err)
	}

	if len(accounts) == 0 {
		if err := s.epochRepo.UpdateLastDistribution(ctx, now); err != nil {
			return nil, fmt.Errorf("failed to update reward epoch: %w", err)
		}
		log.Info("Weekly distribution found no qualifying accounts")
		return &entities.DistributionResult{
			Distributed:      false,
			NextEligibleAt:   now.Add(s.settings.Cooldown),
			Message:          "No accounts earned points this week, nothing was distributed",
			Pool:             pool,
			TotalDistributed: decimal.Zero,
			Dust:             pool,
		}, nil
	}

	shares, totalPoints, distributed := CalculateRewardShares(accounts, pool, s.settings.Decimals)
	if !distributed.IsPositive() {
		// Points and the epoch are left alone so a larger pool can pay them out
		log.WithFields(log.Fields{
			"pool":        pool.String(),
			"totalPoints": totalPoints,
			"decimals":    s.settings.Decimals,
		}).Warn("Weekly distribution skipped, pool too small for any share")
		return &entities.DistributionResult{
			Distributed:      false,
			NextEligibleAt:   now,
			Message:          fmt.Sprintf("Reward pool %s is too small to pay any of %d points at %d decimals", pool, totalPoints, s.settings.Decimals),
			Pool:             pool,
			TotalPoints:      totalPoints,
			TotalDistributed: decimal.Zero,
			Dust:             pool,
		}, nil
	}
	relatedID := now.Format(time.RFC3339)

	ids := make([]uuid.UUID, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}

	recipients := 0
	for _, share := range shares {
		if !share.Amount.IsPositive() {
			continue
		}
		_, err := s.ledger.Credit(ctx, interfaces.BalanceChange{
			AccountID:       share.AccountID,
			Amount:          share.Amount,
			TransactionType: entities.TransactionTypeWeeklyReward,
			RelatedID:       relatedID,
			RelatedType:     entities.RelatedTypeRewardEpoch,
			Metadata: map[string]any{
				"points":       share.Points,
				"total_points": totalPoints,
				"pool":         pool.String(),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to credit weekly reward: %w", err)
		}
		recipients++
	}

	if err := s.accountRepo.ResetWeeklyPoints(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to reset weekly points: %w", err)
	}
	if err := s.epochRepo.UpdateLastDistribution(ctx, now); err != nil {
		return nil, fmt.Errorf("failed to update reward epoch: %w", err)
	}

	dust := pool.Sub(distributed)
	event := events.RewardDistributionEvent{
		Pool:             pool,
		TotalPoints:      totalPoints,
		Recipients:       recipients,
		TotalDistributed: distributed,
		Dust:             dust,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish reward distribution event")
	}

	log.WithFields(log.Fields{
		"pool":             pool.String(),
		"totalPoints":      totalPoints,
		"recipients":       recipients,
		"totalDistributed": distributed.String(),
		"dust":             dust.String(),
	}).Info("Weekly rewards distributed")

	return &entities.DistributionResult{
		Distributed:      true,
		NextEligibleAt:   now.Add(s.settings.Cooldown),
		Message:          fmt.Sprintf("Distributed %s to %d accounts", distributed, recipients),
		Pool:             pool,
		TotalPoints:      totalPoints,
		TotalDistributed: distributed,
		Dust:             dust,
		Recipients:       recipients,
		Shares:           shares,
	}, nil
}

// CalculateRewardShares splits pool proportionally to weekly points. Each
// share is floored to decimals places, so the shares never sum past pool;
// the returned total is what the shares add up to.
func CalculateRewardShares(accounts []*entities.Account, pool decimal.Decimal, decimals int32) ([]entities.RewardShare, int64, decimal.Decimal) {
	var totalPoints int64
	for _, account := range accounts {
		if account.WeeklyPoints > 0 {
			totalPoints += account.WeeklyPoints
		}
	}
	if totalPoints == 0 {
		return nil, 0, decimal.Zero
	}

	total := decimal.NewFromInt(totalPoints)
	distributed := decimal.Zero
	shares := make([]entities.RewardShare, 0, len(accounts))
	for _, account := range accounts {
		if account.WeeklyPoints <= 0 {
			continue
		}
		amount, _ := pool.Mul(decimal.NewFromInt(account.WeeklyPoints)).QuoRem(total, decimals)
		shares = append(shares, entities.RewardShare{
			AccountID: account.ID,
			Points:    account.WeeklyPoints,
			Amount:    amount,
		})
		distributed = distributed.Add(amount)
	}
	return shares, totalPoints, distributed
}
