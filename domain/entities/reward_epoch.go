package entities

import "time"

// RewardEpoch is the singleton record gating weekly distributions
type RewardEpoch struct {
	ID                 int        `db:"id"`
	LastDistributionAt *time.Time `db:"last_distribution_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// NextEligibleAt returns when the next distribution may run. A fresh epoch
// with no previous distribution is eligible immediately.
func (e *RewardEpoch) NextEligibleAt(cooldown time.Duration) time.Time {
	if e.LastDistributionAt == nil {
		return time.Time{}
	}
	return e.LastDistributionAt.Add(cooldown)
}

// IsEligible reports whether a distribution may run at now
func (e *RewardEpoch) IsEligible(now time.Time, cooldown time.Duration) bool {
	return !now.Before(e.NextEligibleAt(cooldown))
}
