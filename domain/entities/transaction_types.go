package entities

// TransactionType represents the reason a ledger balance changed
type TransactionType string

const (
	TransactionTypeGameWin       TransactionType = "game_win"
	TransactionTypeGameLoss      TransactionType = "game_loss"
	TransactionTypeWeeklyReward  TransactionType = "weekly_reward"
	TransactionTypeReferralBonus TransactionType = "referral_bonus"
	TransactionTypeSignupBonus   TransactionType = "signup_bonus"
)

// IsCredit returns true for transaction types that only ever add funds
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypeGameWin, TransactionTypeWeeklyReward, TransactionTypeReferralBonus, TransactionTypeSignupBonus:
		return true
	default:
		return false
	}
}

// IsGameRelated returns true if the change came from settling a game
func (t TransactionType) IsGameRelated() bool {
	return t == TransactionTypeGameWin || t == TransactionTypeGameLoss
}
