package application

import (
	"mangaverse/config"
	"mangaverse/domain/services"

	"github.com/shopspring/decimal"
)

// Settings carries the configuration every handler passes to its domain services
type Settings struct {
	Ledger     services.LedgerSettings
	Reward     services.RewardSettings
	RewardPool decimal.Decimal
	Account    services.AccountSettings
	Airdrop    services.AirdropSettings
}

// SettingsFromConfig derives handler settings from the service configuration
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Ledger: services.LedgerSettings{
			Chain:    cfg.TokenChain,
			Currency: cfg.TokenCurrency,
			Decimals: cfg.TokenDecimals,
		},
		Reward: services.RewardSettings{
			Cooldown: cfg.RewardCooldown,
			Decimals: cfg.TokenDecimals,
		},
		RewardPool: cfg.RewardPool,
		Account: services.AccountSettings{
			ReferralBonus: cfg.ReferralBonus,
		},
		Airdrop: services.AirdropSettings{
			Amount:       cfg.AirdropAmount,
			ChainTimeout: cfg.ChainTimeout,
		},
	}
}
