package services

import (
	"context"
	"fmt"
	"strings"

	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/events"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	referralCodeLength      = 8
	maxReferralCodeAttempts = 5
	defaultHistoryLimit     = 50
	maxHistoryLimit         = 500
)

// NewReferralCode derives an upper-case code from a random UUID
func NewReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:referralCodeLength])
}

// AccountSettings configures signup bonuses
type AccountSettings struct {
	ReferralBonus decimal.Decimal
}

type accountService struct {
	accountRepo        interfaces.AccountRepository
	referralGrantRepo  interfaces.ReferralGrantRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	ledger             interfaces.LedgerService
	eventPublisher     interfaces.EventPublisher
	settings           AccountSettings
	newCode            func() string
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo interfaces.AccountRepository,
	referralGrantRepo interfaces.ReferralGrantRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	ledger interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
	settings AccountSettings,
) interfaces.AccountService {
	return &accountService{
		accountRepo:        accountRepo,
		referralGrantRepo:  referralGrantRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		ledger:             ledger,
		eventPublisher:     eventPublisher,
		settings:           settings,
		newCode:            NewReferralCode,
	}
}

// SignUp registers a wallet. With a valid referral code both parties receive
// the bonus and a grant row keyed by the invitee is written; the caller's
// transaction makes the three writes one unit.
func (s *accountService) SignUp(ctx context.Context, walletAddress string, referralCode string) (*entities.Account, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, fmt.Errorf("%w: wallet address is required", domain.ErrInvalidInput)
	}

	existing, err := s.accountRepo.GetByWallet(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: wallet %s is already registered", domain.ErrConflict, walletAddress)
	}

	var inviter *entities.Account
	if code := strings.ToUpper(strings.TrimSpace(referralCode)); code != "" {
		inviter, err = s.accountRepo.GetByReferralCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve referral code: %w", err)
		}
		if inviter == nil {
			return nil, fmt.Errorf("%w: unknown referral code %q", domain.ErrInvalidInput, code)
		}
	}

	var referredBy *uuid.UUID
	if inviter != nil {
		referredBy = &inviter.ID
	}

	account, err := s.accountRepo.Create(ctx, walletAddress, referredBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if inviter != nil && s.settings.ReferralBonus.IsPositive() {
		if err := s.grantReferral(ctx, inviter, account); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"accountID": account.ID,
		"wallet":    walletAddress,
		"referred":  inviter != nil,
	}).Info("Account signed up")
	return account, nil
}

func (s *accountService) grantReferral(ctx context.Context, inviter, invitee *entities.Account) error {
	grant := &entities.ReferralGrant{
		InviterID:   inviter.ID,
		InviteeID:   invitee.ID,
		BonusAmount: s.settings.ReferralBonus,
	}
	if err := s.referralGrantRepo.Create(ctx, grant); err != nil {
		return fmt.Errorf("failed to record referral grant: %w", err)
	}

	relatedID := invitee.ID.String()
	for _, recipient := range []*entities.Account{inviter, invitee} {
		_, err := s.ledger.Credit(ctx, interfaces.BalanceChange{
			AccountID:       recipient.ID,
			Amount:          s.settings.ReferralBonus,
			TransactionType: entities.TransactionTypeReferralBonus,
			RelatedID:       relatedID,
			RelatedType:     entities.RelatedTypeReferralGrant,
			Metadata: map[string]any{
				"inviter_id": inviter.ID.String(),
				"invitee_id": invitee.ID.String(),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to pay referral bonus: %w", err)
		}
	}

	event := events.ReferralGrantedEvent{
		InviterID: inviter.ID,
		InviteeID: invitee.ID,
		Bonus:     s.settings.ReferralBonus,
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish referral granted event")
	}
	return nil
}

// GenerateReferralCode returns the wallet's referral code, issuing one on first call
func (s *accountService) GenerateReferralCode(ctx context.Context, walletAddress string) (string, error) {
	account, err := s.requireWallet(ctx, walletAddress)
	if err != nil {
		return "", err
	}
	if account.HasReferralCode() {
		return *account.ReferralCode, nil
	}

	for attempt := 1; attempt <= maxReferralCodeAttempts; attempt++ {
		code := s.newCode()
		set, err := s.accountRepo.SetReferralCode(ctx, account.ID, code)
		if err != nil {
			return "", fmt.Errorf("failed to set referral code: %w", err)
		}
		if set {
			log.WithFields(log.Fields{
				"accountID": account.ID,
				"attempt":   attempt,
			}).Info("Referral code issued")
			return code, nil
		}

		// either another request issued a code first or the code is taken
		account, err = s.requireWallet(ctx, walletAddress)
		if err != nil {
			return "", err
		}
		if account.HasReferralCode() {
			return *account.ReferralCode, nil
		}
	}

	return "", fmt.Errorf("%w: could not allocate a unique referral code after %d attempts", domain.ErrConflict, maxReferralCodeAttempts)
}

// AwardPoints adds weekly points
func (s *accountService) AwardPoints(ctx context.Context, userID uuid.UUID, points int64) (int64, error) {
	if points <= 0 {
		return 0, fmt.Errorf("%w: points must be positive", domain.ErrInvalidInput)
	}
	total, err := s.accountRepo.AddWeeklyPoints(ctx, userID, points)
	if err != nil {
		return 0, fmt.Errorf("failed to award points: %w", err)
	}
	return total, nil
}

// GetBalances lists the user's balances
func (s *accountService) GetBalances(ctx context.Context, userID uuid.UUID) ([]*entities.Balance, error) {
	if _, err := s.requireAccount(ctx, userID); err != nil {
		return nil, err
	}
	return s.ledger.Balances(ctx, userID)
}

// GetHistory lists the user's most recent balance changes
func (s *accountService) GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.BalanceHistory, error) {
	if _, err := s.requireAccount(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	history, err := s.balanceHistoryRepo.GetByAccount(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	return history, nil
}

func (s *accountService) requireAccount(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, userID)
	}
	return account, nil
}

func (s *accountService) requireWallet(ctx context.Context, walletAddress string) (*entities.Account, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return nil, fmt.Errorf("%w: wallet address is required", domain.ErrInvalidInput)
	}
	account, err := s.accountRepo.GetByWallet(ctx, strings.TrimSpace(walletAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: no account for wallet %s", domain.ErrNotFound, walletAddress)
	}
	return account, nil
}
