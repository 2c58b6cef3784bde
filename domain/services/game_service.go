package services

import (
	"context"
	"errors"
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

// gameService resolves rock-paper-scissors games. Every method expects to
// run inside one transaction so the game row lock covers the transfer.
type gameService struct {
	gameRepo       interfaces.GameRepository
	accountRepo    interfaces.AccountRepository
	ledger         interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewGameService creates a new game service
func NewGameService(
	gameRepo interfaces.GameRepository,
	accountRepo interfaces.AccountRepository,
	ledger interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
) interfaces.GameService {
	return &gameService{
		gameRepo:       gameRepo,
		accountRepo:    accountRepo,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// CreateGame opens a waiting game staked by walletAddress
func (s *gameService) CreateGame(ctx context.Context, walletAddress string, stake decimal.Decimal) (*entities.Game, error) {
	if walletAddress == "" {
		return nil, fmt.Errorf("%w: wallet address is required", domain.ErrInvalidInput)
	}
	if !stake.IsPositive() {
		return nil, fmt.Errorf("%w: stake must be positive", domain.ErrInvalidInput)
	}
	// Settlement debits the stake, so it must fit the ledger precision
	if err := s.ledger.ValidateAmount(stake); err != nil {
		return nil, err
	}

	if _, err := s.requireFunds(ctx, walletAddress, stake); err != nil {
		return nil, err
	}

	game := &entities.Game{
		PlayerOne:   walletAddress,
		StakeAmount: stake,
		Status:      entities.GameStatusWaiting,
		Round:       1,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID": game.ID,
		"wallet": walletAddress,
		"stake":  stake.String(),
	}).Info("Game created")
	return game, nil
}

// JoinGame seats the second player
func (s *gameService) JoinGame(ctx context.Context, gameID uuid.UUID, walletAddress string) (*entities.Game, error) {
	game, err := s.lockGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.Status != entities.GameStatusWaiting {
		return nil, fmt.Errorf("%w: game %s is %s", domain.ErrConflict, gameID, game.Status)
	}
	if game.PlayerOne == walletAddress {
		return nil, fmt.Errorf("%w: cannot join your own game", domain.ErrConflict)
	}

	if _, err := s.requireFunds(ctx, walletAddress, game.StakeAmount); err != nil {
		return nil, err
	}

	if err := game.Join(walletAddress); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID": game.ID,
		"wallet": walletAddress,
	}).Info("Player joined game")
	return game, nil
}

// SubmitMove records a move and settles the round once both moves are present.
// The loser is debited before the game is marked completed, so a loser who
// cannot cover the stake fails the whole submission with ErrInsufficientFunds.
func (s *gameService) SubmitMove(ctx context.Context, gameID uuid.UUID, walletAddress string, rawMove string) (*entities.MoveResult, error) {
	game, err := s.lockGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.IsPlayer(walletAddress) {
		return nil, fmt.Errorf("%w: wallet is not a player in game %s", domain.ErrForbidden, gameID)
	}

	move, err := entities.ParseMove(rawMove)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	switch game.Status {
	case entities.GameStatusCompleted:
		return nil, fmt.Errorf("%w: game %s is already completed", domain.ErrConflict, gameID)
	case entities.GameStatusWaiting:
		return nil, fmt.Errorf("%w: game %s is waiting for an opponent", domain.ErrConflict, gameID)
	}

	if _, err := s.requireFunds(ctx, walletAddress, game.StakeAmount); err != nil {
		return nil, err
	}

	if err := game.SetMove(walletAddress, move); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}

	outcome, winner, loser := game.DetermineOutcome()
	switch outcome {
	case entities.RoundOutcomeTie:
		game.ResetRound()
	case entities.RoundOutcomeCompleted:
		if err := s.settle(ctx, game, winner, loser); err != nil {
			return nil, err
		}
		game.Complete(winner, s.now())
	}

	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	result := &entities.MoveResult{Status: outcome, Game: game}
	if outcome == entities.RoundOutcomeCompleted {
		result.Winner = &winner
		event := events.GameCompletedEvent{
			GameID: game.ID,
			Winner: winner,
			Loser:  loser,
			Stake:  game.StakeAmount,
			Round:  game.Round,
		}
		if err := s.eventPublisher.Publish(event); err != nil {
			log.WithError(err).Error("Failed to publish game completed event")
		}
	}

	log.WithFields(log.Fields{
		"gameID":  game.ID,
		"wallet":  walletAddress,
		"round":   game.Round,
		"outcome": outcome,
	}).Info("Move submitted")
	return result, nil
}

// GetGame returns a game by id
func (s *gameService) GetGame(ctx context.Context, gameID uuid.UUID) (*entities.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %s", domain.ErrNotFound, gameID)
	}
	return game, nil
}

func (s *gameService) lockGame(ctx context.Context, gameID uuid.UUID) (*entities.Game, error) {
	game, err := s.gameRepo.GetByIDForUpdate(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %s", domain.ErrNotFound, gameID)
	}
	return game, nil
}

func (s *gameService) accountFor(ctx context.Context, walletAddress string) (*entities.Account, error) {
	account, err := s.accountRepo.GetByWallet(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: no account for wallet %s", domain.ErrNotFound, walletAddress)
	}
	return account, nil
}

func (s *gameService) requireFunds(ctx context.Context, walletAddress string, stake decimal.Decimal) (*entities.Account, error) {
	account, err := s.accountFor(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	covers, err := s.ledger.Covers(ctx, account.ID, stake)
	if err != nil {
		return nil, err
	}
	if !covers {
		return nil, fmt.Errorf("%w: wallet %s cannot cover stake %s", domain.ErrInsufficientFunds, walletAddress, stake)
	}
	return account, nil
}

// settle moves the stake from loser to winner
func (s *gameService) settle(ctx context.Context, game *entities.Game, winnerWallet, loserWallet string) error {
	winner, err := s.accountFor(ctx, winnerWallet)
	if err != nil {
		return err
	}
	loser, err := s.accountFor(ctx, loserWallet)
	if err != nil {
		return err
	}

	metadata := map[string]any{
		"game_id": game.ID.String(),
		"round":   game.Round,
		"winner":  winnerWallet,
		"loser":   loserWallet,
	}

	_, err = s.ledger.Debit(ctx, interfaces.BalanceChange{
		AccountID:       loser.ID,
		Amount:          game.StakeAmount,
		TransactionType: entities.TransactionTypeGameLoss,
		RelatedID:       game.ID.String(),
		RelatedType:     entities.RelatedTypeGame,
		Metadata:        metadata,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			log.WithFields(log.Fields{
				"gameID": game.ID,
				"loser":  loserWallet,
				"stake":  game.StakeAmount.String(),
			}).Warn("Loser cannot cover stake, game left unsettled")
		}
		return err
	}

	_, err = s.ledger.Credit(ctx, interfaces.BalanceChange{
		AccountID:       winner.ID,
		Amount:          game.StakeAmount,
		TransactionType: entities.TransactionTypeGameWin,
		RelatedID:       game.ID.String(),
		RelatedType:     entities.RelatedTypeGame,
		Metadata:        metadata,
	})
	return err
}
