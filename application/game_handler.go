package application

import (
	"context"

	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"
	"mangaverse/domain/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type gameHandler struct {
	tx       transactionRunner
	settings Settings
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(uowFactory UnitOfWorkFactory, settings Settings, observer TransactionObserver) GameHandler {
	return &gameHandler{
		tx:       transactionRunner{uowFactory: uowFactory, observer: observer},
		settings: settings,
	}
}

func (h *gameHandler) service(uow UnitOfWork) interfaces.GameService {
	return services.NewGameService(
		uow.GameRepository(),
		uow.AccountRepository(),
		newLedger(uow, h.settings),
		uow.EventBus(),
	)
}

// CreateGame opens a waiting game
func (h *gameHandler) CreateGame(ctx context.Context, walletAddress string, stake decimal.Decimal) (*entities.Game, error) {
	var game *entities.Game
	err := h.tx.run(ctx, "create_game", func(uow UnitOfWork) error {
		var err error
		game, err = h.service(uow).CreateGame(ctx, walletAddress, stake)
		return err
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// JoinGame seats the second player
func (h *gameHandler) JoinGame(ctx context.Context, gameID uuid.UUID, walletAddress string) (*entities.Game, error) {
	var game *entities.Game
	err := h.tx.run(ctx, "join_game", func(uow UnitOfWork) error {
		var err error
		game, err = h.service(uow).JoinGame(ctx, gameID, walletAddress)
		return err
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

// SubmitMove records a move. The game row lock taken by the service is held
// until commit, so two submissions for one game never resolve it twice.
func (h *gameHandler) SubmitMove(ctx context.Context, gameID uuid.UUID, walletAddress string, move string) (*entities.MoveResult, error) {
	var result *entities.MoveResult
	err := h.tx.run(ctx, "submit_move", func(uow UnitOfWork) error {
		var err error
		result, err = h.service(uow).SubmitMove(ctx, gameID, walletAddress, move)
		return err
	})
	if err != nil {
		log.WithFields(log.Fields{
			"gameID": gameID,
			"wallet": walletAddress,
			"error":  err,
		}).Debug("Move submission rejected")
		return nil, err
	}
	return result, nil
}

// GetGame returns a game
func (h *gameHandler) GetGame(ctx context.Context, gameID uuid.UUID) (*entities.Game, error) {
	var game *entities.Game
	err := h.tx.run(ctx, "get_game", func(uow UnitOfWork) error {
		var err error
		game, err = h.service(uow).GetGame(ctx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}
