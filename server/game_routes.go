package server

import (
	"time"

	"mangaverse/application"
	"mangaverse/domain/entities"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type createGameRequest struct {
	WalletAddress string          `json:"walletAddress"`
	Stake         decimal.Decimal `json:"stake"`
}

type joinGameRequest struct {
	GameID        string `json:"gameId"`
	WalletAddress string `json:"walletAddress"`
}

type moveRequest struct {
	GameID        string `json:"gameId"`
	WalletAddress string `json:"walletAddress"`
	Choice        string `json:"choice"`
}

type gameStatusResponse struct {
	GameID string              `json:"gameId"`
	Status entities.GameStatus `json:"status"`
}

type moveResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Status  entities.RoundOutcome `json:"status"`
	Winner  *string               `json:"winner,omitempty"`
}

// gameResponse never exposes pending moves, only whether they were made
type gameResponse struct {
	ID             string              `json:"id"`
	PlayerOne      string              `json:"playerOne"`
	PlayerTwo      *string             `json:"playerTwo"`
	PlayerOneMoved bool                `json:"playerOneMoved"`
	PlayerTwoMoved bool                `json:"playerTwoMoved"`
	Stake          decimal.Decimal     `json:"stake"`
	Status         entities.GameStatus `json:"status"`
	Winner         *string             `json:"winner"`
	Round          int                 `json:"round"`
	CreatedAt      time.Time           `json:"createdAt"`
	CompletedAt    *time.Time          `json:"completedAt,omitempty"`
}

func newGameResponse(game *entities.Game) gameResponse {
	return gameResponse{
		ID:             game.ID.String(),
		PlayerOne:      game.PlayerOne,
		PlayerTwo:      game.PlayerTwo,
		PlayerOneMoved: game.PlayerOneMove != nil,
		PlayerTwoMoved: game.PlayerTwoMove != nil,
		Stake:          game.StakeAmount,
		Status:         game.Status,
		Winner:         game.Winner,
		Round:          game.Round,
		CreatedAt:      game.CreatedAt,
		CompletedAt:    game.CompletedAt,
	}
}

type gameRoutes struct {
	handler application.GameHandler
}

func setupGameRoutes(app *fiber.App, handler application.GameHandler) {
	routes := &gameRoutes{handler: handler}
	group := app.Group("/game")
	group.Post("/create", routes.create)
	group.Post("/join", routes.join)
	group.Post("/move", routes.move)
	group.Get("/:id", routes.get)
}

func (r *gameRoutes) create(c *fiber.Ctx) error {
	var req createGameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.WalletAddress == "" {
		return invalidInput("walletAddress is required")
	}

	game, err := r.handler.CreateGame(c.UserContext(), req.WalletAddress, req.Stake)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(gameStatusResponse{GameID: game.ID.String(), Status: game.Status})
}

func (r *gameRoutes) join(c *fiber.Ctx) error {
	var req joinGameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	gameID, err := parseUUID(req.GameID, "gameId")
	if err != nil {
		return err
	}
	if req.WalletAddress == "" {
		return invalidInput("walletAddress is required")
	}

	game, err := r.handler.JoinGame(c.UserContext(), gameID, req.WalletAddress)
	if err != nil {
		return err
	}
	return c.JSON(gameStatusResponse{GameID: game.ID.String(), Status: game.Status})
}

func (r *gameRoutes) move(c *fiber.Ctx) error {
	var req moveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	gameID, err := parseUUID(req.GameID, "gameId")
	if err != nil {
		return err
	}
	if req.WalletAddress == "" {
		return invalidInput("walletAddress is required")
	}

	result, err := r.handler.SubmitMove(c.UserContext(), gameID, req.WalletAddress, req.Choice)
	if err != nil {
		return err
	}
	return c.JSON(moveResponse{
		Success: true,
		Message: result.Message(),
		Status:  result.Status,
		Winner:  result.Winner,
	})
}

func (r *gameRoutes) get(c *fiber.Ctx) error {
	gameID, err := parseUUID(c.Params("id"), "id")
	if err != nil {
		return err
	}

	game, err := r.handler.GetGame(c.UserContext(), gameID)
	if err != nil {
		return err
	}
	return c.JSON(newGameResponse(game))
}
