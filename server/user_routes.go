package server

import (
	"time"

	"mangaverse/application"
	"mangaverse/domain/entities"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type signUpRequest struct {
	WalletAddress string `json:"wallet_address"`
	ReferralCode  string `json:"referral_code"`
}

type signUpResponse struct {
	UserID string `json:"user_id"`
}

type awardPointsRequest struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
}

type awardPointsResponse struct {
	WeeklyPoints int64 `json:"weekly_points"`
}

type balanceResponse struct {
	Chain    string          `json:"chain"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Decimals int32           `json:"decimals"`
}

type historyResponse struct {
	Chain           string                   `json:"chain"`
	Currency        string                   `json:"currency"`
	BalanceBefore   decimal.Decimal          `json:"balance_before"`
	BalanceAfter    decimal.Decimal          `json:"balance_after"`
	ChangeAmount    decimal.Decimal          `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	RelatedID       *string                  `json:"related_id,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

type airdropRequest struct {
	UserID string `json:"user_id"`
}

type airdropResponse struct {
	UserPublicKey     string                 `json:"userPublicKey"`
	Signature         *string                `json:"signature"`
	ConfirmationError *string                `json:"confirmationError"`
	Status            entities.AirdropStatus `json:"status"`
}

type userRoutes struct {
	accounts application.AccountHandler
	airdrops application.AirdropHandler
}

func setupUserRoutes(app *fiber.App, accounts application.AccountHandler, airdrops application.AirdropHandler, adminOnly fiber.Handler) {
	routes := &userRoutes{accounts: accounts, airdrops: airdrops}
	group := app.Group("/user")
	group.Post("/signup", routes.signUp)
	group.Post("/points", adminOnly, routes.awardPoints)
	group.Get("/:id/balances", routes.balances)
	group.Get("/:id/history", routes.history)
	group.Post("/airdrop-wallet", routes.airdrop)
}

func (r *userRoutes) signUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.WalletAddress == "" {
		return invalidInput("wallet_address is required")
	}

	account, err := r.accounts.SignUp(c.UserContext(), req.WalletAddress, req.ReferralCode)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(signUpResponse{UserID: account.ID.String()})
}

func (r *userRoutes) awardPoints(c *fiber.Ctx) error {
	var req awardPointsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	userID, err := parseUUID(req.UserID, "user_id")
	if err != nil {
		return err
	}

	total, err := r.accounts.AwardPoints(c.UserContext(), userID, req.Points)
	if err != nil {
		return err
	}
	return c.JSON(awardPointsResponse{WeeklyPoints: total})
}

func (r *userRoutes) balances(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"), "id")
	if err != nil {
		return err
	}

	balances, err := r.accounts.GetBalances(c.UserContext(), userID)
	if err != nil {
		return err
	}

	response := make([]balanceResponse, 0, len(balances))
	for _, balance := range balances {
		response = append(response, balanceResponse{
			Chain:    balance.Chain,
			Currency: balance.Currency,
			Amount:   balance.Amount,
			Decimals: balance.Decimals,
		})
	}
	return c.JSON(fiber.Map{"balances": response})
}

func (r *userRoutes) history(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"), "id")
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return invalidInput("limit cannot be negative")
	}

	history, err := r.accounts.GetHistory(c.UserContext(), userID, limit)
	if err != nil {
		return err
	}

	response := make([]historyResponse, 0, len(history))
	for _, entry := range history {
		response = append(response, historyResponse{
			Chain:           entry.Chain,
			Currency:        entry.Currency,
			BalanceBefore:   entry.BalanceBefore,
			BalanceAfter:    entry.BalanceAfter,
			ChangeAmount:    entry.ChangeAmount,
			TransactionType: entry.TransactionType,
			RelatedID:       entry.RelatedID,
			CreatedAt:       entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"history": response})
}

func (r *userRoutes) airdrop(c *fiber.Ctx) error {
	var req airdropRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	userID, err := parseUUID(req.UserID, "user_id")
	if err != nil {
		return err
	}

	result, err := r.airdrops.ClaimAirdrop(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(airdropResponse{
		UserPublicKey:     result.WalletAddress,
		Signature:         result.Signature,
		ConfirmationError: result.ConfirmationError,
		Status:            result.Status,
	})
}
