package server

import (
	"mangaverse/application"

	"github.com/gofiber/fiber/v2"
)

type referralRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type referralResponse struct {
	ReferralCode string `json:"referral_code"`
}

func setupReferralRoutes(app *fiber.App, handler application.AccountHandler) {
	app.Post("/referral/generate", func(c *fiber.Ctx) error {
		var req referralRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if req.WalletAddress == "" {
			return invalidInput("wallet_address is required")
		}

		code, err := handler.GenerateReferralCode(c.UserContext(), req.WalletAddress)
		if err != nil {
			return err
		}
		return c.JSON(referralResponse{ReferralCode: code})
	})
}
