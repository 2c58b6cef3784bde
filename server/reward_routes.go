package server

import (
	"mangaverse/application"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type weeklyRewardRequest struct {
	Pool *decimal.Decimal `json:"pool"`
}

func setupRewardRoutes(app *fiber.App, handler application.RewardHandler, adminOnly fiber.Handler) {
	app.Post("/weekly-reward", adminOnly, func(c *fiber.Ctx) error {
		var req weeklyRewardRequest
		if len(c.Body()) > 0 {
			if err := parseBody(c, &req); err != nil {
				return err
			}
		}

		result, err := handler.RunWeeklyDistribution(c.UserContext(), req.Pool)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})
}
