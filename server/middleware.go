package server

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// adminAuth guards operator-only routes with a static bearer token. An empty
// configured token rejects every request.
func adminAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("X-Admin-Token")
		if provided == "" {
			provided = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}
		if token == "" || provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			log.WithFields(log.Fields{
				"path": c.Path(),
				"ip":   c.IP(),
			}).Warn("Rejected admin request")
			return fiber.NewError(fiber.StatusUnauthorized, "admin token required")
		}
		return c.Next()
	}
}

// requestObserver resolves handler errors in place so the recorded status is
// the one sent to the client
func requestObserver(recorder RequestRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		log.WithFields(log.Fields{
			"method":   c.Method(),
			"route":    route,
			"status":   status,
			"duration": duration,
		}).Debug("Request served")

		if recorder != nil {
			recorder.RecordHTTPRequest(c.Method(), route, status, duration)
		}
		return nil
	}
}
