package server

import (
	"errors"
	"fmt"

	"mangaverse/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// statusFor maps domain sentinels onto HTTP status codes
func statusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyClaimed):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	case errors.Is(err, domain.ErrExternalService):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status >= fiber.StatusInternalServerError && status != fiber.StatusBadGateway {
		log.WithFields(log.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"error":  err,
		}).Error("Request failed")
		message = "internal server error"
	}
	return c.Status(status).JSON(errorResponse{Success: false, Error: message})
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// parseBody decodes the JSON body, reporting malformed input as a 400
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return invalidInput("malformed request body: %v", err)
	}
	return nil
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, invalidInput("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidInput("%s must be a UUID", field)
	}
	return id, nil
}
