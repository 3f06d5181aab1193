// Package handlers provides HTTP request handling
package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fixflow/fixflow/internal/db/repos"
	"github.com/fixflow/fixflow/internal/money"
	"github.com/fixflow/fixflow/internal/services"
)

// Common error messages
const (
	ErrMsgInvalidReqBody = "Invalid request body"
	ErrMsgInvalidID      = "Invalid id"
	ErrMsgIDRequired     = "Id is required"
)

// Job error messages
const (
	ErrMsgJobNotFound      = "Job not found"
	ErrMsgJobCreateFailed  = "Failed to create job"
	ErrMsgJobListFailed    = "Failed to list jobs"
	ErrMsgJobGetFailed     = "Failed to get job"
	ErrMsgInvalidJobStatus = "Invalid job status"
)

// Payout error messages
const (
	ErrMsgPayoutNotFound       = "Payout record not found"
	ErrMsgPayoutListFailed     = "Failed to list payout records"
	ErrMsgPayoutGetFailed      = "Failed to get payout record"
	ErrMsgSettingsGetFailed    = "Failed to get payout settings"
	ErrMsgSettingsUpdateFailed = "Failed to update payout settings"
)

// respondWithError maps a service error to an HTTP status and envelope.
// Business-rule rejections come back as client errors, not 500s.
func respondWithError(c *fiber.Ctx, err error, fallbackMsg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errNotFound(err.Error()))
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrTerminalState),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrQuoteExpired),
		errors.Is(err, services.ErrAlreadyDisputed),
		errors.Is(err, repos.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(errConflict(err.Error()))
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrMissingReference),
		errors.Is(err, services.ErrBelowThreshold),
		errors.Is(err, money.ErrCurrencyMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(errServer(fallbackMsg + ": " + err.Error()))
	}
}
