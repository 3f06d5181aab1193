package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/money"
	"github.com/fixflow/fixflow/internal/services"
	"github.com/fixflow/fixflow/internal/types"
)

// PayoutHandler handles HTTP requests for the payout ledger and batch
// settlement operations
type PayoutHandler struct {
	settlement *services.Settlement
	payouts    *services.Payout
}

// NewPayoutHandler creates a new payout handler instance
func NewPayoutHandler(settlement *services.Settlement, payouts *services.Payout) *PayoutHandler {
	return &PayoutHandler{settlement: settlement, payouts: payouts}
}

// MaterializePayout derives the payout record for a paid job
func (h *PayoutHandler) MaterializePayout(c *fiber.Ctx) error {
	var req types.MaterializePayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	gross := money.New(req.GrossCents, req.Currency)
	record, err := h.settlement.MaterializePayout(c.Context(), req.JobID, gross, req.PaymentReference)
	if err != nil {
		return respondWithError(c, err, "Failed to materialize payout")
	}
	return c.Status(fiber.StatusCreated).JSON(success(record))
}

// GetPayout returns details of a specific payout record
func (h *PayoutHandler) GetPayout(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	record, err := h.settlement.GetPayout(c.Context(), id)
	if err != nil {
		return respondWithError(c, err, ErrMsgPayoutGetFailed)
	}
	return c.JSON(success(record))
}

// ListPayouts returns a paginated list of payout records, optionally
// filtered by status and repair center
func (h *PayoutHandler) ListPayouts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	opts := getPaginationOptions(page)

	if status := c.Query("status"); status != "" {
		parsed, err := models.ParsePayoutStatus(status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
		}
		opts.PayoutStatus = &parsed
	}
	if centerID := c.QueryInt("center_id", 0); centerID > 0 {
		opts.CenterID = uint(centerID)
	}

	records, err := h.settlement.ListPayouts(c.Context(), opts)
	if err != nil {
		return respondWithError(c, err, ErrMsgPayoutListFailed)
	}

	return c.JSON(success(types.ListResponse[models.PayoutRecord]{
		Rows: records,
		Pagination: types.PaginationResponse{
			Total:  len(records),
			Page:   page,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	}))
}

// ListEligible returns the pending records that currently qualify for
// settlement under the active payout settings
func (h *PayoutHandler) ListEligible(c *fiber.Ctx) error {
	settings, err := h.payouts.Settings(c.Context())
	if err != nil {
		return respondWithError(c, err, ErrMsgSettingsGetFailed)
	}

	records, err := h.payouts.ListEligible(c.Context(), settings)
	if err != nil {
		return respondWithError(c, err, ErrMsgPayoutListFailed)
	}
	return c.JSON(success(records))
}

// Summary returns the aggregate pending payout position per repair center
func (h *PayoutHandler) Summary(c *fiber.Ctx) error {
	summaries, err := h.payouts.Summarize(c.Context())
	if err != nil {
		return respondWithError(c, err, "Failed to summarize payouts")
	}
	return c.JSON(success(summaries))
}

// RaiseDispute flags a payout record as disputed
func (h *PayoutHandler) RaiseDispute(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	var req types.DisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	record, err := h.settlement.RaiseDispute(c.Context(), id, req.Reason, req.Notes)
	if err != nil {
		return respondWithError(c, err, "Failed to raise dispute")
	}
	return c.JSON(success(record))
}

// ResolveDispute clears a dispute after administrative review
func (h *PayoutHandler) ResolveDispute(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	var req types.ResolveDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}

	record, err := h.settlement.ResolveDispute(c.Context(), id, req.Notes)
	if err != nil {
		return respondWithError(c, err, "Failed to resolve dispute")
	}
	return c.JSON(success(record))
}

// ProcessPayout settles a single payout record
func (h *PayoutHandler) ProcessPayout(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	var req types.ProcessPayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	record, err := h.payouts.ProcessPayout(c.Context(), id, req.Reference, payoutMethod(req.Method), req.Notes)
	if err != nil {
		return respondWithError(c, err, "Failed to process payout")
	}
	return c.JSON(success(record))
}

// ProcessBatch settles a set of payout records under one reference
func (h *PayoutHandler) ProcessBatch(c *fiber.Ctx) error {
	var req types.ProcessBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	result, err := h.payouts.ProcessBatch(c.Context(), req.PayoutIDs, req.Reference, payoutMethod(req.Method), req.Notes)
	if err != nil {
		return respondWithError(c, err, "Failed to process batch")
	}
	return c.JSON(success(result))
}

// ResetFailed moves a failed payout record back to pending
func (h *PayoutHandler) ResetFailed(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	record, err := h.payouts.ResetFailed(c.Context(), id)
	if err != nil {
		return respondWithError(c, err, "Failed to reset payout")
	}
	return c.JSON(success(record))
}

// GetSettings returns the administrator payout settings
func (h *PayoutHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.payouts.Settings(c.Context())
	if err != nil {
		return respondWithError(c, err, ErrMsgSettingsGetFailed)
	}
	return c.JSON(success(settings))
}

// UpdateSettings replaces the administrator payout settings
func (h *PayoutHandler) UpdateSettings(c *fiber.Ctx) error {
	var req types.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	currency := req.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	settings, err := h.payouts.UpdateSettings(c.Context(), models.PayoutSettings{
		PayoutFrequency:  models.PayoutFrequency(req.PayoutFrequency),
		MinimumThreshold: req.MinimumThreshold,
		Currency:         currency,
		AutoProcess:      req.AutoProcess,
	})
	if err != nil {
		return respondWithError(c, err, ErrMsgSettingsUpdateFailed)
	}
	return c.JSON(success(settings))
}

// payoutMethod normalizes the requested disbursement method, defaulting to
// bank transfer.
func payoutMethod(method string) models.PayoutMethod {
	if method == "" {
		return models.PayoutMethodBankTransfer
	}
	return models.PayoutMethod(method)
}
