package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/services"
	"github.com/fixflow/fixflow/internal/types"
)

// JobHandler handles HTTP requests for repair-job lifecycle operations
type JobHandler struct {
	jobs   *services.Job
	quotes *services.Quote
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(jobs *services.Job, quotes *services.Quote) *JobHandler {
	return &JobHandler{jobs: jobs, quotes: quotes}
}

// parseIDParam reads the :id route parameter.
func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, ErrMsgInvalidID)
	}
	return uint(id), nil
}

// CreateJob handles the intake of a new repair job
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var req types.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.jobs.CreateJob(c.Context(), services.CreateJobParams{
		CustomerID:    req.CustomerID,
		CenterID:      req.CenterID,
		Device:        req.Device,
		IssueNotes:    req.IssueNotes,
		EstimatedCost: req.EstimatedCost,
		Currency:      req.Currency,
		WithQuote:     req.WithQuote,
	})
	if err != nil {
		return respondWithError(c, err, ErrMsgJobCreateFailed)
	}
	return c.Status(fiber.StatusCreated).JSON(success(job))
}

// GetJob returns details of a specific repair job
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	job, err := h.jobs.GetJob(c.Context(), id)
	if err != nil {
		return respondWithError(c, err, ErrMsgJobGetFailed)
	}
	return c.JSON(success(job))
}

// ListJobs returns a paginated list of repair jobs, optionally filtered by
// status and repair center
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	opts := getPaginationOptions(page)

	if status := c.Query("status"); status != "" {
		parsed, err := models.ParseJobStatus(status)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidJobStatus))
		}
		opts.JobStatus = &parsed
	}
	if centerID := c.QueryInt("center_id", 0); centerID > 0 {
		opts.CenterID = uint(centerID)
	}

	jobs, err := h.jobs.ListJobs(c.Context(), opts)
	if err != nil {
		return respondWithError(c, err, ErrMsgJobListFailed)
	}

	return c.JSON(success(types.ListResponse[models.RepairJob]{
		Rows: jobs,
		Pagination: types.PaginationResponse{
			Total:  len(jobs),
			Page:   page,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	}))
}

// TransitionJob applies a status transition to a repair job
func (h *JobHandler) TransitionJob(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	var req types.TransitionJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	target, err := models.ParseJobStatus(req.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidJobStatus))
	}

	job, err := h.jobs.TransitionJob(c.Context(), id, target)
	if err != nil {
		return respondWithError(c, err, "Failed to transition job")
	}
	return c.JSON(success(job))
}

// ConfirmCompletion records the customer's completion confirmations
func (h *JobHandler) ConfirmCompletion(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	var req types.ConfirmCompletionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.jobs.ConfirmCompletion(c.Context(), id, services.ConfirmCompletionParams{
		DeviceReturned:       req.DeviceReturned,
		RepairSatisfaction:   req.RepairSatisfaction,
		SatisfactionRating:   req.SatisfactionRating,
		SatisfactionFeedback: req.SatisfactionFeedback,
	})
	if err != nil {
		return respondWithError(c, err, "Failed to confirm completion")
	}
	return c.JSON(success(job))
}

// IssueQuote records the repair center's proposed price and terms
func (h *JobHandler) IssueQuote(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	var req types.IssueQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	job, err := h.quotes.IssueQuote(c.Context(), id, req.AmountCents, req.Notes)
	if err != nil {
		return respondWithError(c, err, "Failed to issue quote")
	}
	return c.JSON(success(job))
}

// AcceptQuote records the customer's acceptance of a pending quote
func (h *JobHandler) AcceptQuote(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	job, err := h.quotes.AcceptQuote(c.Context(), id)
	if err != nil {
		return respondWithError(c, err, "Failed to accept quote")
	}
	return c.JSON(success(job))
}

// RejectQuote records the customer's rejection of a pending quote
func (h *JobHandler) RejectQuote(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	job, err := h.quotes.RejectQuote(c.Context(), id)
	if err != nil {
		return respondWithError(c, err, "Failed to reject quote")
	}
	return c.JSON(success(job))
}

// NegotiateQuote records the customer's request for a revised quote
func (h *JobHandler) NegotiateQuote(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(ErrMsgInvalidID))
	}

	job, err := h.quotes.NegotiateQuote(c.Context(), id)
	if err != nil {
		return respondWithError(c, err, "Failed to negotiate quote")
	}
	return c.JSON(success(job))
}

// DeliveryEstimate returns the informational delivery cost for an address
// pair. The figure is optional; when the provider is unavailable the
// response says so instead of failing.
func (h *JobHandler) DeliveryEstimate(c *fiber.Ctx) error {
	req := types.DeliveryEstimateRequest{
		PickupAddress:   c.Query("pickup_address"),
		DeliveryAddress: c.Query("delivery_address"),
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidInput(err.Error()))
	}

	estimate, ok := h.quotes.DeliveryEstimate(c.Context(), req.PickupAddress, req.DeliveryAddress)
	return c.JSON(success(fiber.Map{
		"available": ok,
		"estimate":  estimate,
	}))
}
