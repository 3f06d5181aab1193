// Package services provides business logic implementation for the API
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/db/repos"
	"github.com/fixflow/fixflow/internal/events"
	"github.com/fixflow/fixflow/internal/money"
)

// PaymentWindow is how long a customer has to pay after repair completion.
const PaymentWindow = 48 * time.Hour

// Job provides business logic for repair-job lifecycle operations
type Job struct {
	repo *repos.JobRepository
}

// NewJobService creates a new job service instance
func NewJobService(repo *repos.JobRepository) *Job {
	return &Job{repo: repo}
}

// CreateJobParams are the intake fields for a new repair job.
type CreateJobParams struct {
	CustomerID    uint
	CenterID      uint
	Device        string
	IssueNotes    string
	EstimatedCost int64
	Currency      string
	WithQuote     bool // start in the quote negotiation phase
}

// Validate checks the intake parameters.
func (p CreateJobParams) Validate() error {
	if p.CustomerID == 0 {
		return fmt.Errorf("customer_id is required")
	}
	if p.CenterID == 0 {
		return fmt.Errorf("center_id is required")
	}
	if p.EstimatedCost < 0 {
		return fmt.Errorf("estimated cost: %w", ErrInvalidAmount)
	}
	return nil
}

// CreateJob creates a repair job at intake. Jobs either begin the quote
// negotiation phase or go straight into the pickup workflow.
func (s *Job) CreateJob(ctx context.Context, params CreateJobParams) (*models.RepairJob, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job request: %w", err)
	}

	status := models.JobStatusRequested
	if params.WithQuote {
		status = models.JobStatusQuoteRequested
	}

	job := &models.RepairJob{
		CustomerID:    params.CustomerID,
		CenterID:      params.CenterID,
		Device:        params.Device,
		IssueNotes:    params.IssueNotes,
		EstimatedCost: params.EstimatedCost,
		Currency:      money.New(0, params.Currency).Currency,
		Status:        status,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a repair job by ID
func (s *Job) GetJob(ctx context.Context, id uint) (*models.RepairJob, error) {
	return s.repo.GetByID(ctx, id)
}

// ListJobs retrieves a paginated list of repair jobs
func (s *Job) ListJobs(ctx context.Context, opts *models.ListOptions) ([]models.RepairJob, error) {
	return s.repo.List(ctx, opts)
}

// TransitionJob validates and applies a status transition. On the
// repair_completed transition the final cost defaults to the quoted cost,
// the platform commission and the payment deadline are derived, and all
// three are immutable afterwards. The committed transition is published as
// a JobTransitioned event.
func (s *Job) TransitionJob(ctx context.Context, jobID uint, target models.JobStatus) (*models.RepairJob, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status.IsTerminal() {
		return nil, fmt.Errorf("job %d is %s: %w", job.ID, job.Status, ErrTerminalState)
	}
	// Quote states are entered only through the quote operations, which
	// apply the side effects (quoted cost, response deadline) and the
	// expiry check these edges require.
	if target.IsQuotePhase() {
		return nil, fmt.Errorf("job %d: %s is set through the quote operations: %w", job.ID, target, ErrInvalidTransition)
	}
	if !job.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("job %d: %s -> %s: %w", job.ID, job.Status, target, ErrInvalidTransition)
	}

	oldStatus := job.Status
	job.Status = target

	if target == models.JobStatusRepairCompleted {
		s.applyCompletionCosts(job)
	}

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	events.Publish(events.Event{
		Type:       events.EventJobTransitioned,
		JobID:      job.ID,
		CenterID:   job.CenterID,
		CustomerID: job.CustomerID,
		OldStatus:  oldStatus,
		NewStatus:  job.Status,
	})
	return job, nil
}

// applyCompletionCosts derives the money fields fixed at the
// repair_completed transition.
func (s *Job) applyCompletionCosts(job *models.RepairJob) {
	if job.FinalCost == 0 {
		job.FinalCost = job.QuotedCost
	}
	commission := money.Commission(money.New(job.FinalCost, job.Currency), money.RepairCommissionBps)
	job.AppCommission = commission.Cents
	deadline := time.Now().Add(PaymentWindow)
	job.PaymentDeadline = &deadline
}

// ConfirmCompletionParams are the customer's completion confirmations.
type ConfirmCompletionParams struct {
	DeviceReturned       bool
	RepairSatisfaction   bool
	SatisfactionRating   int
	SatisfactionFeedback string
}

// ConfirmCompletion records the customer's return and satisfaction
// confirmations and moves a returned job to completed.
func (s *Job) ConfirmCompletion(ctx context.Context, jobID uint, params ConfirmCompletionParams) (*models.RepairJob, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != models.JobStatusReturned {
		return nil, fmt.Errorf("job %d is %s, confirmation requires returned: %w", job.ID, job.Status, ErrInvalidState)
	}
	if params.SatisfactionRating < 0 || params.SatisfactionRating > 5 {
		return nil, fmt.Errorf("satisfaction rating must be between 0 and 5: %w", ErrInvalidAmount)
	}

	oldStatus := job.Status
	job.CustomerConfirmed = true
	job.DeviceReturnedConfirmed = params.DeviceReturned
	job.RepairSatisfactionConfirmed = params.RepairSatisfaction
	job.SatisfactionRating = params.SatisfactionRating
	job.SatisfactionFeedback = params.SatisfactionFeedback
	job.Status = models.JobStatusCompleted

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	events.Publish(events.Event{
		Type:       events.EventJobTransitioned,
		JobID:      job.ID,
		CenterID:   job.CenterID,
		CustomerID: job.CustomerID,
		OldStatus:  oldStatus,
		NewStatus:  job.Status,
	})
	return job, nil
}
