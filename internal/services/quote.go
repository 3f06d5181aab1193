package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/db/repos"
	"github.com/fixflow/fixflow/internal/events"
	"github.com/fixflow/fixflow/internal/logger"
)

// QuoteResponseWindow is how long a customer has to respond to a quote.
const QuoteResponseWindow = 24 * time.Hour

// Quote provides business logic for the quote negotiation phase that runs
// before the pickup workflow.
type Quote struct {
	repo     *repos.JobRepository
	delivery DeliveryQuoteProvider
}

// NewQuoteService creates a new quote service instance
func NewQuoteService(repo *repos.JobRepository, delivery DeliveryQuoteProvider) *Quote {
	return &Quote{repo: repo, delivery: delivery}
}

// IssueQuote records the repair center's proposed price and terms and
// starts the customer's response window. A center may re-issue after the
// customer asks to negotiate.
func (s *Quote) IssueQuote(ctx context.Context, jobID uint, amountCents int64, notes string) (*models.RepairJob, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("quote amount %d: %w", amountCents, ErrInvalidAmount)
	}

	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusQuoteRequested && job.Status != models.JobStatusQuoteNegotiating {
		return nil, fmt.Errorf("job %d is %s, quoting requires a quote request: %w", job.ID, job.Status, ErrInvalidState)
	}

	oldStatus := job.Status
	deadline := time.Now().Add(QuoteResponseWindow)
	job.QuotedCost = amountCents
	job.QuoteNotes = notes
	job.QuoteResponseDeadline = &deadline
	job.Status = models.JobStatusQuotePendingReview

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	events.Publish(events.Event{
		Type:       events.EventQuoteIssued,
		JobID:      job.ID,
		CenterID:   job.CenterID,
		CustomerID: job.CustomerID,
		OldStatus:  oldStatus,
		NewStatus:  job.Status,
	})
	return job, nil
}

// AcceptQuote records the customer's acceptance. An expired quote cannot be
// accepted; the job is forwarded into the pickup workflow instead and the
// caller gets ErrQuoteExpired.
func (s *Quote) AcceptQuote(ctx context.Context, jobID uint) (*models.RepairJob, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusQuotePendingReview {
		return nil, fmt.Errorf("job %d is %s, acceptance requires a pending quote: %w", job.ID, job.Status, ErrInvalidState)
	}

	if job.QuoteResponseDeadline != nil && time.Now().After(*job.QuoteResponseDeadline) {
		if err := s.forwardExpired(ctx, job); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("job %d: %w", job.ID, ErrQuoteExpired)
	}

	return s.respond(ctx, job, models.JobStatusQuoteAccepted)
}

// RejectQuote records the customer's rejection; the job ends without
// entering the pickup workflow.
func (s *Quote) RejectQuote(ctx context.Context, jobID uint) (*models.RepairJob, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusQuotePendingReview {
		return nil, fmt.Errorf("job %d is %s, rejection requires a pending quote: %w", job.ID, job.Status, ErrInvalidState)
	}
	return s.respond(ctx, job, models.JobStatusQuoteRejected)
}

// NegotiateQuote records the customer's request for a revised quote; the
// repair center may then issue a new one.
func (s *Quote) NegotiateQuote(ctx context.Context, jobID uint) (*models.RepairJob, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusQuotePendingReview {
		return nil, fmt.Errorf("job %d is %s, negotiation requires a pending quote: %w", job.ID, job.Status, ErrInvalidState)
	}
	return s.respond(ctx, job, models.JobStatusQuoteNegotiating)
}

// DeliveryEstimate fetches the informational delivery cost for the quote
// view. The figure is non-authoritative: when the provider is unavailable
// the quote proceeds and the cost is surfaced as confirmed after
// acceptance.
func (s *Quote) DeliveryEstimate(ctx context.Context, pickupAddr, deliveryAddr string) (DeliveryEstimate, bool) {
	estimate, err := s.delivery.GetDeliveryQuote(ctx, pickupAddr, deliveryAddr)
	if err != nil {
		if !errors.Is(err, ErrDeliveryQuoteUnavailable) {
			logger.Warnf("delivery quote lookup failed: %v", err)
		}
		return DeliveryEstimate{}, false
	}
	return estimate, true
}

// respond applies a customer response transition on a pending quote.
func (s *Quote) respond(ctx context.Context, job *models.RepairJob, target models.JobStatus) (*models.RepairJob, error) {
	oldStatus := job.Status
	job.Status = target
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

// forwardExpired moves a job with an expired quote into the pickup workflow
// so the primary workflow can begin without an explicit customer action.
func (s *Quote) forwardExpired(ctx context.Context, job *models.RepairJob) error {
	oldStatus := job.Status
	job.Status = models.JobStatusPickupScheduled
	if err := s.repo.Save(ctx, job); err != nil {
		return err
	}

	logger.InfoWithFields("expired quote forwarded to pickup workflow", map[string]interface{}{
		"job_id": job.ID,
	})
	events.Publish(events.Event{
		Type:       events.EventJobTransitioned,
		JobID:      job.ID,
		CenterID:   job.CenterID,
		CustomerID: job.CustomerID,
		OldStatus:  oldStatus,
		NewStatus:  job.Status,
	})
	return nil
}
