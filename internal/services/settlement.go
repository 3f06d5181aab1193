package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fixflow/fixflow/internal/db"
	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/db/repos"
	"github.com/fixflow/fixflow/internal/events"
	"github.com/fixflow/fixflow/internal/money"
)

// Settlement provides business logic for the payout ledger: materializing
// payout records from paid jobs and handling disputes.
type Settlement struct {
	payouts  *repos.PayoutRepository
	jobs     *repos.JobRepository
	verifier PaymentVerifier
}

// NewSettlementService creates a new settlement service instance
func NewSettlementService(payouts *repos.PayoutRepository, jobs *repos.JobRepository, verifier PaymentVerifier) *Settlement {
	return &Settlement{payouts: payouts, jobs: jobs, verifier: verifier}
}

// MaterializePayout derives the payout record for a paid job. Idempotent:
// the record for a job is created exactly once and returned on every later
// call. The payment reference is verified with the payment collaborator
// before a record is created.
func (s *Settlement) MaterializePayout(ctx context.Context, jobID uint, gross money.Amount, paymentReference string) (*models.PayoutRecord, error) {
	existing, err := s.payouts.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.FinalCost == 0 {
		return nil, fmt.Errorf("job %d has no final cost yet: %w", job.ID, ErrInvalidState)
	}
	if !gross.IsPositive() {
		return nil, fmt.Errorf("gross amount %s: %w", gross, ErrInvalidAmount)
	}
	if gross.Currency != job.Currency {
		return nil, fmt.Errorf("gross is %s, job is %s: %w", gross.Currency, job.Currency, money.ErrCurrencyMismatch)
	}

	state, err := s.verifier.VerifyPayment(ctx, paymentReference)
	if err != nil {
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}
	if state != PaymentCompleted {
		return nil, fmt.Errorf("payment %q is %s: %w", paymentReference, state, ErrInvalidState)
	}

	commission := money.Commission(gross, money.RepairCommissionBps)
	net, err := gross.Sub(commission)
	if err != nil {
		return nil, err
	}

	record := &models.PayoutRecord{
		RepairJobID:      job.ID,
		CenterID:         job.CenterID,
		GrossAmount:      gross.Cents,
		CommissionAmount: commission.Cents,
		NetAmount:        net.Cents,
		Currency:         gross.Currency,
		Status:           models.PayoutStatusPending,
	}
	if err := s.payouts.Create(ctx, record); err != nil {
		// A concurrent materialization may have won the unique-index race;
		// the existing record is the answer either way.
		if db.IsDuplicateKeyError(err) {
			return s.payouts.GetByJobID(ctx, jobID)
		}
		return nil, fmt.Errorf("failed to create payout record: %w", err)
	}
	return record, nil
}

// GetPayout retrieves a payout record by ID
func (s *Settlement) GetPayout(ctx context.Context, id uint) (*models.PayoutRecord, error) {
	return s.payouts.GetByID(ctx, id)
}

// ListPayouts retrieves a paginated list of payout records
func (s *Settlement) ListPayouts(ctx context.Context, opts *models.ListOptions) ([]models.PayoutRecord, error) {
	return s.payouts.List(ctx, opts)
}

// RaiseDispute flags a pending payout record as disputed, freezing it out
// of batch eligibility until the dispute is resolved.
func (s *Settlement) RaiseDispute(ctx context.Context, payoutID uint, reason, notes string) (*models.PayoutRecord, error) {
	record, err := s.payouts.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if record.Disputed {
		return nil, fmt.Errorf("payout record %d: %w", record.ID, ErrAlreadyDisputed)
	}
	if record.Status != models.PayoutStatusPending {
		return nil, fmt.Errorf("payout record %d is %s, disputes require pending: %w", record.ID, record.Status, ErrInvalidState)
	}
	if reason == "" {
		return nil, fmt.Errorf("dispute reason is required: %w", ErrInvalidState)
	}

	now := time.Now()
	record.Disputed = true
	record.DisputeReason = reason
	record.DisputeNotes = notes
	record.DisputedAt = &now

	if err := s.payouts.Save(ctx, record); err != nil {
		return nil, err
	}

	events.Publish(events.Event{
		Type:     events.EventPayoutDisputed,
		PayoutID: record.ID,
		JobID:    record.RepairJobID,
		CenterID: record.CenterID,
		Payout:   record.Status,
	})
	return record, nil
}

// ResolveDispute clears the dispute flag after administrative review so the
// record re-enters batch eligibility. The dispute reason is kept for audit.
func (s *Settlement) ResolveDispute(ctx context.Context, payoutID uint, notes string) (*models.PayoutRecord, error) {
	record, err := s.payouts.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if !record.Disputed {
		return nil, fmt.Errorf("payout record %d is not disputed: %w", record.ID, ErrInvalidState)
	}

	record.Disputed = false
	if notes != "" {
		record.DisputeNotes = notes
	}

	if err := s.payouts.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}
