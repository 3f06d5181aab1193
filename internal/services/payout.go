package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/db/repos"
	"github.com/fixflow/fixflow/internal/events"
	"github.com/fixflow/fixflow/internal/logger"
	"github.com/fixflow/fixflow/internal/money"
)

// batchConcurrency bounds the number of payout records settled in parallel
// during a batch run. Records are independent after eligibility filtering.
const batchConcurrency = 8

// Payout provides the batch processor settling pending payout records.
type Payout struct {
	payouts  *repos.PayoutRepository
	settings *repos.SettingsRepository
}

// NewPayoutService creates a new payout service instance
func NewPayoutService(payouts *repos.PayoutRepository, settings *repos.SettingsRepository) *Payout {
	return &Payout{payouts: payouts, settings: settings}
}

// BatchFailure describes one record that could not be settled in a batch.
type BatchFailure struct {
	RecordID uint   `json:"record_id"`
	Error    string `json:"error"`
}

// BatchResult reports the outcome of a batch run. A failing record never
// aborts the batch; it is reported here and stays retryable.
type BatchResult struct {
	Reference    string         `json:"reference"`
	SuccessCount int            `json:"success_count"`
	FailureCount int            `json:"failure_count"`
	Failures     []BatchFailure `json:"failures,omitempty"`
}

// NewBatchReference mints a settlement reference for a batch run.
func NewBatchReference() string {
	return "batch-" + uuid.NewString()
}

// CenterSummary is the aggregate pending payout position of one repair
// center.
type CenterSummary struct {
	CenterID        uint  `json:"center_id"`
	TotalPendingNet int64 `json:"total_pending_net"`
	Count           int   `json:"count"`
}

// EligibleForPayout reports why a record cannot be settled under the given
// settings, or nil when it is eligible. A net amount exactly at the
// threshold is eligible.
func EligibleForPayout(record *models.PayoutRecord, settings models.PayoutSettings) error {
	if record.Status != models.PayoutStatusPending {
		return fmt.Errorf("payout record %d is %s: %w", record.ID, record.Status, ErrInvalidState)
	}
	if record.Disputed {
		return fmt.Errorf("payout record %d: %w", record.ID, ErrAlreadyDisputed)
	}
	if record.Currency != settings.Currency {
		return fmt.Errorf("payout record %d is %s, settings are %s: %w",
			record.ID, record.Currency, settings.Currency, money.ErrCurrencyMismatch)
	}
	if record.NetAmount < settings.MinimumThreshold {
		return fmt.Errorf("payout record %d net %d below threshold %d: %w",
			record.ID, record.NetAmount, settings.MinimumThreshold, ErrBelowThreshold)
	}
	return nil
}

// ListEligible returns the pending records that qualify for settlement
// under the given settings.
func (s *Payout) ListEligible(ctx context.Context, settings models.PayoutSettings) ([]models.PayoutRecord, error) {
	pending, err := s.payouts.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payouts: %w", err)
	}

	eligible := make([]models.PayoutRecord, 0, len(pending))
	for i := range pending {
		if EligibleForPayout(&pending[i], settings) == nil {
			eligible = append(eligible, pending[i])
		}
	}
	return eligible, nil
}

// Settings reads the current payout settings. Batch runs read them once and
// pass the value through, so a run is deterministic even if an
// administrator changes the configuration mid-run.
func (s *Payout) Settings(ctx context.Context) (models.PayoutSettings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings replaces the administrator-controlled payout settings.
func (s *Payout) UpdateSettings(ctx context.Context, settings models.PayoutSettings) (models.PayoutSettings, error) {
	if settings.MinimumThreshold < 0 {
		return models.PayoutSettings{}, fmt.Errorf("minimum threshold: %w", ErrInvalidAmount)
	}
	switch settings.PayoutFrequency {
	case models.PayoutFrequencyWeekly, models.PayoutFrequencyBiweekly, models.PayoutFrequencyMonthly:
	default:
		return models.PayoutSettings{}, fmt.Errorf("unknown payout frequency %q: %w", settings.PayoutFrequency, ErrInvalidState)
	}
	return s.settings.Update(ctx, settings)
}

// ProcessPayout settles a single payout record. The settings are read
// fresh for the run.
func (s *Payout) ProcessPayout(ctx context.Context, payoutID uint, reference string, method models.PayoutMethod, notes string) (*models.PayoutRecord, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.processSingle(ctx, payoutID, settings, reference, method, notes)
}

// processSingle claims a record and settles it. A record is never left in
// processing: a write error after the claim marks the record failed, a
// user-visible state ResetFailed moves back to pending for a retry.
func (s *Payout) processSingle(ctx context.Context, payoutID uint, settings models.PayoutSettings, reference string, method models.PayoutMethod, notes string) (*models.PayoutRecord, error) {
	if reference == "" {
		return nil, fmt.Errorf("payout record %d: %w", payoutID, ErrMissingReference)
	}

	record, err := s.payouts.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if err := EligibleForPayout(record, settings); err != nil {
		return nil, err
	}

	// Exactly one concurrent run can claim pending -> processing.
	if err := s.payouts.ClaimProcessing(ctx, record); err != nil {
		return nil, err
	}

	now := time.Now()
	record.Status = models.PayoutStatusCompleted
	record.PayoutReference = reference
	record.PayoutMethod = method
	record.PayoutNotes = notes
	record.PayoutDate = &now

	if err := s.payouts.Save(ctx, record); err != nil {
		s.markFailed(ctx, record)
		return nil, err
	}

	events.Publish(events.Event{
		Type:     events.EventPayoutCompleted,
		PayoutID: record.ID,
		JobID:    record.RepairJobID,
		CenterID: record.CenterID,
		Payout:   record.Status,
	})
	return record, nil
}

// markFailed records a settlement write failure after the claim.
func (s *Payout) markFailed(ctx context.Context, record *models.PayoutRecord) {
	if err := s.payouts.MarkFailed(ctx, record); err != nil {
		logger.ErrorWithFields("failed to mark payout record failed", map[string]interface{}{
			"payout_id": record.ID,
			"error":     err.Error(),
		})
	}
}

// ResetFailed moves a failed record back to pending so it can be retried.
func (s *Payout) ResetFailed(ctx context.Context, payoutID uint) (*models.PayoutRecord, error) {
	record, err := s.payouts.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.PayoutStatusFailed {
		return nil, fmt.Errorf("payout record %d is %s, reset requires failed: %w", record.ID, record.Status, ErrInvalidState)
	}

	record.Status = models.PayoutStatusPending
	if err := s.payouts.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ProcessBatch settles each record independently under one shared
// reference, minting one when the caller supplies none. Per-record
// failures are isolated: a batch of fifty with one bad record still
// settles the other forty-nine.
func (s *Payout) ProcessBatch(ctx context.Context, payoutIDs []uint, reference string, method models.PayoutMethod, notes string) (BatchResult, error) {
	if reference == "" {
		reference = NewBatchReference()
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)
	result.Reference = reference

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, id := range payoutIDs {
		id := id
		g.Go(func() error {
			_, err := s.processSingle(gctx, id, settings, reference, method, notes)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.FailureCount++
				result.Failures = append(result.Failures, BatchFailure{RecordID: id, Error: err.Error()})
			} else {
				result.SuccessCount++
			}
			// Per-record failures never abort the batch.
			return nil
		})
	}
	_ = g.Wait()

	logger.InfoWithFields("payout batch processed", map[string]interface{}{
		"reference": reference,
		"succeeded": result.SuccessCount,
		"failed":    result.FailureCount,
	})
	return result, nil
}

// SummarizeByCenter groups pending-eligible records by repair center. A
// read-only projection with no side effects, computed after individual
// transitions have settled.
func SummarizeByCenter(records []models.PayoutRecord, settings models.PayoutSettings) []CenterSummary {
	byCenter := make(map[uint]*CenterSummary)
	order := make([]uint, 0)
	for i := range records {
		record := &records[i]
		if EligibleForPayout(record, settings) != nil {
			continue
		}
		summary, ok := byCenter[record.CenterID]
		if !ok {
			summary = &CenterSummary{CenterID: record.CenterID}
			byCenter[record.CenterID] = summary
			order = append(order, record.CenterID)
		}
		summary.TotalPendingNet += record.NetAmount
		summary.Count++
	}

	summaries := make([]CenterSummary, 0, len(byCenter))
	for _, centerID := range order {
		summaries = append(summaries, *byCenter[centerID])
	}
	return summaries
}

// Summarize loads the pending ledger and current settings and returns the
// per-center aggregate view.
func (s *Payout) Summarize(ctx context.Context) ([]CenterSummary, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.payouts.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeByCenter(pending, settings), nil
}
