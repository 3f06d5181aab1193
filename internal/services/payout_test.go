package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/money"
)

func TestEligibleForPayout(t *testing.T) {
	settings := models.PayoutSettings{
		MinimumThreshold: 5000,
		Currency:         money.DefaultCurrency,
	}

	base := func() *models.PayoutRecord {
		return &models.PayoutRecord{
			NetAmount: 9250,
			Currency:  money.DefaultCurrency,
			Status:    models.PayoutStatusPending,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.PayoutRecord)
		wantErr error
	}{
		{"pending above threshold", func(_ *models.PayoutRecord) {}, nil},
		{"exactly at threshold", func(r *models.PayoutRecord) { r.NetAmount = 5000 }, nil},
		{"one cent below threshold", func(r *models.PayoutRecord) { r.NetAmount = 4999 }, ErrBelowThreshold},
		{"disputed", func(r *models.PayoutRecord) { r.Disputed = true }, ErrAlreadyDisputed},
		{"already processing", func(r *models.PayoutRecord) { r.Status = models.PayoutStatusProcessing }, ErrInvalidState},
		{"already completed", func(r *models.PayoutRecord) { r.Status = models.PayoutStatusCompleted }, ErrInvalidState},
		{"foreign currency", func(r *models.PayoutRecord) { r.Currency = "USD" }, money.ErrCurrencyMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := base()
			tt.mutate(record)
			err := EligibleForPayout(record, settings)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPayoutService_ProcessPayout(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()
	ts.resetSettings(t, 0)

	record := ts.createTestPayout(t, 10, 9250)

	settled, err := ts.PayoutService.ProcessPayout(ts.ctx, record.ID, "batch-2026-08", models.PayoutMethodBankTransfer, "weekly run")
	require.NoError(t, err)

	assert.Equal(t, models.PayoutStatusCompleted, settled.Status)
	assert.Equal(t, "batch-2026-08", settled.PayoutReference)
	assert.Equal(t, models.PayoutMethodBankTransfer, settled.PayoutMethod)
	require.NotNil(t, settled.PayoutDate)

	// Settling the same record again fails: it is no longer pending
	_, err = ts.PayoutService.ProcessPayout(ts.ctx, record.ID, "batch-2026-08", models.PayoutMethodBankTransfer, "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPayoutService_ProcessPayout_MissingReference(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()
	ts.resetSettings(t, 0)

	record := ts.createTestPayout(t, 10, 9250)

	_, err := ts.PayoutService.ProcessPayout(ts.ctx, record.ID, "", models.PayoutMethodBankTransfer, "")
	assert.ErrorIs(t, err, ErrMissingReference)

	// The record is untouched
	fetched, err := ts.PayoutRepo.GetByID(ts.ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, fetched.Status)
}

func TestPayoutService_ProcessBatch(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()
	ts.resetSettings(t, 0)

	a := ts.createTestPayout(t, 10, 9250)
	b := ts.createTestPayout(t, 10, 4000)
	c := ts.createTestPayout(t, 20, 12000)

	disputed := ts.createTestPayout(t, 20, 8000)
	_, err := ts.SettlementService.RaiseDispute(ts.ctx, disputed.ID, "amount contested", "")
	require.NoError(t, err)

	result, err := ts.PayoutService.ProcessBatch(ts.ctx,
		[]uint{a.ID, b.ID, c.ID, disputed.ID},
		"batch-2026-08", models.PayoutMethodBankTransfer, "")
	require.NoError(t, err)

	assert.Equal(t, "batch-2026-08", result.Reference)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, disputed.ID, result.Failures[0].RecordID)

	// The disputed record stays pending and retryable after resolution
	frozen, err := ts.PayoutRepo.GetByID(ts.ctx, disputed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, frozen.Status)
	assert.True(t, frozen.Disputed)

	for _, id := range []uint{a.ID, b.ID, c.ID} {
		settled, err := ts.PayoutRepo.GetByID(ts.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.PayoutStatusCompleted, settled.Status)
		assert.Equal(t, "batch-2026-08", settled.PayoutReference)
	}
}

func TestPayoutService_ProcessBatch_ThresholdFiltering(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()
	ts.resetSettings(t, 5000)

	atThreshold := ts.createTestPayout(t, 10, 5000)
	below := ts.createTestPayout(t, 10, 4999)

	result, err := ts.PayoutService.ProcessBatch(ts.ctx,
		[]uint{atThreshold.ID, below.ID},
		"batch-2026-08", models.PayoutMethodBankTransfer, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, below.ID, result.Failures[0].RecordID)

	kept, err := ts.PayoutRepo.GetByID(ts.ctx, below.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, kept.Status, "sub-threshold record rolls into the next cycle")
}

func TestPayoutService_ProcessBatch_GeneratesReference(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()
	ts.resetSettings(t, 0)

	record := ts.createTestPayout(t, 10, 9250)

	result, err := ts.PayoutService.ProcessBatch(ts.ctx,
		[]uint{record.ID}, "", models.PayoutMethodBankTransfer, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.True(t, strings.HasPrefix(result.Reference, "batch-"))

	settled, err := ts.PayoutRepo.GetByID(ts.ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Reference, settled.PayoutReference)
}

func TestPayoutService_ListEligible(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()
	settings := ts.resetSettings(t, 5000)

	eligible := ts.createTestPayout(t, 10, 9250)
	ts.createTestPayout(t, 10, 1000) // below threshold

	disputed := ts.createTestPayout(t, 20, 8000)
	_, err := ts.SettlementService.RaiseDispute(ts.ctx, disputed.ID, "amount contested", "")
	require.NoError(t, err)

	records, err := ts.PayoutService.ListEligible(ts.ctx, settings)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, eligible.ID, records[0].ID)
}

func TestPayoutService_FailedSettlementRetries(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()
	ts.resetSettings(t, 0)

	record := ts.createTestPayout(t, 10, 9250)
	require.NoError(t, ts.PayoutRepo.ClaimProcessing(ts.ctx, record))

	// A settlement write error after the claim surfaces as failed rather
	// than leaving the record stuck in processing
	ts.PayoutService.markFailed(ts.ctx, record)

	failed, err := ts.PayoutRepo.GetByID(ts.ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusFailed, failed.Status)
	assert.Empty(t, failed.PayoutReference)
	assert.Nil(t, failed.PayoutDate)

	// Failed records are excluded from eligibility until reset
	_, err = ts.PayoutService.ProcessPayout(ts.ctx, record.ID, "po-2026-0042", models.PayoutMethodBankTransfer, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	reset, err := ts.PayoutService.ResetFailed(ts.ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, reset.Status)

	settled, err := ts.PayoutService.ProcessPayout(ts.ctx, record.ID, "po-2026-0042", models.PayoutMethodBankTransfer, "")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusCompleted, settled.Status)
}

func TestPayoutService_ResetFailed_RequiresFailed(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	record := ts.createTestPayout(t, 10, 9250)
	_, err := ts.PayoutService.ResetFailed(ts.ctx, record.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPayoutService_UpdateSettings(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()
	ts.resetSettings(t, 0)

	updated, err := ts.PayoutService.UpdateSettings(ts.ctx, models.PayoutSettings{
		PayoutFrequency:  models.PayoutFrequencyMonthly,
		MinimumThreshold: 2500,
		Currency:         money.DefaultCurrency,
		AutoProcess:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PayoutFrequencyMonthly, updated.PayoutFrequency)
	assert.Equal(t, int64(2500), updated.MinimumThreshold)
	assert.True(t, updated.AutoProcess)

	_, err = ts.PayoutService.UpdateSettings(ts.ctx, models.PayoutSettings{
		PayoutFrequency:  "daily",
		MinimumThreshold: 0,
		Currency:         money.DefaultCurrency,
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = ts.PayoutService.UpdateSettings(ts.ctx, models.PayoutSettings{
		PayoutFrequency:  models.PayoutFrequencyWeekly,
		MinimumThreshold: -100,
		Currency:         money.DefaultCurrency,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSummarizeByCenter(t *testing.T) {
	settings := models.PayoutSettings{
		MinimumThreshold: 1000,
		Currency:         money.DefaultCurrency,
	}

	records := []models.PayoutRecord{
		{CenterID: 10, NetAmount: 9250, Currency: money.DefaultCurrency, Status: models.PayoutStatusPending},
		{CenterID: 10, NetAmount: 4000, Currency: money.DefaultCurrency, Status: models.PayoutStatusPending},
		{CenterID: 20, NetAmount: 12000, Currency: money.DefaultCurrency, Status: models.PayoutStatusPending},
		// Ineligible entries are excluded from the projection
		{CenterID: 20, NetAmount: 500, Currency: money.DefaultCurrency, Status: models.PayoutStatusPending},
		{CenterID: 30, NetAmount: 7000, Currency: money.DefaultCurrency, Status: models.PayoutStatusPending, Disputed: true},
		{CenterID: 30, NetAmount: 7000, Currency: money.DefaultCurrency, Status: models.PayoutStatusCompleted},
	}

	summaries := SummarizeByCenter(records, settings)
	require.Len(t, summaries, 2)

	assert.Equal(t, uint(10), summaries[0].CenterID)
	assert.Equal(t, int64(13250), summaries[0].TotalPendingNet)
	assert.Equal(t, 2, summaries[0].Count)

	assert.Equal(t, uint(20), summaries[1].CenterID)
	assert.Equal(t, int64(12000), summaries[1].TotalPendingNet)
	assert.Equal(t, 1, summaries[1].Count)
}
