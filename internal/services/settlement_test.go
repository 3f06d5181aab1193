package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixflow/fixflow/internal/db"
	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/money"
)

// completedJob creates a job carrying the derived completion costs, ready
// for payout materialization.
func (ts *TestSetup) completedJob(t *testing.T, finalCost int64) *models.RepairJob {
	job := ts.createTestJob(t, models.JobStatusCompleted)
	job.FinalCost = finalCost
	job.AppCommission = money.Commission(money.New(finalCost, job.Currency), money.RepairCommissionBps).Cents
	require.NoError(t, ts.JobRepo.Save(ts.ctx, job))
	return job
}

func TestSettlementService_MaterializePayout(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	job := ts.completedJob(t, 10000)
	gross := money.New(10000, job.Currency)

	record, err := ts.SettlementService.MaterializePayout(ts.ctx, job.ID, gross, "pay-001")
	require.NoError(t, err)

	assert.Equal(t, job.ID, record.RepairJobID)
	assert.Equal(t, job.CenterID, record.CenterID)
	assert.Equal(t, int64(10000), record.GrossAmount)
	assert.Equal(t, int64(750), record.CommissionAmount)
	assert.Equal(t, int64(9250), record.NetAmount)
	assert.Equal(t, record.GrossAmount-record.CommissionAmount, record.NetAmount)
	assert.Equal(t, models.PayoutStatusPending, record.Status)
	assert.False(t, record.Disputed)
}

func TestSettlementService_MaterializePayout_Idempotent(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	job := ts.completedJob(t, 10000)
	gross := money.New(10000, job.Currency)

	first, err := ts.SettlementService.MaterializePayout(ts.ctx, job.ID, gross, "pay-001")
	require.NoError(t, err)

	// A repeated materialization returns the existing record untouched,
	// even with a different gross amount
	second, err := ts.SettlementService.MaterializePayout(ts.ctx, job.ID, money.New(99999, job.Currency), "pay-002")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.GrossAmount, second.GrossAmount)
}

func TestSettlementService_DuplicateRecordDetection(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	job := ts.completedJob(t, 10000)
	first, err := ts.SettlementService.MaterializePayout(ts.ctx, job.ID, money.New(10000, job.Currency), "pay-001")
	require.NoError(t, err)

	// A second insert for the same job trips the unique index, and the
	// violation is recognized regardless of the connection's dialector
	dup := &models.PayoutRecord{
		RepairJobID: job.ID,
		CenterID:    job.CenterID,
		GrossAmount: first.GrossAmount,
		NetAmount:   first.NetAmount,
		Currency:    first.Currency,
		Status:      models.PayoutStatusPending,
	}
	err = ts.PayoutRepo.Create(ts.ctx, dup)
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyError(err))
}

func TestSettlementService_MaterializePayout_Rejections(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	// No final cost fixed yet
	unfinished := ts.createTestJob(t, models.JobStatusInRepair)
	_, err := ts.SettlementService.MaterializePayout(ts.ctx, unfinished.ID, money.New(10000, unfinished.Currency), "pay-001")
	assert.ErrorIs(t, err, ErrInvalidState)

	job := ts.completedJob(t, 10000)

	// Non-positive gross
	_, err = ts.SettlementService.MaterializePayout(ts.ctx, job.ID, money.New(0, job.Currency), "pay-001")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Currency mismatch against the job
	_, err = ts.SettlementService.MaterializePayout(ts.ctx, job.ID, money.New(10000, "USD"), "pay-001")
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestSettlementService_MaterializePayout_UnverifiedPayment(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	pendingVerifier := NewSettlementService(ts.PayoutRepo, ts.JobRepo, StaticPaymentVerifier{State: PaymentPending})

	job := ts.completedJob(t, 10000)
	_, err := pendingVerifier.MaterializePayout(ts.ctx, job.ID, money.New(10000, job.Currency), "pay-001")
	assert.ErrorIs(t, err, ErrInvalidState)

	// Nothing was created
	record, err := ts.PayoutRepo.GetByJobID(ts.ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestSettlementService_RaiseDispute(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	record := ts.createTestPayout(t, 10, 9250)

	disputed, err := ts.SettlementService.RaiseDispute(ts.ctx, record.ID, "wrong amount", "customer claims partial refund")
	require.NoError(t, err)
	assert.True(t, disputed.Disputed)
	assert.Equal(t, "wrong amount", disputed.DisputeReason)
	assert.NotNil(t, disputed.DisputedAt)
	assert.Equal(t, models.PayoutStatusPending, disputed.Status, "dispute freezes the record but keeps it pending")

	// A second dispute on the same record
	_, err = ts.SettlementService.RaiseDispute(ts.ctx, record.ID, "still wrong", "")
	assert.ErrorIs(t, err, ErrAlreadyDisputed)
}

func TestSettlementService_RaiseDispute_Rejections(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	// Empty reason
	record := ts.createTestPayout(t, 10, 9250)
	_, err := ts.SettlementService.RaiseDispute(ts.ctx, record.ID, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)

	// Already-settled record
	settled := ts.createTestPayout(t, 10, 9250)
	settled.Status = models.PayoutStatusCompleted
	require.NoError(t, ts.PayoutRepo.Save(ts.ctx, settled))
	_, err = ts.SettlementService.RaiseDispute(ts.ctx, settled.ID, "too late", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSettlementService_ResolveDispute(t *testing.T) {
	ts := NewTestSetup(t)
	defer ts.CleanUp()

	record := ts.createTestPayout(t, 10, 9250)
	_, err := ts.SettlementService.RaiseDispute(ts.ctx, record.ID, "wrong amount", "")
	require.NoError(t, err)

	resolved, err := ts.SettlementService.ResolveDispute(ts.ctx, record.ID, "verified against invoice")
	require.NoError(t, err)
	assert.False(t, resolved.Disputed)
	assert.Equal(t, "wrong amount", resolved.DisputeReason, "reason is kept for audit")
	assert.Equal(t, "verified against invoice", resolved.DisputeNotes)

	// Resolving an undisputed record
	_, err = ts.SettlementService.ResolveDispute(ts.ctx, record.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)
}
