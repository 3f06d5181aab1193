package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/db/repos"
	"github.com/fixflow/fixflow/internal/events"
	"github.com/fixflow/fixflow/internal/money"
)

// startEventsOnce drains the event channel for the whole test run so
// publishing transitions never blocks.
var startEventsOnce sync.Once

// TestSetup sets up an in-memory database, repositories and services for
// testing
type TestSetup struct {
	DB                *gorm.DB
	JobRepo           *repos.JobRepository
	PayoutRepo        *repos.PayoutRepository
	SettingsRepo      *repos.SettingsRepository
	JobService        *Job
	QuoteService      *Quote
	SettlementService *Settlement
	PayoutService     *Payout
	ctx               context.Context
}

// NewTestSetup creates a new test setup with in-memory database
func NewTestSetup(t *testing.T) *TestSetup {
	startEventsOnce.Do(func() {
		events.Start(context.Background())
	})

	// Create in-memory SQLite database
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	assert.NoError(t, err, "Failed to create in-memory database")

	// A single connection keeps concurrent batch writes from tripping
	// SQLite table locks
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// Run migrations
	err = db.AutoMigrate(
		&models.RepairJob{},
		&models.PayoutRecord{},
		&models.PayoutSettings{},
	)
	assert.NoError(t, err, "Failed to run migrations")

	// Create real repositories
	jobRepo := repos.NewJobRepository(db)
	payoutRepo := repos.NewPayoutRepository(db)
	settingsRepo := repos.NewSettingsRepository(db)

	// Create real services
	jobService := NewJobService(jobRepo)
	quoteService := NewQuoteService(jobRepo, NoDeliveryQuotes{})
	settlementService := NewSettlementService(payoutRepo, jobRepo, StaticPaymentVerifier{State: PaymentCompleted})
	payoutService := NewPayoutService(payoutRepo, settingsRepo)

	return &TestSetup{
		DB:                db,
		JobRepo:           jobRepo,
		PayoutRepo:        payoutRepo,
		SettingsRepo:      settingsRepo,
		JobService:        jobService,
		QuoteService:      quoteService,
		SettlementService: settlementService,
		PayoutService:     payoutService,
		ctx:               context.Background(),
	}
}

// CleanUp cleans up resources after test
func (ts *TestSetup) CleanUp() {
	sqlDB, err := ts.DB.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

// createTestJob creates a repair job directly at the given status.
func (ts *TestSetup) createTestJob(t *testing.T, status models.JobStatus) *models.RepairJob {
	job := &models.RepairJob{
		CustomerID: 1,
		CenterID:   10,
		Device:     "washing machine",
		IssueNotes: "drum does not spin",
		Currency:   money.DefaultCurrency,
		Status:     status,
	}
	err := ts.JobRepo.Create(ts.ctx, job)
	assert.NoError(t, err)
	return job
}

// createTestPayout creates a pending payout record for a fresh job.
func (ts *TestSetup) createTestPayout(t *testing.T, centerID uint, netCents int64) *models.PayoutRecord {
	job := ts.createTestJob(t, models.JobStatusCompleted)
	commission := netCents / 10
	record := &models.PayoutRecord{
		RepairJobID:      job.ID,
		CenterID:         centerID,
		GrossAmount:      netCents + commission,
		CommissionAmount: commission,
		NetAmount:        netCents,
		Currency:         money.DefaultCurrency,
		Status:           models.PayoutStatusPending,
	}
	err := ts.PayoutRepo.Create(ts.ctx, record)
	assert.NoError(t, err)
	return record
}

// resetSettings pins the payout settings to known values for a test.
func (ts *TestSetup) resetSettings(t *testing.T, threshold int64) models.PayoutSettings {
	settings, err := ts.SettingsRepo.Update(ts.ctx, models.PayoutSettings{
		PayoutFrequency:  models.PayoutFrequencyWeekly,
		MinimumThreshold: threshold,
		Currency:         money.DefaultCurrency,
		AutoProcess:      false,
	})
	assert.NoError(t, err)
	return settings
}
