package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fixflow/fixflow/internal/db/models"
)

// PayoutRepository provides access to payout-record database operations
type PayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates a new payout repository instance
func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// Create creates a new payout record. The unique index on repair_job_id
// rejects a second record for the same job.
func (r *PayoutRepository) Create(ctx context.Context, record *models.PayoutRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID retrieves a payout record by its ID
func (r *PayoutRepository) GetByID(ctx context.Context, id uint) (*models.PayoutRecord, error) {
	var record models.PayoutRecord
	err := r.db.WithContext(ctx).Where(&models.PayoutRecord{Model: gorm.Model{ID: id}}).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("payout record not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout record: %w", err)
	}
	return &record, nil
}

// GetByJobID retrieves the payout record for a repair job. Returns nil
// without error when no record exists yet.
func (r *PayoutRepository) GetByJobID(ctx context.Context, jobID uint) (*models.PayoutRecord, error) {
	var record models.PayoutRecord
	result := r.db.WithContext(ctx).Where(&models.PayoutRecord{RepairJobID: jobID}).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payout record by job: %w", result.Error)
	}
	return &record, nil
}

// List returns payout records, optionally filtered by status and repair
// center.
func (r *PayoutRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.PayoutRecord, error) {
	var records []models.PayoutRecord
	qry := &models.PayoutRecord{}

	if opts.PayoutStatus != nil && *opts.PayoutStatus != models.PayoutStatusUnknown {
		qry.Status = *opts.PayoutStatus
	}
	if opts.CenterID != 0 {
		qry.CenterID = opts.CenterID
	}

	err := r.db.WithContext(ctx).Model(&models.PayoutRecord{}).
		Where(qry).
		Limit(opts.Limit).Offset(opts.Offset).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// ListPending returns all pending, undisputed records. Threshold filtering
// is the batch processor's concern, not the repository's.
func (r *PayoutRepository) ListPending(ctx context.Context) ([]models.PayoutRecord, error) {
	var records []models.PayoutRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND disputed = ?", models.PayoutStatusPending, false).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// ClaimProcessing moves a pending, undisputed record to processing under an
// optimistic version check, preventing two overlapping batch runs from both
// settling the same record.
func (r *PayoutRepository) ClaimProcessing(ctx context.Context, record *models.PayoutRecord) error {
	result := r.db.WithContext(ctx).Model(&models.PayoutRecord{}).
		Where("id = ? AND version = ? AND status = ? AND disputed = ?",
			record.ID, record.Version, models.PayoutStatusPending, false).
		Updates(map[string]interface{}{
			"status":  models.PayoutStatusProcessing,
			"version": record.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to claim payout record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payout record %d: %w", record.ID, ErrConcurrentModification)
	}

	record.Status = models.PayoutStatusProcessing
	record.Version++
	return nil
}

// MarkFailed moves a processing record to failed after a settlement write
// error, clearing any partially applied settlement fields. Guarded by
// status rather than version so a stale in-memory copy can still record
// the failure.
func (r *PayoutRepository) MarkFailed(ctx context.Context, record *models.PayoutRecord) error {
	result := r.db.WithContext(ctx).Model(&models.PayoutRecord{}).
		Where("id = ? AND status = ?", record.ID, models.PayoutStatusProcessing).
		Updates(map[string]interface{}{
			"status":           models.PayoutStatusFailed,
			"payout_method":    "",
			"payout_reference": "",
			"payout_notes":     "",
			"payout_date":      nil,
			"version":          gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark payout record failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payout record %d: %w", record.ID, ErrConcurrentModification)
	}

	record.Status = models.PayoutStatusFailed
	record.PayoutMethod = ""
	record.PayoutReference = ""
	record.PayoutNotes = ""
	record.PayoutDate = nil
	record.Version++
	return nil
}

// Save persists the settlement fields of a mutated record under an
// optimistic version check.
func (r *PayoutRepository) Save(ctx context.Context, record *models.PayoutRecord) error {
	updates := map[string]interface{}{
		"status":           record.Status,
		"payout_method":    record.PayoutMethod,
		"payout_reference": record.PayoutReference,
		"payout_notes":     record.PayoutNotes,
		"payout_date":      record.PayoutDate,
		"disputed":         record.Disputed,
		"dispute_reason":   record.DisputeReason,
		"dispute_notes":    record.DisputeNotes,
		"disputed_at":      record.DisputedAt,
		"version":          record.Version + 1,
	}

	result := r.db.WithContext(ctx).Model(&models.PayoutRecord{}).
		Where("id = ? AND version = ?", record.ID, record.Version).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to save payout record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payout record %d: %w", record.ID, ErrConcurrentModification)
	}

	record.Version++
	return nil
}
