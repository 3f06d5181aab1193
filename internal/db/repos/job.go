// Package repos provides access to the persisted models.
package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fixflow/fixflow/internal/db/models"
)

// JobRepository provides access to repair-job database operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new repair job in the database
func (r *JobRepository) Create(ctx context.Context, job *models.RepairJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a repair job by its ID
func (r *JobRepository) GetByID(ctx context.Context, id uint) (*models.RepairJob, error) {
	var job models.RepairJob
	err := r.db.WithContext(ctx).Where(&models.RepairJob{Model: gorm.Model{ID: id}}).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// List returns a list of repair jobs, optionally filtered by status and
// repair center.
func (r *JobRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.RepairJob, error) {
	var jobs []models.RepairJob
	qry := &models.RepairJob{}

	if opts.JobStatus != nil && *opts.JobStatus != models.JobStatusUnknown {
		qry.Status = *opts.JobStatus
	}
	if opts.CenterID != 0 {
		qry.CenterID = opts.CenterID
	}

	err := r.db.WithContext(ctx).Model(&models.RepairJob{}).
		Where(qry).
		Limit(opts.Limit).Offset(opts.Offset).
		Order(models.JobCreatedAtField + " DESC").
		Find(&jobs).Error
	return jobs, err
}

// Count returns the number of repair jobs with the given status (all jobs
// when the status is unknown).
func (r *JobRepository) Count(ctx context.Context, status models.JobStatus) (int64, error) {
	var count int64
	qry := &models.RepairJob{}
	if status != models.JobStatusUnknown {
		qry.Status = status
	}
	err := r.db.WithContext(ctx).Model(&models.RepairJob{}).Where(qry).Count(&count).Error
	return count, err
}

// Save persists the workflow fields of a mutated job under an optimistic
// version check. Exactly one of two concurrent saves of the same job wins;
// the loser gets ErrConcurrentModification and must re-read and retry.
func (r *JobRepository) Save(ctx context.Context, job *models.RepairJob) error {
	updates := map[string]interface{}{
		"status":                        job.Status,
		"quoted_cost":                   job.QuotedCost,
		"quote_notes":                   job.QuoteNotes,
		"quote_response_deadline":       job.QuoteResponseDeadline,
		"final_cost":                    job.FinalCost,
		"app_commission":                job.AppCommission,
		"payment_deadline":              job.PaymentDeadline,
		"customer_confirmed":            job.CustomerConfirmed,
		"device_returned_confirmed":     job.DeviceReturnedConfirmed,
		"repair_satisfaction_confirmed": job.RepairSatisfactionConfirmed,
		"satisfaction_rating":           job.SatisfactionRating,
		"satisfaction_feedback":         job.SatisfactionFeedback,
		"version":                       job.Version + 1,
	}

	result := r.db.WithContext(ctx).Model(&models.RepairJob{}).
		Where("id = ? AND version = ?", job.ID, job.Version).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to save job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job %d: %w", job.ID, ErrConcurrentModification)
	}

	job.Version++
	return nil
}
