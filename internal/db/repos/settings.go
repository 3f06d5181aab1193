package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/money"
)

// SettingsRepository provides access to the singleton payout settings row
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository instance
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the payout settings, creating the default row if it does not
// exist yet. The value is returned by copy so batch runs are unaffected by
// concurrent settings changes.
func (r *SettingsRepository) Get(ctx context.Context) (models.PayoutSettings, error) {
	defaults := models.PayoutSettings{
		Model:           gorm.Model{ID: models.PayoutSettingsID},
		PayoutFrequency: models.PayoutFrequencyWeekly,
		Currency:        money.DefaultCurrency,
	}

	var settings models.PayoutSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", models.PayoutSettingsID).
		Attrs(defaults).
		FirstOrCreate(&settings).Error
	if err != nil {
		return models.PayoutSettings{}, fmt.Errorf("failed to get payout settings: %w", err)
	}
	return settings, nil
}

// Update replaces the administrator-controlled settings fields.
func (r *SettingsRepository) Update(ctx context.Context, settings models.PayoutSettings) (models.PayoutSettings, error) {
	// Make sure the singleton row exists before updating it.
	if _, err := r.Get(ctx); err != nil {
		return models.PayoutSettings{}, err
	}

	updates := map[string]interface{}{
		"payout_frequency":  settings.PayoutFrequency,
		"minimum_threshold": settings.MinimumThreshold,
		"currency":          settings.Currency,
		"auto_process":      settings.AutoProcess,
	}
	err := r.db.WithContext(ctx).Model(&models.PayoutSettings{}).
		Where("id = ?", models.PayoutSettingsID).
		Updates(updates).Error
	if err != nil {
		return models.PayoutSettings{}, fmt.Errorf("failed to update payout settings: %w", err)
	}
	return r.Get(ctx)
}
