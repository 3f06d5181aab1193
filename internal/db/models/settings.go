package models

import "gorm.io/gorm"

// PayoutSettingsID is the primary key of the singleton settings row.
const PayoutSettingsID uint = 1

// PayoutFrequency describes the settlement cadence surfaced to operators.
type PayoutFrequency string

// Payout frequency constants
const (
	PayoutFrequencyWeekly   PayoutFrequency = "weekly"
	PayoutFrequencyBiweekly PayoutFrequency = "biweekly"
	PayoutFrequencyMonthly  PayoutFrequency = "monthly"
)

// PayoutSettings is the process-wide payout configuration. It is mutated
// only by administrators and read once per batch run, then passed by value
// so a run is unaffected by concurrent settings changes.
type PayoutSettings struct {
	gorm.Model
	PayoutFrequency  PayoutFrequency `json:"payout_frequency" gorm:"varchar(16);not null;default:'weekly'"`
	MinimumThreshold int64           `json:"minimum_threshold" gorm:"not null;default:0"` // cents
	Currency         string          `json:"currency" gorm:"not null;varchar(3)"`
	AutoProcess      bool            `json:"auto_process" gorm:"not null;default:false"`
}
