package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PayoutStatus represents the settlement state of a payout record
type PayoutStatus int

// Payout status constants
const (
	// PayoutStatusUnknown represents an unknown or invalid payout status
	PayoutStatusUnknown PayoutStatus = iota
	// PayoutStatusPending indicates the payout awaits settlement
	PayoutStatusPending
	// PayoutStatusProcessing indicates the payout is being settled
	PayoutStatusProcessing
	// PayoutStatusCompleted indicates the payout has been settled
	PayoutStatusCompleted
	// PayoutStatusFailed indicates a settlement attempt failed; retryable back to pending
	PayoutStatusFailed
)

var payoutStatusNames = []string{
	"unknown",
	"pending",
	"processing",
	"completed",
	"failed",
}

// PayoutMethod identifies how a payout is disbursed
type PayoutMethod string

// Payout method constants
const (
	PayoutMethodBankTransfer PayoutMethod = "bank_transfer"
	PayoutMethodManual       PayoutMethod = "manual"
)

// PayoutRecord is the ledger entry representing money owed to a repair
// center for one completed, paid job. Exactly one record exists per job.
// Amounts are integer cents in Currency and NetAmount = GrossAmount -
// CommissionAmount always holds.
type PayoutRecord struct {
	gorm.Model
	RepairJobID uint `json:"repair_job_id" gorm:"not null;uniqueIndex"`
	CenterID    uint `json:"center_id" gorm:"not null;index"`

	GrossAmount      int64  `json:"gross_amount" gorm:"not null"`
	CommissionAmount int64  `json:"commission_amount" gorm:"not null"`
	NetAmount        int64  `json:"net_amount" gorm:"not null"`
	Currency         string `json:"currency" gorm:"not null;varchar(3)"`

	Status          PayoutStatus `json:"status" gorm:"index"`
	PayoutMethod    PayoutMethod `json:"payout_method,omitempty" gorm:"varchar(32)"`
	PayoutReference string       `json:"payout_reference,omitempty" gorm:"varchar(128)"`
	PayoutNotes     string       `json:"payout_notes,omitempty" gorm:"type:text"`
	PayoutDate      *time.Time   `json:"payout_date,omitempty"`

	Disputed      bool       `json:"disputed" gorm:"not null;default:false;index"`
	DisputeReason string     `json:"dispute_reason,omitempty" gorm:"varchar(255)"`
	DisputeNotes  string     `json:"dispute_notes,omitempty" gorm:"type:text"`
	DisputedAt    *time.Time `json:"disputed_at,omitempty"`

	// Version guards against double-processing across overlapping batch runs.
	Version int64 `json:"-" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// ParsePayoutStatus converts a string representation of a payout status to PayoutStatus type
func ParsePayoutStatus(str string) (PayoutStatus, error) {
	for i, status := range payoutStatusNames {
		if status == str {
			return PayoutStatus(i), nil
		}
	}
	return PayoutStatusUnknown, fmt.Errorf("invalid payout status: %s", str)
}

func (s PayoutStatus) String() string {
	if int(s) < 0 || int(s) >= len(payoutStatusNames) {
		return payoutStatusNames[PayoutStatusUnknown]
	}
	return payoutStatusNames[s]
}

// MarshalJSON implements the json.Marshaler interface for PayoutStatus
func (s PayoutStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for PayoutStatus
func (s *PayoutStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParsePayoutStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}
