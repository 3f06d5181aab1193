// Package models defines the persisted data model and the status enums
// governing the job and payout lifecycles.
package models

const (
	// DefaultLimit is the max number of rows that are retrieved from the DB per listing API call
	DefaultLimit = 50
)

// ListOptions represents pagination and filtering options for list operations
type ListOptions struct {
	Limit        int           `json:"limit"`  // Number of items to return
	Offset       int           `json:"offset"` // Number of items to skip
	JobStatus    *JobStatus    `json:"job_status,omitempty"`    // Filter jobs by status
	PayoutStatus *PayoutStatus `json:"payout_status,omitempty"` // Filter payouts by status
	CenterID     uint          `json:"center_id,omitempty"`     // Filter by repair center
}
