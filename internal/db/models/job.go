package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	// JobCreatedAtField is the database field name for the job creation timestamp
	JobCreatedAtField = "created_at"
)

// JobStatus represents the current state of a repair job in its workflow
type JobStatus int

// Job status constants. The quote states form a pre-workflow negotiation
// phase; the remaining states are the primary pickup-to-completion workflow.
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = iota
	// JobStatusQuoteRequested indicates the customer asked for a quote
	JobStatusQuoteRequested
	// JobStatusQuotePendingReview indicates a quote awaits the customer's response
	JobStatusQuotePendingReview
	// JobStatusQuoteAccepted indicates the customer accepted the quote
	JobStatusQuoteAccepted
	// JobStatusQuoteRejected indicates the customer rejected the quote
	JobStatusQuoteRejected
	// JobStatusQuoteNegotiating indicates the customer asked for a revised quote
	JobStatusQuoteNegotiating
	// JobStatusRequested indicates the job was created without a quote phase
	JobStatusRequested
	// JobStatusPickupScheduled indicates device pickup has been scheduled
	JobStatusPickupScheduled
	// JobStatusPickedUp indicates the device has been collected
	JobStatusPickedUp
	// JobStatusInRepair indicates the repair center is working on the device
	JobStatusInRepair
	// JobStatusRepairCompleted indicates the repair work is done
	JobStatusRepairCompleted
	// JobStatusReturned indicates the device is back with the customer
	JobStatusReturned
	// JobStatusCompleted indicates the job finished successfully
	JobStatusCompleted
	// JobStatusCancelled indicates the job was cancelled
	JobStatusCancelled
)

// jobStatusNames is the canonical wire representation, indexed by JobStatus.
var jobStatusNames = []string{
	"unknown",
	"quote_requested",
	"quote_pending_review",
	"quote_accepted",
	"quote_rejected",
	"quote_negotiating",
	"requested",
	"pickup_scheduled",
	"picked_up",
	"in_repair",
	"repair_completed",
	"returned",
	"completed",
	"cancelled",
}

// jobTransitions is the exhaustive forward-transition table. Cancellation is
// handled separately: cancelled is reachable from every non-terminal state.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusQuoteRequested:     {JobStatusQuotePendingReview},
	JobStatusQuotePendingReview: {JobStatusQuoteAccepted, JobStatusQuoteRejected, JobStatusQuoteNegotiating},
	JobStatusQuoteNegotiating:   {JobStatusQuotePendingReview},
	JobStatusQuoteAccepted:      {JobStatusPickupScheduled},
	JobStatusRequested:          {JobStatusPickupScheduled},
	JobStatusPickupScheduled:    {JobStatusPickedUp},
	JobStatusPickedUp:           {JobStatusInRepair},
	JobStatusInRepair:           {JobStatusRepairCompleted},
	JobStatusRepairCompleted:    {JobStatusReturned},
	JobStatusReturned:           {JobStatusCompleted},
}

// IsQuotePhase reports whether the status belongs to the quote negotiation
// phase. Entering these states carries side effects (quoted cost, response
// deadline, expiry checks) that only the quote operations apply.
func (s JobStatus) IsQuotePhase() bool {
	switch s {
	case JobStatusQuoteRequested, JobStatusQuotePendingReview, JobStatusQuoteAccepted,
		JobStatusQuoteRejected, JobStatusQuoteNegotiating:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
// A rejected quote ends the job as well: the workflow never starts.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCancelled, JobStatusQuoteRejected:
		return true
	}
	return false
}

// NextStatuses returns the allowed forward transitions from this status,
// excluding cancellation.
func (s JobStatus) NextStatuses() []JobStatus {
	return jobTransitions[s]
}

// CanTransitionTo reports whether target is a legal transition from s.
// Self-transitions are never legal; cancellation is legal from any
// non-terminal state.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	if s.IsTerminal() || target == s {
		return false
	}
	if target == JobStatusCancelled {
		return true
	}
	for _, next := range jobTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// RepairJob represents a single repair engagement from request to completion.
// Monetary fields are integer cents in Currency. FinalCost and AppCommission
// are set exactly once, at the repair_completed transition.
type RepairJob struct {
	gorm.Model
	CustomerID uint      `json:"customer_id" gorm:"not null;index"`
	CenterID   uint      `json:"center_id" gorm:"not null;index"`
	Status     JobStatus `json:"status" gorm:"index"`
	Device     string    `json:"device" gorm:"varchar(255)"`
	IssueNotes string    `json:"issue_notes,omitempty" gorm:"type:text"`

	Currency        string     `json:"currency" gorm:"not null;varchar(3)"`
	EstimatedCost   int64      `json:"estimated_cost"`           // informational, set at intake
	QuotedCost      int64      `json:"quoted_cost"`              // set by the repair center
	FinalCost       int64      `json:"final_cost"`               // set at repair_completed; 0 means unset
	AppCommission   int64      `json:"app_commission"`           // derived at repair_completed
	PaymentDeadline *time.Time `json:"payment_deadline,omitempty"` // derived at repair_completed

	QuoteNotes            string     `json:"quote_notes,omitempty" gorm:"type:text"`
	QuoteResponseDeadline *time.Time `json:"quote_response_deadline,omitempty"`

	CustomerConfirmed           bool   `json:"customer_confirmed" gorm:"not null;default:false"`
	DeviceReturnedConfirmed     bool   `json:"device_returned_confirmed" gorm:"not null;default:false"`
	RepairSatisfactionConfirmed bool   `json:"repair_satisfaction_confirmed" gorm:"not null;default:false"`
	SatisfactionRating          int    `json:"satisfaction_rating,omitempty"`
	SatisfactionFeedback        string `json:"satisfaction_feedback,omitempty" gorm:"type:text"`

	// Version guards against concurrent transitions on the same job.
	Version int64 `json:"-" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	for i, status := range jobStatusNames {
		if status == str {
			return JobStatus(i), nil
		}
	}
	return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
}

func (s JobStatus) String() string {
	if int(s) < 0 || int(s) >= len(jobStatusNames) {
		return jobStatusNames[JobStatusUnknown]
	}
	return jobStatusNames[s]
}

// MarshalJSON implements the json.Marshaler interface for JobStatus
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}
