package types

import "fmt"

// CreateJobRequest is the intake payload for a new repair job.
type CreateJobRequest struct {
	CustomerID    uint   `json:"customer_id"`
	CenterID      uint   `json:"center_id"`
	Device        string `json:"device"`
	IssueNotes    string `json:"issue_notes,omitempty"`
	EstimatedCost int64  `json:"estimated_cost,omitempty"`
	Currency      string `json:"currency,omitempty"`
	WithQuote     bool   `json:"with_quote,omitempty"`
}

// Validate checks the intake payload.
func (r *CreateJobRequest) Validate() error {
	if r.CustomerID == 0 {
		return fmt.Errorf("customer_id is required")
	}
	if r.CenterID == 0 {
		return fmt.Errorf("center_id is required")
	}
	if r.EstimatedCost < 0 {
		return fmt.Errorf("estimated_cost must not be negative")
	}
	return nil
}

// TransitionJobRequest asks for a job status transition.
type TransitionJobRequest struct {
	Status string `json:"status"`
}

// Validate checks the transition payload.
func (r *TransitionJobRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// ConfirmCompletionRequest carries the customer's completion confirmations.
type ConfirmCompletionRequest struct {
	DeviceReturned       bool   `json:"device_returned"`
	RepairSatisfaction   bool   `json:"repair_satisfaction"`
	SatisfactionRating   int    `json:"satisfaction_rating,omitempty"`
	SatisfactionFeedback string `json:"satisfaction_feedback,omitempty"`
}

// Validate checks the confirmation payload.
func (r *ConfirmCompletionRequest) Validate() error {
	if r.SatisfactionRating < 0 || r.SatisfactionRating > 5 {
		return fmt.Errorf("satisfaction_rating must be between 0 and 5")
	}
	return nil
}

// IssueQuoteRequest is the repair center's proposed price and terms.
type IssueQuoteRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Notes       string `json:"notes,omitempty"`
}

// Validate checks the quote payload.
func (r *IssueQuoteRequest) Validate() error {
	if r.AmountCents <= 0 {
		return fmt.Errorf("amount_cents must be positive")
	}
	return nil
}

// DeliveryEstimateRequest asks for an informational delivery cost figure.
type DeliveryEstimateRequest struct {
	PickupAddress   string `json:"pickup_address"`
	DeliveryAddress string `json:"delivery_address"`
}

// Validate checks the estimate payload.
func (r *DeliveryEstimateRequest) Validate() error {
	if r.PickupAddress == "" || r.DeliveryAddress == "" {
		return fmt.Errorf("pickup_address and delivery_address are required")
	}
	return nil
}

// MaterializePayoutRequest derives the payout record for a paid job.
type MaterializePayoutRequest struct {
	JobID            uint   `json:"job_id"`
	GrossCents       int64  `json:"gross_cents"`
	Currency         string `json:"currency,omitempty"`
	PaymentReference string `json:"payment_reference"`
}

// Validate checks the materialization payload.
func (r *MaterializePayoutRequest) Validate() error {
	if r.JobID == 0 {
		return fmt.Errorf("job_id is required")
	}
	if r.GrossCents <= 0 {
		return fmt.Errorf("gross_cents must be positive")
	}
	if r.PaymentReference == "" {
		return fmt.Errorf("payment_reference is required")
	}
	return nil
}

// DisputeRequest flags a payout record as disputed.
type DisputeRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}

// Validate checks the dispute payload.
func (r *DisputeRequest) Validate() error {
	if r.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	return nil
}

// ResolveDisputeRequest clears a dispute after review.
type ResolveDisputeRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ProcessPayoutRequest settles one payout record.
type ProcessPayoutRequest struct {
	Reference string `json:"reference"`
	Method    string `json:"method,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Validate checks the settlement payload.
func (r *ProcessPayoutRequest) Validate() error {
	if r.Reference == "" {
		return fmt.Errorf("reference is required")
	}
	return nil
}

// ProcessBatchRequest settles a set of payout records under one reference.
// An empty reference lets the server mint one for the run.
type ProcessBatchRequest struct {
	PayoutIDs []uint `json:"payout_ids"`
	Reference string `json:"reference,omitempty"`
	Method    string `json:"method,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Validate checks the batch payload.
func (r *ProcessBatchRequest) Validate() error {
	if len(r.PayoutIDs) == 0 {
		return fmt.Errorf("payout_ids is required")
	}
	return nil
}

// UpdateSettingsRequest replaces the administrator payout settings.
type UpdateSettingsRequest struct {
	PayoutFrequency  string `json:"payout_frequency"`
	MinimumThreshold int64  `json:"minimum_threshold"`
	Currency         string `json:"currency,omitempty"`
	AutoProcess      bool   `json:"auto_process"`
}

// Validate checks the settings payload.
func (r *UpdateSettingsRequest) Validate() error {
	if r.PayoutFrequency == "" {
		return fmt.Errorf("payout_frequency is required")
	}
	if r.MinimumThreshold < 0 {
		return fmt.Errorf("minimum_threshold must not be negative")
	}
	return nil
}
