package services

import (
	"context"
	"errors"

	"github.com/fixflow/fixflow/internal/events"
	"github.com/fixflow/fixflow/internal/logger"
	"github.com/fixflow/fixflow/internal/money"
)

// PaymentState is the verification result reported by the payment
// collaborator.
type PaymentState string

// Payment verification states
const (
	PaymentCompleted PaymentState = "completed"
	PaymentFailed    PaymentState = "failed"
	PaymentPending   PaymentState = "pending"
)

// ErrDeliveryQuoteUnavailable indicates the delivery-quote collaborator
// could not produce an estimate. Callers surface the cost as "confirmed
// after acceptance" instead of blocking.
var ErrDeliveryQuoteUnavailable = errors.New("delivery quote unavailable")

// Notifier dispatches lifecycle notifications. Failures are logged by the
// caller, never propagated as transition failures.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// PaymentVerifier checks the state of a customer payment before a payout is
// materialized.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, reference string) (PaymentState, error)
}

// DeliveryEstimate is the informational delivery cost figure shown to
// customers during quoting.
type DeliveryEstimate struct {
	EstimatedCost money.Amount `json:"estimated_cost"`
	Commission    money.Amount `json:"commission"`
}

// DeliveryQuoteProvider fetches delivery cost estimates for a pickup and
// delivery address pair.
type DeliveryQuoteProvider interface {
	GetDeliveryQuote(ctx context.Context, pickupAddr, deliveryAddr string) (DeliveryEstimate, error)
}

// LogNotifier is the default Notifier; it only logs the notification.
// Deployments plug a real dispatcher (email, push) at the composition root.
type LogNotifier struct{}

// Notify logs the event that would have been dispatched.
func (LogNotifier) Notify(_ context.Context, event events.Event) error {
	logger.InfoWithFields("notification dispatched", map[string]interface{}{
		"event":       string(event.Type),
		"job_id":      event.JobID,
		"payout_id":   event.PayoutID,
		"center_id":   event.CenterID,
		"customer_id": event.CustomerID,
	})
	return nil
}

// StaticPaymentVerifier reports a fixed payment state for every reference.
// Useful for environments without a payment gateway and for tests.
type StaticPaymentVerifier struct {
	State PaymentState
}

// VerifyPayment returns the configured state.
func (v StaticPaymentVerifier) VerifyPayment(_ context.Context, _ string) (PaymentState, error) {
	return v.State, nil
}

// NoDeliveryQuotes is a DeliveryQuoteProvider that is never available.
type NoDeliveryQuotes struct{}

// GetDeliveryQuote always reports the collaborator as unavailable.
func (NoDeliveryQuotes) GetDeliveryQuote(_ context.Context, _, _ string) (DeliveryEstimate, error) {
	return DeliveryEstimate{}, ErrDeliveryQuoteUnavailable
}

// RegisterNotificationHandlers subscribes the notifier to every lifecycle
// event. Dispatch runs on the event loop after the transition has committed,
// so a failing notifier can never roll a transition back.
func RegisterNotificationHandlers(notifier Notifier) {
	handler := func(ctx context.Context, event events.Event) error {
		return notifier.Notify(ctx, event)
	}
	events.Subscribe(events.EventJobTransitioned, handler)
	events.Subscribe(events.EventQuoteIssued, handler)
	events.Subscribe(events.EventPayoutCompleted, handler)
	events.Subscribe(events.EventPayoutDisputed, handler)
}
