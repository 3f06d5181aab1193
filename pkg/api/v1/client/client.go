// Package client provides the API client for interacting with the FixFlow API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixflow/fixflow/internal/api/v1/handlers"
	"github.com/fixflow/fixflow/internal/api/v1/routes"
	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/services"
	"github.com/fixflow/fixflow/internal/types"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (map[string]string, error)

	// Job endpoints
	CreateJob(ctx context.Context, req types.CreateJobRequest) (models.RepairJob, error)
	GetJob(ctx context.Context, id uint) (models.RepairJob, error)
	ListJobs(ctx context.Context, query url.Values) ([]models.RepairJob, error)
	TransitionJob(ctx context.Context, id uint, status string) (models.RepairJob, error)
	ConfirmCompletion(ctx context.Context, id uint, req types.ConfirmCompletionRequest) (models.RepairJob, error)

	// Quote endpoints
	IssueQuote(ctx context.Context, id uint, req types.IssueQuoteRequest) (models.RepairJob, error)
	AcceptQuote(ctx context.Context, id uint) (models.RepairJob, error)
	NegotiateQuote(ctx context.Context, id uint) (models.RepairJob, error)
	RejectQuote(ctx context.Context, id uint) (models.RepairJob, error)

	// Payout endpoints
	MaterializePayout(ctx context.Context, req types.MaterializePayoutRequest) (models.PayoutRecord, error)
	GetPayout(ctx context.Context, id uint) (models.PayoutRecord, error)
	ListPayouts(ctx context.Context, query url.Values) ([]models.PayoutRecord, error)
	ListEligiblePayouts(ctx context.Context) ([]models.PayoutRecord, error)
	PayoutSummary(ctx context.Context) ([]services.CenterSummary, error)
	RaiseDispute(ctx context.Context, id uint, req types.DisputeRequest) (models.PayoutRecord, error)
	ResolveDispute(ctx context.Context, id uint, req types.ResolveDisputeRequest) (models.PayoutRecord, error)
	ProcessPayout(ctx context.Context, id uint, req types.ProcessPayoutRequest) (models.PayoutRecord, error)
	ProcessBatch(ctx context.Context, req types.ProcessBatchRequest) (services.BatchResult, error)
	ResetPayout(ctx context.Context, id uint) (models.PayoutRecord, error)

	// Settings endpoints
	GetPayoutSettings(ctx context.Context) (models.PayoutSettings, error)
	UpdatePayoutSettings(ctx context.Context, req types.UpdateSettingsRequest) (models.PayoutSettings, error)
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// doRequest sends the HTTP request and decodes the enveloped response into v.
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	var envelope handlers.Response
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	if statusCode < 200 || statusCode >= 300 {
		msg := envelope.Error
		if msg == "" {
			msg = string(body)
		}
		return &fiber.Error{
			Code:    statusCode,
			Message: msg,
		}
	}

	if v == nil || envelope.Data == nil {
		return nil
	}

	dataJSON, err := json.Marshal(envelope.Data)
	if err != nil {
		return fmt.Errorf("error re-encoding response data: %w", err)
	}
	return json.Unmarshal(dataJSON, v)
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return c.doRequest(agent, response)
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// HealthCheck checks the health of the API server
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	endpoint := routes.HealthCheckURL()
	agent, err := c.createAgent(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	// The health endpoint responds without the envelope
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode != http.StatusOK {
		return nil, &fiber.Error{Code: statusCode, Message: string(body)}
	}

	var health map[string]string
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return health, nil
}

// CreateJob submits a new repair job
func (c *APIClient) CreateJob(ctx context.Context, req types.CreateJobRequest) (models.RepairJob, error) {
	var job models.RepairJob
	err := c.executeRequest(ctx, http.MethodPost, routes.CreateJobURL(), req, &job)
	return job, err
}

// GetJob retrieves a repair job by ID
func (c *APIClient) GetJob(ctx context.Context, id uint) (models.RepairJob, error) {
	var job models.RepairJob
	err := c.executeRequest(ctx, http.MethodGet, routes.GetJobURL(idString(id)), nil, &job)
	return job, err
}

// ListJobs retrieves repair jobs matching the query parameters
func (c *APIClient) ListJobs(ctx context.Context, query url.Values) ([]models.RepairJob, error) {
	var list types.ListResponse[models.RepairJob]
	err := c.executeRequest(ctx, http.MethodGet, routes.GetJobsURL(query), nil, &list)
	return list.Rows, err
}

// TransitionJob applies a status transition to a repair job
func (c *APIClient) TransitionJob(ctx context.Context, id uint, status string) (models.RepairJob, error) {
	var job models.RepairJob
	req := types.TransitionJobRequest{Status: status}
	err := c.executeRequest(ctx, http.MethodPost, routes.TransitionJobURL(idString(id)), req, &job)
	return job, err
}

// ConfirmCompletion records the customer's completion confirmations
func (c *APIClient) ConfirmCompletion(ctx context.Context, id uint, req types.ConfirmCompletionRequest) (models.RepairJob, error) {
	var job models.RepairJob
	err := c.executeRequest(ctx, http.MethodPost, routes.ConfirmCompletionURL(idString(id)), req, &job)
	return job, err
}

// IssueQuote submits the repair center's quote for a job
func (c *APIClient) IssueQuote(ctx context.Context, id uint, req types.IssueQuoteRequest) (models.RepairJob, error) {
	var job models.RepairJob
	err := c.executeRequest(ctx, http.MethodPost, routes.IssueQuoteURL(idString(id)), req, &job)
	return job, err
}

// AcceptQuote records the customer's acceptance of a pending quote
func (c *APIClient) AcceptQuote(ctx context.Context, id uint) (models.RepairJob, error) {
	var job models.RepairJob
	err := c.executeRequest(ctx, http.MethodPost, routes.AcceptQuoteURL(idString(id)), nil, &job)
	return job, err
}

// NegotiateQuote records the customer's request for a revised quote
func (c *APIClient) NegotiateQuote(ctx context.Context, id uint) (models.RepairJob, error) {
	var job models.RepairJob
	err := c.executeRequest(ctx, http.MethodPost, routes.NegotiateQuoteURL(idString(id)), nil, &job)
	return job, err
}

// RejectQuote records the customer's rejection of a pending quote
func (c *APIClient) RejectQuote(ctx context.Context, id uint) (models.RepairJob, error) {
	var job models.RepairJob
	err := c.executeRequest(ctx, http.MethodPost, routes.RejectQuoteURL(idString(id)), nil, &job)
	return job, err
}

// MaterializePayout derives the payout record for a paid job
func (c *APIClient) MaterializePayout(ctx context.Context, req types.MaterializePayoutRequest) (models.PayoutRecord, error) {
	var record models.PayoutRecord
	err := c.executeRequest(ctx, http.MethodPost, routes.MaterializePayoutURL(), req, &record)
	return record, err
}

// GetPayout retrieves a payout record by ID
func (c *APIClient) GetPayout(ctx context.Context, id uint) (models.PayoutRecord, error) {
	var record models.PayoutRecord
	err := c.executeRequest(ctx, http.MethodGet, routes.GetPayoutURL(idString(id)), nil, &record)
	return record, err
}

// ListPayouts retrieves payout records matching the query parameters
func (c *APIClient) ListPayouts(ctx context.Context, query url.Values) ([]models.PayoutRecord, error) {
	var list types.ListResponse[models.PayoutRecord]
	err := c.executeRequest(ctx, http.MethodGet, routes.GetPayoutsURL(query), nil, &list)
	return list.Rows, err
}

// ListEligiblePayouts retrieves the pending records that currently qualify
// for settlement
func (c *APIClient) ListEligiblePayouts(ctx context.Context) ([]models.PayoutRecord, error) {
	var records []models.PayoutRecord
	err := c.executeRequest(ctx, http.MethodGet, routes.GetEligiblePayoutsURL(), nil, &records)
	return records, err
}

// PayoutSummary retrieves the aggregate pending payout position per center
func (c *APIClient) PayoutSummary(ctx context.Context) ([]services.CenterSummary, error) {
	var summaries []services.CenterSummary
	err := c.executeRequest(ctx, http.MethodGet, routes.GetPayoutSummaryURL(), nil, &summaries)
	return summaries, err
}

// RaiseDispute flags a payout record as disputed
func (c *APIClient) RaiseDispute(ctx context.Context, id uint, req types.DisputeRequest) (models.PayoutRecord, error) {
	var record models.PayoutRecord
	err := c.executeRequest(ctx, http.MethodPost, routes.RaiseDisputeURL(idString(id)), req, &record)
	return record, err
}

// ResolveDispute clears a dispute after administrative review
func (c *APIClient) ResolveDispute(ctx context.Context, id uint, req types.ResolveDisputeRequest) (models.PayoutRecord, error) {
	var record models.PayoutRecord
	err := c.executeRequest(ctx, http.MethodPost, routes.ResolveDisputeURL(idString(id)), req, &record)
	return record, err
}

// ProcessPayout settles a single payout record
func (c *APIClient) ProcessPayout(ctx context.Context, id uint, req types.ProcessPayoutRequest) (models.PayoutRecord, error) {
	var record models.PayoutRecord
	err := c.executeRequest(ctx, http.MethodPost, routes.ProcessPayoutURL(idString(id)), req, &record)
	return record, err
}

// ProcessBatch settles a set of payout records under one reference
func (c *APIClient) ProcessBatch(ctx context.Context, req types.ProcessBatchRequest) (services.BatchResult, error) {
	var result services.BatchResult
	err := c.executeRequest(ctx, http.MethodPost, routes.ProcessBatchURL(), req, &result)
	return result, err
}

// ResetPayout moves a failed payout record back to pending
func (c *APIClient) ResetPayout(ctx context.Context, id uint) (models.PayoutRecord, error) {
	var record models.PayoutRecord
	err := c.executeRequest(ctx, http.MethodPost, routes.ResetPayoutURL(idString(id)), nil, &record)
	return record, err
}

// GetPayoutSettings retrieves the administrator payout settings
func (c *APIClient) GetPayoutSettings(ctx context.Context) (models.PayoutSettings, error) {
	var settings models.PayoutSettings
	err := c.executeRequest(ctx, http.MethodGet, routes.GetPayoutSettingsURL(), nil, &settings)
	return settings, err
}

// UpdatePayoutSettings replaces the administrator payout settings
func (c *APIClient) UpdatePayoutSettings(ctx context.Context, req types.UpdateSettingsRequest) (models.PayoutSettings, error) {
	var settings models.PayoutSettings
	err := c.executeRequest(ctx, http.MethodPut, routes.UpdatePayoutSettingsURL(), req, &settings)
	return settings, err
}
