// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixflow/fixflow/internal/api/v1/handlers"
)

/*

To keep this file organized, routes should be organized in the following way:

1. Smallest scope first (i.e. job routes before payout routes)
2. For similar scopes, put the endpoints in alphabetical order
3. Order routes in GET, POST, PUT, DELETE order.
	a. Within this ordering, param urls (ie /:id) should go last, otherwise fiber will interpret the route slug as that param.
	b. After param considerations, order alphabetically.
4. For clarity, naming should match the action (i.e. GetJob, TransitionJob)

*/

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Health check
	HealthCheck = "HealthCheck"

	// Job routes
	GetJobs             = "GetJobs"
	GetDeliveryEstimate = "GetDeliveryEstimate"
	GetJob              = "GetJob"
	CreateJob           = "CreateJob"
	TransitionJob       = "TransitionJob"
	ConfirmCompletion   = "ConfirmCompletion"
	IssueQuote          = "IssueQuote"
	AcceptQuote         = "AcceptQuote"
	NegotiateQuote      = "NegotiateQuote"
	RejectQuote         = "RejectQuote"

	// Payout routes
	GetPayouts         = "GetPayouts"
	GetEligiblePayouts = "GetEligiblePayouts"
	GetPayoutSummary   = "GetPayoutSummary"
	GetPayout          = "GetPayout"
	MaterializePayout  = "MaterializePayout"
	ProcessBatch       = "ProcessBatch"
	ProcessPayout      = "ProcessPayout"
	RaiseDispute       = "RaiseDispute"
	ResetPayout        = "ResetPayout"
	ResolveDispute     = "ResolveDispute"

	// Settings routes
	GetPayoutSettings    = "GetPayoutSettings"
	UpdatePayoutSettings = "UpdatePayoutSettings"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures all the v1 routes
//
// NOTE: route ordering is important because routes will try and match in the
// order they are registered.
func RegisterRoutes(
	app *fiber.App,
	jobHandler *handlers.JobHandler,
	payoutHandler *handlers.PayoutHandler,
) {
	// API v1 routes
	v1 := app.Group(APIv1Prefix)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	}).Name(HealthCheck)

	// Job endpoints
	jobs := v1.Group("/jobs")
	jobs.Get("/", jobHandler.ListJobs).Name(GetJobs)
	jobs.Get("/delivery-estimate", jobHandler.DeliveryEstimate).Name(GetDeliveryEstimate)
	jobs.Get("/:id", jobHandler.GetJob).Name(GetJob)
	jobs.Post("/", jobHandler.CreateJob).Name(CreateJob)
	jobs.Post("/:id/confirm", jobHandler.ConfirmCompletion).Name(ConfirmCompletion)
	jobs.Post("/:id/quote", jobHandler.IssueQuote).Name(IssueQuote)
	jobs.Post("/:id/quote/accept", jobHandler.AcceptQuote).Name(AcceptQuote)
	jobs.Post("/:id/quote/negotiate", jobHandler.NegotiateQuote).Name(NegotiateQuote)
	jobs.Post("/:id/quote/reject", jobHandler.RejectQuote).Name(RejectQuote)
	jobs.Post("/:id/transition", jobHandler.TransitionJob).Name(TransitionJob)

	// Payout endpoints
	payouts := v1.Group("/payouts")
	payouts.Get("/", payoutHandler.ListPayouts).Name(GetPayouts)
	payouts.Get("/eligible", payoutHandler.ListEligible).Name(GetEligiblePayouts)
	payouts.Get("/summary", payoutHandler.Summary).Name(GetPayoutSummary)
	payouts.Get("/:id", payoutHandler.GetPayout).Name(GetPayout)
	payouts.Post("/batch", payoutHandler.ProcessBatch).Name(ProcessBatch)
	payouts.Post("/materialize", payoutHandler.MaterializePayout).Name(MaterializePayout)
	payouts.Post("/:id/dispute", payoutHandler.RaiseDispute).Name(RaiseDispute)
	payouts.Post("/:id/dispute/resolve", payoutHandler.ResolveDispute).Name(ResolveDispute)
	payouts.Post("/:id/process", payoutHandler.ProcessPayout).Name(ProcessPayout)
	payouts.Post("/:id/reset", payoutHandler.ResetFailed).Name(ResetPayout)

	// Settings endpoints
	settings := v1.Group("/settings")
	settings.Get("/payout", payoutHandler.GetSettings).Name(GetPayoutSettings)
	settings.Put("/payout", payoutHandler.UpdateSettings).Name(UpdatePayoutSettings)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		newCache := make(map[string]string)

		// Create a mock app
		app := fiber.New()

		// Create empty handlers for route registration
		mockJobHandler := &handlers.JobHandler{}
		mockPayoutHandler := &handlers.PayoutHandler{}

		// Register routes with mock handlers
		RegisterRoutes(app, mockJobHandler, mockPayoutHandler)

		// Extract routes from the app
		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				newCache[route.Name] = route.Path
			}
		}

		routeCacheMu.Lock()
		routeCache = newCache
		routeCacheMu.Unlock()
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	// Replace parameters in the route
	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, value)
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	// Add query parameters if any
	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Health check route helper

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// Job route helpers

// GetJobsURL returns the URL for listing jobs
func GetJobsURL(queryParams url.Values) string {
	return BuildURL(GetJobs, nil, queryParams)
}

// GetJobURL returns the URL for getting a job
func GetJobURL(id string) string {
	return BuildURL(GetJob, map[string]string{"id": id}, nil)
}

// CreateJobURL returns the URL for creating a job
func CreateJobURL() string {
	return BuildURL(CreateJob, nil, nil)
}

// TransitionJobURL returns the URL for transitioning a job
func TransitionJobURL(id string) string {
	return BuildURL(TransitionJob, map[string]string{"id": id}, nil)
}

// ConfirmCompletionURL returns the URL for confirming job completion
func ConfirmCompletionURL(id string) string {
	return BuildURL(ConfirmCompletion, map[string]string{"id": id}, nil)
}

// IssueQuoteURL returns the URL for issuing a quote
func IssueQuoteURL(id string) string {
	return BuildURL(IssueQuote, map[string]string{"id": id}, nil)
}

// AcceptQuoteURL returns the URL for accepting a quote
func AcceptQuoteURL(id string) string {
	return BuildURL(AcceptQuote, map[string]string{"id": id}, nil)
}

// NegotiateQuoteURL returns the URL for negotiating a quote
func NegotiateQuoteURL(id string) string {
	return BuildURL(NegotiateQuote, map[string]string{"id": id}, nil)
}

// RejectQuoteURL returns the URL for rejecting a quote
func RejectQuoteURL(id string) string {
	return BuildURL(RejectQuote, map[string]string{"id": id}, nil)
}

// GetDeliveryEstimateURL returns the URL for the delivery estimate lookup
func GetDeliveryEstimateURL(queryParams url.Values) string {
	return BuildURL(GetDeliveryEstimate, nil, queryParams)
}

// Payout route helpers

// GetPayoutsURL returns the URL for listing payout records
func GetPayoutsURL(queryParams url.Values) string {
	return BuildURL(GetPayouts, nil, queryParams)
}

// GetEligiblePayoutsURL returns the URL for listing settlement-eligible records
func GetEligiblePayoutsURL() string {
	return BuildURL(GetEligiblePayouts, nil, nil)
}

// GetPayoutURL returns the URL for getting a payout record
func GetPayoutURL(id string) string {
	return BuildURL(GetPayout, map[string]string{"id": id}, nil)
}

// GetPayoutSummaryURL returns the URL for the per-center payout summary
func GetPayoutSummaryURL() string {
	return BuildURL(GetPayoutSummary, nil, nil)
}

// MaterializePayoutURL returns the URL for materializing a payout
func MaterializePayoutURL() string {
	return BuildURL(MaterializePayout, nil, nil)
}

// ProcessBatchURL returns the URL for processing a payout batch
func ProcessBatchURL() string {
	return BuildURL(ProcessBatch, nil, nil)
}

// ProcessPayoutURL returns the URL for processing a single payout
func ProcessPayoutURL(id string) string {
	return BuildURL(ProcessPayout, map[string]string{"id": id}, nil)
}

// RaiseDisputeURL returns the URL for raising a dispute
func RaiseDisputeURL(id string) string {
	return BuildURL(RaiseDispute, map[string]string{"id": id}, nil)
}

// ResolveDisputeURL returns the URL for resolving a dispute
func ResolveDisputeURL(id string) string {
	return BuildURL(ResolveDispute, map[string]string{"id": id}, nil)
}

// ResetPayoutURL returns the URL for resetting a failed payout
func ResetPayoutURL(id string) string {
	return BuildURL(ResetPayout, map[string]string{"id": id}, nil)
}

// Settings route helpers

// GetPayoutSettingsURL returns the URL for getting payout settings
func GetPayoutSettingsURL() string {
	return BuildURL(GetPayoutSettings, nil, nil)
}

// UpdatePayoutSettingsURL returns the URL for updating payout settings
func UpdatePayoutSettingsURL() string {
	return BuildURL(UpdatePayoutSettings, nil, nil)
}
