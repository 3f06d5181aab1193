package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixflow/fixflow/internal/api/v1/routes"
	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/types"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient(nil)
	require.NoError(t, err)
	assert.NotNil(t, c)

	c, err = NewClient(&Options{BaseURL: "http://localhost:9090"})
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewClient(&Options{BaseURL: "://bad-url"})
	assert.Error(t, err)
}

func TestRouteURLs(t *testing.T) {
	assert.Equal(t, "/health", routes.HealthCheckURL())
	assert.Equal(t, "/api/v1/jobs", routes.CreateJobURL())
	assert.Equal(t, "/api/v1/jobs/42", routes.GetJobURL("42"))
	assert.Equal(t, "/api/v1/jobs/42/transition", routes.TransitionJobURL("42"))
	assert.Equal(t, "/api/v1/jobs/42/quote/accept", routes.AcceptQuoteURL("42"))
	assert.Equal(t, "/api/v1/payouts/7/dispute", routes.RaiseDisputeURL("7"))
	assert.Equal(t, "/api/v1/payouts/batch", routes.ProcessBatchURL())
	assert.Equal(t, "/api/v1/payouts/eligible", routes.GetEligiblePayoutsURL())
	assert.Equal(t, "/api/v1/settings/payout", routes.GetPayoutSettingsURL())
}

func TestAPIClient_GetJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/jobs/42", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"slug": "success",
			"data": map[string]interface{}{
				"ID":     42,
				"status": "in_repair",
			},
		})
	}))
	defer server.Close()

	c, err := NewClient(&Options{BaseURL: server.URL})
	require.NoError(t, err)

	job, err := c.GetJob(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), job.ID)
	assert.Equal(t, models.JobStatusInRepair, job.Status)
}

func TestAPIClient_CreateJob_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"slug":  "invalid-input",
			"error": "customer_id is required",
		})
	}))
	defer server.Close()

	c, err := NewClient(&Options{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = c.CreateJob(context.Background(), types.CreateJobRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer_id is required")
}
