package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayoutStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        PayoutStatus
		stringValue   string
		jsonValue     string
		validForParse bool
		validForJson  bool
	}{
		{
			name:          "Unknown status",
			status:        PayoutStatusUnknown,
			stringValue:   "unknown",
			jsonValue:     `"unknown"`,
			validForParse: true,
			validForJson:  true,
		},
		{
			name:          "Pending status",
			status:        PayoutStatusPending,
			stringValue:   "pending",
			jsonValue:     `"pending"`,
			validForParse: true,
			validForJson:  true,
		},
		{
			name:          "Processing status",
			status:        PayoutStatusProcessing,
			stringValue:   "processing",
			jsonValue:     `"processing"`,
			validForParse: true,
			validForJson:  true,
		},
		{
			name:          "Completed status",
			status:        PayoutStatusCompleted,
			stringValue:   "completed",
			jsonValue:     `"completed"`,
			validForParse: true,
			validForJson:  true,
		},
		{
			name:          "Failed status",
			status:        PayoutStatusFailed,
			stringValue:   "failed",
			jsonValue:     `"failed"`,
			validForParse: true,
			validForJson:  true,
		},
		{
			name:          "Invalid status",
			stringValue:   "invalid_status",
			jsonValue:     `"invalid_status"`,
			validForParse: false,
			validForJson:  false,
		},
		{
			name:          "Invalid JSON",
			jsonValue:     `invalid`,
			validForParse: false,
			validForJson:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.stringValue != "" && tt.validForParse {
				assert.Equal(t, tt.stringValue, tt.status.String(), "String() method failed")
			}

			parsedStatus, err := ParsePayoutStatus(tt.stringValue)
			if tt.validForParse {
				assert.NoError(t, err, "ParsePayoutStatus should not return error")
				assert.Equal(t, tt.status, parsedStatus, "ParsePayoutStatus returned wrong status")
			} else {
				assert.Error(t, err, "ParsePayoutStatus should return error for invalid status")
				assert.Equal(t, PayoutStatusUnknown, parsedStatus, "Invalid status should return PayoutStatusUnknown")
			}

			if tt.validForJson {
				bytes, err := tt.status.MarshalJSON()
				assert.NoError(t, err, "Marshal should not return error")
				assert.Equal(t, tt.jsonValue, string(bytes), "Marshal produced incorrect JSON")
			}

			var unmarshaledStatus PayoutStatus
			err = unmarshaledStatus.UnmarshalJSON([]byte(tt.jsonValue))
			if tt.validForJson {
				assert.NoError(t, err, "Unmarshal should not return error")
				assert.Equal(t, tt.status, unmarshaledStatus, "Unmarshal produced incorrect status")
			} else {
				assert.Error(t, err, "Unmarshal should return error for invalid JSON")
			}
		})
	}
}
