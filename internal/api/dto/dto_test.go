package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util"
)

func TestValidateCreateRequest(t *testing.T) {
	req := CreateTicketRequest{CustomerName: "Ana Ruiz", Phone: "9999-0000", ProblemDescription: "no enciende", Priority: "Alta"}
	require.NoError(t, Validate(req))

	req.Phone = ""
	req.Priority = "Critical"
	err := Validate(req)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	fields := domainErr.Details["fields"].(map[string]any)
	assert.Equal(t, "required", fields["phone"])
	assert.Equal(t, "priority", fields["priority"])
}

func TestUpdateRequestDecoding(t *testing.T) {
	var req UpdateTicketRequest
	require.NoError(t, json.Unmarshal([]byte(`{"current_state":"Entregado","final_cost":850,"estimated_cost":"","estimated_delivery":null}`), &req))
	require.NoError(t, Validate(req))

	require.NotNil(t, req.FinalCost)
	cost, err := req.FinalCost.Decimal()
	require.NoError(t, err)
	assert.Equal(t, "850", cost.String())

	estimated, err := req.EstimatedCost.Decimal()
	require.NoError(t, err)
	assert.True(t, estimated.IsZero())

	assert.True(t, req.EstimatedDelivery.Set)
	assert.Nil(t, req.EstimatedDelivery.Value)

	var untouched UpdateTicketRequest
	require.NoError(t, json.Unmarshal([]byte(`{"technician_notes":"ok"}`), &untouched))
	assert.False(t, untouched.EstimatedDelivery.Set)
	assert.Nil(t, untouched.CurrentState)
}

func TestOptionalDateParsesCalendarDate(t *testing.T) {
	var req UpdateTicketRequest
	require.NoError(t, json.Unmarshal([]byte(`{"estimated_delivery":"2024-05-10"}`), &req))
	require.NotNil(t, req.EstimatedDelivery.Value)
	assert.Equal(t, "2024-05-10", req.EstimatedDelivery.Value.Format("2006-01-02"))

	assert.Error(t, json.Unmarshal([]byte(`{"estimated_delivery":"next week"}`), &req))
}

func TestAmountBounds(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{"", true},
		{"850", true},
		{"10.50", true},
		{"9999999999.99", true},
		{"-5", false},
		{"10.005", false},
		{"10000000000", false},
		{"abc", false},
	}
	for _, tc := range cases {
		_, err := Amount(tc.raw).Decimal()
		if tc.ok {
			assert.NoError(t, err, tc.raw)
		} else {
			assert.Error(t, err, tc.raw)
		}
	}
}
