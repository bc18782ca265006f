package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/repair-ticket-service/internal/analytics"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

func TestTicketsXLSX(t *testing.T) {
	tickets := []domain.Ticket{
		{
			Number:         "TKT-2024-0002",
			CustomerName:   "Ana Ruiz",
			Phone:          "9999-0000",
			DeviceType:     "Laptop",
			DevicePassword: "secret-pin",
			Priority:       domain.PriorityUrgent,
			CurrentState:   domain.StateRepaired,
			EstimatedCost:  decimal.RequireFromString("850"),
			IntakeAt:       time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			Number:       "TKT-2024-0001",
			CustomerName: "Luis Paz",
			Phone:        "2222-1111",
			DeviceType:   "Impresora",
			Priority:     domain.PriorityLow,
			CurrentState: domain.StateReceived,
			IntakeAt:     time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
		},
	}

	content, err := TicketsXLSX(tickets, analytics.Compute(tickets), time.UTC)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(TicketsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Number", rows[0][0])
	assert.Equal(t, "TKT-2024-0002", rows[1][0])
	assert.Equal(t, "2024-03-05 10:00", rows[1][1])
	assert.Equal(t, "Ana Ruiz", rows[1][2])
	for _, row := range rows {
		assert.NotContains(t, row, "secret-pin")
	}

	total, err := f.GetCellValue(SummarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}
