package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

func sample() []domain.Ticket {
	return []domain.Ticket{
		{Number: "TKT-2024-0008", CustomerName: "Ana Ruiz", Phone: "9999-0000", DeviceType: "Laptop", CurrentState: domain.StateRepaired, Priority: domain.PriorityUrgent},
		{Number: "TKT-2024-0007", CustomerName: "Carlos Mejía", Phone: "3361-1761", DeviceType: "Tablet", CurrentState: domain.StateDelivered, Priority: domain.PriorityUrgent},
		{Number: "TKT-2024-0006", CustomerName: "María López", Phone: "3171-3287", DeviceType: "PC de Escritorio", CurrentState: domain.StateInRepair, Priority: domain.PriorityHigh},
		{Number: "TKT-2024-0005", CustomerName: "José Ana", Phone: "9647-3966", DeviceType: "Servidor", CurrentState: domain.StateRepaired, Priority: domain.PriorityLow},
		{Number: "TKT-2024-0004", CustomerName: "Luis Paz", Phone: "2222-1111", DeviceType: "Laptop", CurrentState: domain.StateReceived, Priority: domain.PriorityMedium},
		{Number: "TKT-2024-0003", CustomerName: "Rosa Díaz", Phone: "8888-7777", DeviceType: "All-in-One", CurrentState: domain.StateReadyForPickup, Priority: domain.PriorityHigh},
		{Number: "TKT-2024-0002", CustomerName: "Pedro Gil", Phone: "5555-4444", DeviceType: "Laptop", CurrentState: domain.StateAwaitingParts, Priority: domain.PriorityUrgent},
	}
}

func numbers(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.Number)
	}
	return out
}

func TestApplyStatusFilter(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   []string
	}{
		{"repaired keeps order", "Repaired", []string{"TKT-2024-0008", "TKT-2024-0005"}},
		{"all sentinel", "All", numbers(sample())},
		{"empty", "", numbers(sample())},
		{"legacy alias", "Listo para Entregar", []string{"TKT-2024-0003"}},
		{"unknown state matches nothing", "Lost", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sample(), Filter{Status: tt.status})
			assert.Equal(t, tt.want, numbers(got))
		})
	}
}

func TestApplySearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"ticket number", "0007", []string{"TKT-2024-0007"}},
		{"customer name case-insensitive", "ANA", []string{"TKT-2024-0008", "TKT-2024-0005"}},
		{"phone", "3171", []string{"TKT-2024-0006"}},
		{"device type", "laptop", []string{"TKT-2024-0008", "TKT-2024-0004", "TKT-2024-0002"}},
		{"no match", "iphone", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sample(), Filter{Search: tt.search})
			assert.Equal(t, tt.want, numbers(got))
		})
	}
}

func TestApplyStatusAndSearch(t *testing.T) {
	got := Apply(sample(), Filter{Status: "Repaired", Search: "ana"})
	assert.Equal(t, []string{"TKT-2024-0008", "TKT-2024-0005"}, numbers(got))
}

func TestComputeSumsToTotal(t *testing.T) {
	tickets := sample()
	stats := Compute(tickets)

	require.Equal(t, len(tickets), stats.Total)
	stateSum, prioritySum := 0, 0
	for _, n := range stats.CountsByState {
		stateSum += n
	}
	for _, n := range stats.CountsByPriority {
		prioritySum += n
	}
	assert.Equal(t, stats.Total, stateSum)
	assert.Equal(t, stats.Total, prioritySum)

	assert.Equal(t, 2, stats.CountsByState[domain.StateRepaired])
	assert.Equal(t, 0, stats.CountsByState[domain.StateInDiagnosis])
	assert.Equal(t, 3, stats.CountsByPriority[domain.PriorityUrgent])
	assert.Equal(t, 3, stats.InProcess)
	assert.Equal(t, 3, stats.Completed)
}

func TestComputeUnclassified(t *testing.T) {
	stats := Compute([]domain.Ticket{{CurrentState: "Under Evaluation", Priority: "Media"}})
	assert.Equal(t, 1, stats.UnclassifiedStates)
	assert.Equal(t, 1, stats.UnclassifiedPriorities)
}

func TestUrgentExcludesDelivered(t *testing.T) {
	got := Urgent(sample(), DashboardSliceSize)
	assert.Equal(t, []string{"TKT-2024-0008", "TKT-2024-0006", "TKT-2024-0003", "TKT-2024-0002"}, numbers(got))
	for _, ticket := range got {
		assert.NotEqual(t, domain.StateDelivered, ticket.CurrentState)
	}
}

func TestDashboardSlices(t *testing.T) {
	tickets := sample()
	dash := BuildDashboard(Compute(tickets), tickets)
	assert.Equal(t, numbers(tickets[:5]), numbers(dash.Recent))
	assert.Len(t, dash.Urgent, 4)

	assert.Empty(t, Recent(nil, DashboardSliceSize))
}
