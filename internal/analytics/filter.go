// Package analytics filters and aggregates an in-memory ticket collection
// for the list and dashboard views.
package analytics

import (
	"strings"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// DashboardSliceSize is the length of the recent and urgent dashboard lists.
const DashboardSliceSize = 5

// Filter restricts the ticket list. Zero values match everything.
type Filter struct {
	// Status is a current state, or "All"/"" for no restriction.
	Status string
	// Search is matched case-insensitively against number, customer name,
	// phone and device type.
	Search string
}

// Apply returns the tickets matching f, preserving input order.
func Apply(tickets []domain.Ticket, f Filter) []domain.Ticket {
	status := strings.TrimSpace(f.Status)
	if strings.EqualFold(status, domain.StateAll) || strings.EqualFold(status, "Todos") {
		status = ""
	}
	if status != "" {
		if parsed, ok := domain.ParseState(status); ok {
			status = string(parsed)
		}
	}
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	result := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if status != "" && string(t.CurrentState) != status {
			continue
		}
		if needle != "" && !matchesSearch(t, needle) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func matchesSearch(t domain.Ticket, needle string) bool {
	for _, field := range []string{t.Number, t.CustomerName, t.Phone, t.DeviceType} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Recent returns the first n tickets. Input is expected newest first.
func Recent(tickets []domain.Ticket, n int) []domain.Ticket {
	if n > len(tickets) {
		n = len(tickets)
	}
	return append([]domain.Ticket{}, tickets[:n]...)
}

// Urgent returns up to n High or Urgent tickets that have not been delivered.
func Urgent(tickets []domain.Ticket, n int) []domain.Ticket {
	result := []domain.Ticket{}
	for _, t := range tickets {
		if len(result) == n {
			break
		}
		if t.Priority.Elevated() && t.CurrentState != domain.StateDelivered {
			result = append(result, t)
		}
	}
	return result
}
