package analytics

import "github.com/spec-kit/repair-ticket-service/internal/domain"

// Statistics tallies tickets per state and per priority. Tickets whose state
// or priority falls outside the enumerations are counted as unclassified so
// both breakdowns still sum to Total.
type Statistics struct {
	Total                  int                           `json:"total"`
	CountsByState          map[domain.TicketState]int    `json:"counts_by_state"`
	CountsByPriority       map[domain.TicketPriority]int `json:"counts_by_priority"`
	InProcess              int                           `json:"in_process"`
	Completed              int                           `json:"completed"`
	UnclassifiedStates     int                           `json:"unclassified_states,omitempty"`
	UnclassifiedPriorities int                           `json:"unclassified_priorities,omitempty"`
}

// Dashboard bundles the dashboard view data.
type Dashboard struct {
	Statistics Statistics
	Recent     []domain.Ticket
	Urgent     []domain.Ticket
}

// Compute tallies tickets. Every enumerated value is present in the maps,
// with zero when unused.
func Compute(tickets []domain.Ticket) Statistics {
	stats := Statistics{
		Total:            len(tickets),
		CountsByState:    make(map[domain.TicketState]int, len(domain.States)),
		CountsByPriority: make(map[domain.TicketPriority]int, len(domain.Priorities)),
	}
	for _, e := range domain.States {
		stats.CountsByState[domain.TicketState(e.Value)] = 0
	}
	for _, e := range domain.Priorities {
		stats.CountsByPriority[domain.TicketPriority(e.Value)] = 0
	}

	for _, t := range tickets {
		if t.CurrentState.Valid() {
			stats.CountsByState[t.CurrentState]++
		} else {
			stats.UnclassifiedStates++
		}
		if t.Priority.Valid() {
			stats.CountsByPriority[t.Priority]++
		} else {
			stats.UnclassifiedPriorities++
		}
		if t.CurrentState.InProcess() {
			stats.InProcess++
		}
		if t.CurrentState.Completed() {
			stats.Completed++
		}
	}
	return stats
}

// BuildDashboard assembles statistics plus the recent and urgent slices.
// tickets must be ordered newest intake first.
func BuildDashboard(stats Statistics, tickets []domain.Ticket) Dashboard {
	return Dashboard{
		Statistics: stats,
		Recent:     Recent(tickets, DashboardSliceSize),
		Urgent:     Urgent(tickets, DashboardSliceSize),
	}
}
