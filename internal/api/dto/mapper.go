package dto

import (
	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	var delivery *string
	if t.EstimatedDelivery != nil {
		formatted := t.EstimatedDelivery.Format("2006-01-02")
		delivery = &formatted
	}
	return TicketResponse{
		ID:                 t.ID,
		Number:             t.Number,
		CustomerName:       t.CustomerName,
		Phone:              t.Phone,
		Address:            t.Address,
		DeviceType:         t.DeviceType,
		Brand:              t.Brand,
		Model:              t.Model,
		SerialNumber:       t.SerialNumber,
		DevicePassword:     t.DevicePassword,
		Accessories:        t.Accessories,
		ProblemDescription: t.ProblemDescription,
		Priority:           t.Priority,
		PriorityColor:      t.Priority.Color(),
		InitialState:       t.InitialState,
		CurrentState:       t.CurrentState,
		StateColor:         t.CurrentState.Color(),
		TechnicianNotes:    t.TechnicianNotes,
		ReceivedBy:         t.ReceivedBy,
		AssignedTechnician: t.AssignedTechnician,
		EstimatedCost:      t.EstimatedCost,
		FinalCost:          t.FinalCost,
		IntakeAt:           t.IntakeAt,
		EstimatedDelivery:  delivery,
		Version:            t.Version,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// NewTicketSummary maps a listing row.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:            t.ID,
		Number:        t.Number,
		CustomerName:  t.CustomerName,
		Phone:         t.Phone,
		DeviceType:    t.DeviceType,
		Brand:         t.Brand,
		Priority:      t.Priority,
		PriorityColor: t.Priority.Color(),
		CurrentState:  t.CurrentState,
		StateColor:    t.CurrentState.Color(),
		IntakeAt:      t.IntakeAt,
	}
}

// NewTicketSummaries maps a slice, never returning nil.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	items := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketSummary(&tickets[i]))
	}
	return items
}

// NewHistoryResponses maps history entries.
func NewHistoryResponses(entries []domain.TicketHistory) []TicketHistoryResponse {
	items := make([]TicketHistoryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, TicketHistoryResponse{
			ID:        e.ID,
			OldState:  e.OldState,
			NewState:  e.NewState,
			ChangedBy: e.ChangedBy,
			CreatedAt: e.CreatedAt,
		})
	}
	return items
}
