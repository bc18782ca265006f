package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStateChanged  EventType = "ticket_state_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventTicketPickupOverdue EventType = "ticket_pickup_overdue"
)

// AllEventTypes lists every type a catch-all subscriber should register for.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketStateChanged,
	EventTicketDeleted,
	EventTicketPickupOverdue,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	TicketID     string    `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, ticket *domain.Ticket, at time.Time, payload any) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		Timestamp:    at.UTC(),
		Payload:      payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerName string                `json:"customer_name"`
	Phone        string                `json:"phone"`
	DeviceType   string                `json:"device_type"`
	Priority     domain.TicketPriority `json:"priority"`
	State        domain.TicketState    `json:"state"`
}

// TicketUpdatedPayload lists which fields an update touched.
type TicketUpdatedPayload struct {
	Fields  []string `json:"fields"`
	Version int64    `json:"version"`
}

// TicketStateChangedPayload payload.
type TicketStateChangedPayload struct {
	OldState     domain.TicketState `json:"old_state"`
	NewState     domain.TicketState `json:"new_state"`
	CustomerName string             `json:"customer_name"`
	Phone        string             `json:"phone"`
}

// TicketPickupOverduePayload is emitted for repaired devices nobody collected.
type TicketPickupOverduePayload struct {
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	ReadySince   time.Time `json:"ready_since"`
	DaysWaiting  int       `json:"days_waiting"`
}
