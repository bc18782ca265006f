package domain

import "time"

// TicketHistory is an immutable record of one state change.
type TicketHistory struct {
	ID        string
	TicketID  string
	OldState  TicketState
	NewState  TicketState
	ChangedBy string
	CreatedAt time.Time
}
