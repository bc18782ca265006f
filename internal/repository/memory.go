package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// MemoryTicketRepository keeps tickets in process memory. It backs the
// service when no POSTGRES_DSN is configured and in tests.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets []domain.Ticket
	now     func() time.Time
}

// NewMemoryTicketRepository returns an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{now: time.Now}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	ticket.ID = uuid.NewString()
	if ticket.IntakeAt.IsZero() {
		ticket.IntakeAt = now
	}
	ticket.Version = 1
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *MemoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(ticket.ID)
	if idx < 0 {
		return pgx.ErrNoRows
	}
	stored := &r.tickets[idx]
	if expectedVersion > 0 && stored.Version != expectedVersion {
		return ErrVersionConflict
	}
	stored.CurrentState = ticket.CurrentState
	stored.AssignedTechnician = ticket.AssignedTechnician
	stored.TechnicianNotes = ticket.TechnicianNotes
	stored.EstimatedCost = ticket.EstimatedCost
	stored.FinalCost = ticket.FinalCost
	stored.EstimatedDelivery = ticket.EstimatedDelivery
	stored.Version++
	stored.UpdatedAt = r.now()
	ticket.Version = stored.Version
	ticket.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, pgx.ErrNoRows
	}
	ticket := r.tickets[idx]
	return &ticket, nil
}

func (r *MemoryTicketRepository) Latest(_ context.Context) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	ticket := r.tickets[len(r.tickets)-1]
	return &ticket, nil
}

func (r *MemoryTicketRepository) List(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	result := append([]domain.Ticket(nil), r.tickets...)
	r.mu.RUnlock()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].IntakeAt.After(result[j].IntakeAt)
	})
	return result, nil
}

func (r *MemoryTicketRepository) ListStateAndPriority(ctx context.Context) ([]domain.Ticket, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Ticket, 0, len(all))
	for _, t := range all {
		result = append(result, domain.Ticket{CurrentState: t.CurrentState, Priority: t.Priority})
	}
	return result, nil
}

func (r *MemoryTicketRepository) ListInStateSince(_ context.Context, state domain.TicketState, before time.Time) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Ticket
	for _, t := range r.tickets {
		if t.CurrentState == state && t.UpdatedAt.Before(before) {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *MemoryTicketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return pgx.ErrNoRows
	}
	r.tickets = append(r.tickets[:idx], r.tickets[idx+1:]...)
	return nil
}

// Touch overrides the last update time of a ticket.
func (r *MemoryTicketRepository) Touch(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx := r.indexOf(id); idx >= 0 {
		r.tickets[idx].UpdatedAt = at
	}
}

func (r *MemoryTicketRepository) indexOf(id string) int {
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryTicketRepository) maxSequence(year int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	highest := 0
	for _, t := range r.tickets {
		y, seq, err := domain.ParseTicketNumber(t.Number)
		if err == nil && y == year && seq > highest {
			highest = seq
		}
	}
	return highest
}

// MemorySequenceRepository mirrors the ticket_sequences table.
type MemorySequenceRepository struct {
	mu      sync.Mutex
	tickets *MemoryTicketRepository
	values  map[int]int
}

// NewMemorySequenceRepository seeds missing years from tickets.
func NewMemorySequenceRepository(tickets *MemoryTicketRepository) *MemorySequenceRepository {
	return &MemorySequenceRepository{tickets: tickets, values: make(map[int]int)}
}

func (r *MemorySequenceRepository) Next(_ context.Context, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.values[year]
	if !ok && r.tickets != nil {
		current = r.tickets.maxSequence(year)
	}
	current++
	r.values[year] = current
	return current, nil
}

// MemoryHistoryRepository keeps state change entries in memory.
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	entries []domain.TicketHistory
}

// NewMemoryHistoryRepository returns an empty history store.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{}
}

func (r *MemoryHistoryRepository) Create(_ context.Context, history *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	history.ID = uuid.NewString()
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *history)
	return nil
}

func (r *MemoryHistoryRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.TicketHistory{}
	for _, e := range r.entries {
		if e.TicketID == ticketID {
			result = append(result, e)
		}
	}
	return result, nil
}
