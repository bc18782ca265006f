package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/analytics"
	"github.com/spec-kit/repair-ticket-service/internal/cache"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/events"
	"github.com/spec-kit/repair-ticket-service/internal/repository"
	"github.com/spec-kit/repair-ticket-service/internal/secrets"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util"
)

// DefaultDeviceType is preselected on the intake form.
const DefaultDeviceType = "Laptop"

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	sequences  repository.SequenceRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	stats      *cache.StatsCache
	sealer     *secrets.Sealer
	logger     *zap.Logger
	now        func() time.Time
	loc        *time.Location
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	SequenceRepo repository.SequenceRepository
	HistoryRepo  repository.TicketHistoryRepository
	Dispatcher   events.Dispatcher
	StatsCache   *cache.StatsCache
	Sealer       *secrets.Sealer
	Logger       *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Location is the shop's time zone; ticket numbers use its calendar year.
	// Defaults to UTC.
	Location *time.Location
}

// TicketCreateInput describes the intake form.
type TicketCreateInput struct {
	CustomerName       string
	Phone              string
	Address            string
	DeviceType         string
	Brand              string
	Model              string
	SerialNumber       string
	DevicePassword     string
	Accessories        string
	ProblemDescription string
	Priority           domain.TicketPriority
	InitialState       domain.InitialState
	ReceivedBy         string
	AssignedTechnician string
	TechnicianNotes    string
	EstimatedCost      decimal.Decimal
	EstimatedDelivery  *time.Time
}

// TicketUpdateInput describes an edit from the detail view.
type TicketUpdateInput struct {
	Changes domain.TicketChanges
	// ExpectedVersion makes the write conditional when positive.
	ExpectedVersion int64
	ChangedBy       string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(logger)
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		sequences:  deps.SequenceRepo,
		history:    deps.HistoryRepo,
		dispatcher: dispatcher,
		stats:      deps.StatsCache,
		sealer:     deps.Sealer,
		logger:     logger,
		now:        clock,
		loc:        loc,
	}
}

// NextTicketNumber reserves the next number for the current year.
func (s *TicketService) NextTicketNumber(ctx context.Context) (string, error) {
	year := s.currentYear()
	seq, err := s.sequences.Next(ctx, year)
	if err != nil {
		return "", s.persistenceError("reserve ticket number", err)
	}
	return domain.FormatTicketNumber(year, seq), nil
}

func (s *TicketService) currentYear() int {
	return s.now().In(s.loc).Year()
}

// PeekTicketNumber predicts the number the next intake will receive without
// reserving it. It follows the latest ticket of the current year and starts
// at 0001 when the year has none.
func (s *TicketService) PeekTicketNumber(ctx context.Context) (string, error) {
	year := s.currentYear()
	latest, err := s.tickets.Latest(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FormatTicketNumber(year, 1), nil
	}
	if err != nil {
		return "", s.persistenceError("read latest ticket", err)
	}
	lastYear, seq, err := domain.ParseTicketNumber(latest.Number)
	if err != nil || lastYear != year {
		return domain.FormatTicketNumber(year, 1), nil
	}
	return domain.FormatTicketNumber(year, seq+1), nil
}

// CreateTicket validates the intake, assigns a number and stores the ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket, err := s.buildTicket(input)
	if err != nil {
		return nil, err
	}

	number, err := s.NextTicketNumber(ctx)
	if err != nil {
		return nil, err
	}
	ticket.Number = number
	ticket.IntakeAt = s.now()

	plainPassword := ticket.DevicePassword
	if ticket.DevicePassword, err = s.sealer.Seal(plainPassword); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, s.persistenceError("create ticket", err)
	}
	ticket.DevicePassword = plainPassword

	s.publishEvent(ctx, events.New(events.EventTicketCreated, ticket, s.now(), events.TicketCreatedPayload{
		CustomerName: ticket.CustomerName,
		Phone:        ticket.Phone,
		DeviceType:   ticket.DeviceType,
		Priority:     ticket.Priority,
		State:        ticket.CurrentState,
	}))
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.Number))
	return ticket, nil
}

// buildTicket applies intake defaults and checks required fields.
func (s *TicketService) buildTicket(input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		CustomerName:       strings.TrimSpace(input.CustomerName),
		Phone:              strings.TrimSpace(input.Phone),
		Address:            strings.TrimSpace(input.Address),
		DeviceType:         strings.TrimSpace(input.DeviceType),
		Brand:              strings.TrimSpace(input.Brand),
		Model:              strings.TrimSpace(input.Model),
		SerialNumber:       strings.TrimSpace(input.SerialNumber),
		DevicePassword:     input.DevicePassword,
		Accessories:        strings.TrimSpace(input.Accessories),
		ProblemDescription: strings.TrimSpace(input.ProblemDescription),
		Priority:           input.Priority,
		InitialState:       input.InitialState,
		CurrentState:       domain.StateReceived,
		ReceivedBy:         strings.TrimSpace(input.ReceivedBy),
		AssignedTechnician: strings.TrimSpace(input.AssignedTechnician),
		TechnicianNotes:    strings.TrimSpace(input.TechnicianNotes),
		EstimatedCost:      input.EstimatedCost,
		FinalCost:          decimal.Zero,
		EstimatedDelivery:  input.EstimatedDelivery,
	}
	if ticket.DeviceType == "" {
		ticket.DeviceType = DefaultDeviceType
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.PriorityMedium
	}
	if ticket.InitialState == "" {
		ticket.InitialState = domain.InitialReceived
	}

	var missing []string
	if ticket.CustomerName == "" {
		missing = append(missing, "customer_name")
	}
	if ticket.Phone == "" {
		missing = append(missing, "phone")
	}
	if ticket.ProblemDescription == "" {
		missing = append(missing, "problem_description")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("required fields are missing", map[string]any{"missing": missing})
	}
	if !ticket.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": ticket.Priority})
	}
	if !ticket.InitialState.Valid() {
		return nil, apperrors.NewValidationError("invalid initial state", map[string]any{"initial_state": ticket.InitialState})
	}
	if err := domain.CheckCost(ticket.EstimatedCost); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "estimated_cost"})
	}
	return ticket, nil
}

// ListTickets returns tickets newest first, narrowed by filter.
func (s *TicketService) ListTickets(ctx context.Context, filter analytics.Filter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, s.persistenceError("list tickets", err)
	}
	tickets = analytics.Apply(tickets, filter)
	for i := range tickets {
		s.openPassword(&tickets[i])
	}
	return tickets, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	if err != nil {
		return nil, s.persistenceError("get ticket", err)
	}
	s.openPassword(ticket)
	return ticket, nil
}

// UpdateTicket applies a partial edit. Only the editable fields change; the
// number and initial state are never touched.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	current, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := input.Changes
	if err := validateChanges(changes); err != nil {
		return nil, err
	}
	if changes.IsEmpty() {
		return current, nil
	}

	updated := *current
	changes.Apply(&updated)
	if err := s.tickets.Update(ctx, &updated, input.ExpectedVersion); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, apperrors.NewConflict("ticket was modified by someone else, reload and try again", map[string]any{
				"id":               id,
				"expected_version": input.ExpectedVersion,
			})
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, s.persistenceError("update ticket", err)
	}

	now := s.now()
	if updated.CurrentState != current.CurrentState {
		s.recordStateChange(ctx, &updated, current.CurrentState, input.ChangedBy, now)
	}
	s.publishEvent(ctx, events.New(events.EventTicketUpdated, &updated, now, events.TicketUpdatedPayload{
		Fields:  changedFields(changes),
		Version: updated.Version,
	}))
	return &updated, nil
}

func validateChanges(c domain.TicketChanges) error {
	if c.CurrentState != nil && !c.CurrentState.Valid() {
		return apperrors.NewValidationError("invalid state", map[string]any{"current_state": *c.CurrentState})
	}
	if c.EstimatedCost != nil {
		if err := domain.CheckCost(*c.EstimatedCost); err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"field": "estimated_cost"})
		}
	}
	if c.FinalCost != nil {
		if err := domain.CheckCost(*c.FinalCost); err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"field": "final_cost"})
		}
	}
	return nil
}

func changedFields(c domain.TicketChanges) []string {
	var fields []string
	if c.CurrentState != nil {
		fields = append(fields, "current_state")
	}
	if c.AssignedTechnician != nil {
		fields = append(fields, "assigned_technician")
	}
	if c.TechnicianNotes != nil {
		fields = append(fields, "technician_notes")
	}
	if c.EstimatedCost != nil {
		fields = append(fields, "estimated_cost")
	}
	if c.FinalCost != nil {
		fields = append(fields, "final_cost")
	}
	if c.SetEstimatedDelivery {
		fields = append(fields, "estimated_delivery")
	}
	return fields
}

// recordStateChange appends history and announces the transition. History
// failures are logged; the edit itself already succeeded.
func (s *TicketService) recordStateChange(ctx context.Context, ticket *domain.Ticket, old domain.TicketState, changedBy string, at time.Time) {
	entry := &domain.TicketHistory{
		TicketID:  ticket.ID,
		OldState:  old,
		NewState:  ticket.CurrentState,
		ChangedBy: strings.TrimSpace(changedBy),
		CreatedAt: at,
	}
	if s.history != nil {
		if err := s.history.Create(ctx, entry); err != nil {
			s.logger.Warn("failed to record ticket history", zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
	}
	s.publishEvent(ctx, events.New(events.EventTicketStateChanged, ticket, at, events.TicketStateChangedPayload{
		OldState:     old,
		NewState:     ticket.CurrentState,
		CustomerName: ticket.CustomerName,
		Phone:        ticket.Phone,
	}))
}

// History lists the state changes of a ticket, oldest first.
func (s *TicketService) History(ctx context.Context, id string) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicket(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	entries, err := s.history.ListByTicket(ctx, id)
	if err != nil {
		return nil, s.persistenceError("list ticket history", err)
	}
	return entries, nil
}

// DeleteTicket removes a ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return s.persistenceError("delete ticket", err)
	}
	s.publishEvent(ctx, events.New(events.EventTicketDeleted, ticket, s.now(), nil))
	return nil
}

// Statistics tallies every ticket, served from cache when possible.
func (s *TicketService) Statistics(ctx context.Context) (analytics.Statistics, error) {
	return s.stats.GetOrCompute(ctx, func(ctx context.Context) (analytics.Statistics, error) {
		tickets, err := s.tickets.ListStateAndPriority(ctx)
		if err != nil {
			return analytics.Statistics{}, s.persistenceError("compute statistics", err)
		}
		return analytics.Compute(tickets), nil
	})
}

// Dashboard returns statistics plus the recent and urgent slices.
func (s *TicketService) Dashboard(ctx context.Context) (analytics.Dashboard, error) {
	stats, err := s.Statistics(ctx)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	tickets, err := s.ListTickets(ctx, analytics.Filter{})
	if err != nil {
		return analytics.Dashboard{}, err
	}
	return analytics.BuildDashboard(stats, tickets), nil
}

// OverduePickups lists tickets ready for pickup since before cutoff.
func (s *TicketService) OverduePickups(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListInStateSince(ctx, domain.StateReadyForPickup, cutoff)
	if err != nil {
		return nil, s.persistenceError("list overdue pickups", err)
	}
	return tickets, nil
}

// Publish forwards an event to subscribers.
func (s *TicketService) Publish(ctx context.Context, event events.Event) {
	s.publishEvent(ctx, event)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *TicketService) openPassword(ticket *domain.Ticket) {
	if ticket.DevicePassword == "" {
		return
	}
	plain, err := s.sealer.Open(ticket.DevicePassword)
	if err != nil {
		s.logger.Warn("cannot open device password", zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	ticket.DevicePassword = plain
}

func (s *TicketService) persistenceError(op string, err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error("ticket store failure", zap.String("operation", op), zap.Error(err))
	return apperrors.NewPersistenceError(op, err)
}
