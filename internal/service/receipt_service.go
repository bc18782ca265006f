package service

import (
	"context"
	"time"

	"github.com/spec-kit/repair-ticket-service/internal/analytics"
	"github.com/spec-kit/repair-ticket-service/internal/export"
	"github.com/spec-kit/repair-ticket-service/internal/receipt"
)

// ReceiptService prints work orders and exports listings.
type ReceiptService struct {
	tickets       *TicketService
	profile       receipt.Profile
	defaultLayout receipt.Layout
	now           func() time.Time
}

// NewReceiptService wires the business profile to the ticket service.
func NewReceiptService(tickets *TicketService, profile receipt.Profile, defaultLayout receipt.Layout) *ReceiptService {
	if defaultLayout == "" {
		defaultLayout = receipt.LayoutA5
	}
	return &ReceiptService{
		tickets:       tickets,
		profile:       profile,
		defaultLayout: defaultLayout,
		now:           tickets.now,
	}
}

// Receipt renders the stored ticket. An empty layout uses the configured default.
func (s *ReceiptService) Receipt(ctx context.Context, id, layout string) (receipt.Document, error) {
	l, err := receipt.ParseLayout(layout, s.defaultLayout)
	if err != nil {
		return receipt.Document{}, err
	}
	ticket, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		return receipt.Document{}, err
	}
	return receipt.Format(ticket, s.profile, l, s.now())
}

// Preview renders an intake that has not been saved, under a provisional number.
func (s *ReceiptService) Preview(input TicketCreateInput, layout string) (receipt.Document, error) {
	l, err := receipt.ParseLayout(layout, s.defaultLayout)
	if err != nil {
		return receipt.Document{}, err
	}
	ticket, err := s.tickets.buildTicket(input)
	if err != nil {
		return receipt.Document{}, err
	}
	return receipt.Preview(*ticket, s.profile, l, s.now())
}

// ExportXLSX writes the filtered listing and its statistics to a workbook.
func (s *ReceiptService) ExportXLSX(ctx context.Context, filter analytics.Filter) ([]byte, error) {
	tickets, err := s.tickets.ListTickets(ctx, filter)
	if err != nil {
		return nil, err
	}
	return export.TicketsXLSX(tickets, analytics.Compute(tickets), s.profile.Location)
}
