package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-ticket-service/internal/analytics"
	"github.com/spec-kit/repair-ticket-service/internal/api/dto"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/service"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	input, err := parseCreateRequest(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /tickets?status=&search=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext(), listFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewTicketSummaries(tickets),
		"meta": fiber.Map{"count": len(tickets)},
	})
}

// NextNumber GET /tickets/next-number. The number is a prediction and is
// not reserved.
func (h *TicketsHandler) NextNumber(c *fiber.Ctx) error {
	number, err := h.service.PeekTicketNumber(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ticket_number": number}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	var changes domain.TicketChanges
	if req.CurrentState != nil {
		state, _ := domain.ParseState(*req.CurrentState)
		changes.CurrentState = &state
	}
	changes.AssignedTechnician = req.AssignedTechnician
	changes.TechnicianNotes = req.TechnicianNotes
	if req.EstimatedCost != nil {
		cost, err := req.EstimatedCost.Decimal()
		if err != nil {
			return apperrors.NewValidationError("invalid estimated cost", map[string]any{"estimated_cost": string(*req.EstimatedCost)})
		}
		changes.EstimatedCost = &cost
	}
	if req.FinalCost != nil {
		cost, err := req.FinalCost.Decimal()
		if err != nil {
			return apperrors.NewValidationError("invalid final cost", map[string]any{"final_cost": string(*req.FinalCost)})
		}
		changes.FinalCost = &cost
	}
	if req.EstimatedDelivery.Set {
		changes.SetEstimatedDelivery = true
		changes.EstimatedDelivery = req.EstimatedDelivery.Value
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), service.TicketUpdateInput{
		Changes:         changes,
		ExpectedVersion: req.Version,
		ChangedBy:       req.ChangedBy,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHistoryResponses(entries)})
}

func listFilter(c *fiber.Ctx) analytics.Filter {
	return analytics.Filter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
}

func parseCreateRequest(c *fiber.Ctx) (service.TicketCreateInput, error) {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return service.TicketCreateInput{}, apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	if err := dto.Validate(req); err != nil {
		return service.TicketCreateInput{}, err
	}

	input := service.TicketCreateInput{
		CustomerName:       req.CustomerName,
		Phone:              req.Phone,
		Address:            req.Address,
		DeviceType:         req.DeviceType,
		Brand:              req.Brand,
		Model:              req.Model,
		SerialNumber:       req.SerialNumber,
		DevicePassword:     req.DevicePassword,
		Accessories:        req.Accessories,
		ProblemDescription: req.ProblemDescription,
		ReceivedBy:         req.ReceivedBy,
		AssignedTechnician: req.AssignedTechnician,
		TechnicianNotes:    req.TechnicianNotes,
	}
	if req.Priority != "" {
		input.Priority, _ = domain.ParsePriority(req.Priority)
	}
	if req.InitialState != "" {
		input.InitialState, _ = domain.ParseInitialState(req.InitialState)
	}
	cost, err := req.EstimatedCost.Decimal()
	if err != nil {
		return service.TicketCreateInput{}, apperrors.NewValidationError("invalid estimated cost", map[string]any{"estimated_cost": string(req.EstimatedCost)})
	}
	input.EstimatedCost = cost
	if req.EstimatedDelivery != nil && *req.EstimatedDelivery != "" {
		delivery, err := dto.ParseDate(*req.EstimatedDelivery)
		if err != nil {
			return service.TicketCreateInput{}, apperrors.NewValidationError("invalid estimated delivery", map[string]any{"estimated_delivery": *req.EstimatedDelivery})
		}
		input.EstimatedDelivery = &delivery
	}
	return input, nil
}
