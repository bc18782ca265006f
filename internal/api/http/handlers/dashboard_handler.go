package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-ticket-service/internal/api/dto"
	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/service"
)

// DashboardHandler serves aggregated views.
type DashboardHandler struct {
	service *service.TicketService
}

func NewDashboardHandler(ticketService *service.TicketService) *DashboardHandler {
	return &DashboardHandler{service: ticketService}
}

// Dashboard GET /dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		Statistics: dash.Statistics,
		Recent:     dto.NewTicketSummaries(dash.Recent),
		Urgent:     dto.NewTicketSummaries(dash.Urgent),
	}})
}

// Statistics GET /statistics.
func (h *DashboardHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Enums GET /meta/enums.
func (h *DashboardHandler) Enums(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.EnumsResponse{
		States:        domain.States,
		Priorities:    domain.Priorities,
		InitialStates: domain.InitialStates,
	}})
}
