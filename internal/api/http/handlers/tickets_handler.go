package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/change-compliance/internal/api/dto"
	"github.com/spec-kit/change-compliance/internal/service"
	apperrors "github.com/spec-kit/change-compliance/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TicketsHandler serves the read-only ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	query, err := parseTicketListQuery(c)
	if err != nil {
		return err
	}
	page := h.service.List(c.UserContext(), query)
	return c.JSON(dto.NewTicketListResponse(page))
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(ticket)
}

// Stats GET /api/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(dto.NewStatsResponse(h.service.Stats(c.UserContext())))
}

func parseTicketListQuery(c *fiber.Ctx) (service.TicketListQuery, error) {
	query := service.TicketListQuery{
		Filter: service.TicketFilter{
			Status:           optionalQuery(c, "status"),
			Priority:         optionalQuery(c, "priority"),
			ComplianceStatus: optionalQuery(c, "compliance"),
			Assignee:         optionalQuery(c, "assignee"),
		},
		SortBy:    c.Query("sort_by", service.SortByCreatedAt),
		SortOrder: c.Query("sort_order", service.SortDesc),
	}

	if query.SortOrder != service.SortAsc && query.SortOrder != service.SortDesc {
		return query, apperrors.NewValidationError("sort_order must be asc or desc", map[string]any{"sort_order": query.SortOrder})
	}

	page, err := intQuery(c, "page", 1)
	if err != nil || page < 1 {
		return query, apperrors.NewValidationError("page must be a positive integer", map[string]any{"page": c.Query("page")})
	}
	pageSize, err := intQuery(c, "page_size", defaultPageSize)
	if err != nil || pageSize < 1 || pageSize > maxPageSize {
		return query, apperrors.NewValidationError("page_size must be between 1 and 100", map[string]any{"page_size": c.Query("page_size")})
	}
	query.Page = page
	query.PageSize = pageSize
	return query, nil
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func intQuery(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
