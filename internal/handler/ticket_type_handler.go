package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/eventease/eventease/internal/dto"
	"github.com/eventease/eventease/internal/service"
	"github.com/eventease/eventease/pkg/middleware"
	"github.com/eventease/eventease/pkg/response"
	"github.com/eventease/eventease/pkg/telemetry"
)

// TicketTypeHandler handles ticket tier HTTP requests
type TicketTypeHandler struct {
	ticketTypeService service.TicketTypeService
}

// NewTicketTypeHandler creates a new ticket type handler
func NewTicketTypeHandler(ticketTypeService service.TicketTypeService) *TicketTypeHandler {
	return &TicketTypeHandler{ticketTypeService: ticketTypeService}
}

// CreateTicketType handles POST /events/:eventId/ticket-types.
// Restricted to organizer and admin roles at the router.
func (h *TicketTypeHandler) CreateTicketType(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket_type.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	organizerID := c.GetString(middleware.ContextKeyUserID)
	if organizerID == "" {
		response.Unauthorized(c, "authentication required")
		return
	}

	eventID := c.Param("eventId")
	if eventID == "" {
		response.BadRequest(c, "event id required")
		return
	}

	var req dto.CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("name", req.Name),
		attribute.Int("quantity", req.Quantity),
	)

	tt, err := h.ticketTypeService.CreateTicketType(ctx, organizerID, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, tt)
}

// ListTicketTypes handles GET /events/:eventId/ticket-types
func (h *TicketTypeHandler) ListTicketTypes(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket_type.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("eventId")
	if eventID == "" {
		response.BadRequest(c, "event id required")
		return
	}

	types, err := h.ticketTypeService.ListTicketTypes(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}

	response.Success(c, types)
}

// GetTicketType handles GET /ticket-types/:id
func (h *TicketTypeHandler) GetTicketType(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket_type.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	ticketTypeID := c.Param("id")
	if ticketTypeID == "" {
		response.BadRequest(c, "ticket type id required")
		return
	}

	tt, err := h.ticketTypeService.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}

	response.Success(c, tt)
}

// DeleteTicketType handles DELETE /events/:eventId/ticket-types/:id.
// Restricted to organizer and admin roles at the router.
func (h *TicketTypeHandler) DeleteTicketType(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket_type.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	organizerID := c.GetString(middleware.ContextKeyUserID)
	if organizerID == "" {
		response.Unauthorized(c, "authentication required")
		return
	}

	eventID := c.Param("eventId")
	ticketTypeID := c.Param("id")
	if eventID == "" || ticketTypeID == "" {
		response.BadRequest(c, "event id and ticket type id required")
		return
	}

	if err := h.ticketTypeService.DeleteTicketType(ctx, organizerID, eventID, ticketTypeID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"deleted": true})
}
