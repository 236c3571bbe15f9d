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

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder handles POST /events/:eventId/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString(middleware.ContextKeyUserID)
	if userID == "" {
		response.Unauthorized(c, "authentication required")
		return
	}

	eventID := c.Param("eventId")
	if eventID == "" {
		response.BadRequest(c, "event id required")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
		attribute.Int("line_count", len(req.Items)),
	)

	order, err := h.orderService.CreateOrder(ctx, userID, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("order_id", order.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, order)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString(middleware.ContextKeyUserID)
	if userID == "" {
		response.Unauthorized(c, "authentication required")
		return
	}

	orderID := c.Param("id")
	if orderID == "" {
		response.BadRequest(c, "order id required")
		return
	}

	order, err := h.orderService.GetOrder(ctx, orderID, userID)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}

	response.Success(c, order)
}

// CancelOrder handles DELETE /orders/:id
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString(middleware.ContextKeyUserID)
	if userID == "" {
		response.Unauthorized(c, "authentication required")
		return
	}

	orderID := c.Param("id")
	if orderID == "" {
		response.BadRequest(c, "order id required")
		return
	}

	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := h.orderService.CancelOrder(ctx, orderID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, order)
}
