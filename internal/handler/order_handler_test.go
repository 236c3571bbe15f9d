package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/eventease/eventease/internal/domain"
	"github.com/eventease/eventease/internal/dto"
	"github.com/eventease/eventease/pkg/middleware"
)

// MockOrderService is a mock implementation of OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID, eventID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	args := m.Called(ctx, userID, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.OrderResponse), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID, userID string) (*dto.OrderResponse, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.OrderResponse), args.Error(1)
}

func setupOrderTestRouter(svc *MockOrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextKeyUserID, userID)
		}
		c.Next()
	})

	h := NewOrderHandler(svc)
	router.POST("/events/:eventId/orders", h.CreateOrder)
	router.GET("/orders/:id", h.GetOrder)
	router.DELETE("/orders/:id", h.CancelOrder)
	return router
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	t.Run("successful order returns 201", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CreateOrder", mock.Anything, "user-001", "event-001", mock.Anything).
			Return(&dto.OrderResponse{
				ID:        "order-001",
				Reference: "EO-ABCDEF2345",
				Status:    "confirmed",
			}, nil)

		router := setupOrderTestRouter(svc)
		body, _ := json.Marshal(dto.CreateOrderRequest{
			Items: []dto.OrderLineRequest{
				{TicketTypeID: "tt-001", Quantity: 2},
				{TicketTypeID: "tt-002", Quantity: 1},
			},
		})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/orders", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("empty items returns 400 before hitting service", func(t *testing.T) {
		svc := new(MockOrderService)
		router := setupOrderTestRouter(svc)

		body, _ := json.Marshal(dto.CreateOrderRequest{Items: []dto.OrderLineRequest{}})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/orders", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "CreateOrder")
	})

	t.Run("missing user returns 401", func(t *testing.T) {
		svc := new(MockOrderService)
		router := setupOrderTestRouter(svc)

		body, _ := json.Marshal(dto.CreateOrderRequest{
			Items: []dto.OrderLineRequest{{TicketTypeID: "tt-001", Quantity: 1}},
		})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/orders", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("one line over capacity fails the whole order with 409", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CreateOrder", mock.Anything, "user-001", "event-001", mock.Anything).
			Return(nil, domain.ErrInsufficientInventory)

		router := setupOrderTestRouter(svc)
		body, _ := json.Marshal(dto.CreateOrderRequest{
			Items: []dto.OrderLineRequest{
				{TicketTypeID: "tt-001", Quantity: 1},
				{TicketTypeID: "tt-002", Quantity: 100},
			},
		})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/orders", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_INVENTORY")
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	t.Run("stranger's order returns 404", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("GetOrder", mock.Anything, "order-001", "user-002").
			Return(nil, domain.ErrOrderNotFound)

		router := setupOrderTestRouter(svc)
		req := httptest.NewRequest(http.MethodGet, "/orders/order-001", nil)
		req.Header.Set("X-User-ID", "user-002")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	t.Run("cancel returns 200", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CancelOrder", mock.Anything, "order-001", "user-001").
			Return(&dto.OrderResponse{ID: "order-001", Status: "cancelled"}, nil)

		router := setupOrderTestRouter(svc)
		req := httptest.NewRequest(http.MethodDelete, "/orders/order-001", nil)
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("double cancel returns 409", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CancelOrder", mock.Anything, "order-001", "user-001").
			Return(nil, domain.ErrAlreadyCancelled)

		router := setupOrderTestRouter(svc)
		req := httptest.NewRequest(http.MethodDelete, "/orders/order-001", nil)
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ALREADY_CANCELLED")
	})
}
