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

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, userID, eventID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	args := m.Called(ctx, userID, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookingResponse), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookingResponse), args.Error(1)
}

func (m *MockBookingService) GetBookingByReference(ctx context.Context, reference, userID string) (*dto.BookingResponse, error) {
	args := m.Called(ctx, reference, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookingResponse), args.Error(1)
}

func (m *MockBookingService) ListUserBookings(ctx context.Context, userID string, page, pageSize int) ([]*dto.BookingResponse, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.BookingResponse), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*dto.CancelBookingResponse, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CancelBookingResponse), args.Error(1)
}

func (m *MockBookingService) CheckInBooking(ctx context.Context, eventID, bookingID string) (*dto.CheckInResponse, error) {
	args := m.Called(ctx, eventID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CheckInResponse), args.Error(1)
}

func setupBookingTestRouter(svc *MockBookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextKeyUserID, userID)
		}
		c.Next()
	})

	h := NewBookingHandler(svc)
	router.POST("/events/:eventId/bookings", h.CreateBooking)
	router.GET("/bookings", h.ListBookings)
	router.GET("/bookings/:id", h.GetBooking)
	router.DELETE("/bookings/:id", h.CancelBooking)
	router.POST("/events/:eventId/bookings/:bookingId/check-in", h.CheckIn)
	return router
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	t.Run("successful booking returns 201", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CreateBooking", mock.Anything, "user-001", "event-001", mock.Anything).
			Return(&dto.BookingResponse{
				ID:        "booking-001",
				Reference: "EE-ABCDEF2345",
				Status:    "confirmed",
			}, nil)

		router := setupBookingTestRouter(svc)
		body, _ := json.Marshal(dto.CreateBookingRequest{TicketTypeID: "tt-001", Quantity: 2})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/bookings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing user returns 401", func(t *testing.T) {
		svc := new(MockBookingService)
		router := setupBookingTestRouter(svc)

		body, _ := json.Marshal(dto.CreateBookingRequest{TicketTypeID: "tt-001", Quantity: 2})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/bookings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		svc := new(MockBookingService)
		router := setupBookingTestRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/events/event-001/bookings", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("insufficient inventory returns 409", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CreateBooking", mock.Anything, "user-001", "event-001", mock.Anything).
			Return(nil, domain.ErrInsufficientInventory)

		router := setupBookingTestRouter(svc)
		body, _ := json.Marshal(dto.CreateBookingRequest{TicketTypeID: "tt-001", Quantity: 5})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/bookings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "INSUFFICIENT_INVENTORY")
	})

	t.Run("user limit returns 409", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CreateBooking", mock.Anything, "user-001", "event-001", mock.Anything).
			Return(nil, domain.ErrUserLimitExceeded)

		router := setupBookingTestRouter(svc)
		body, _ := json.Marshal(dto.CreateBookingRequest{TicketTypeID: "tt-001", Quantity: 5})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/bookings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "USER_LIMIT_EXCEEDED")
	})

	t.Run("internal failure returns 500 without details", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CreateBooking", mock.Anything, "user-001", "event-001", mock.Anything).
			Return(nil, domain.ErrReferenceGenerationFailed)

		router := setupBookingTestRouter(svc)
		body, _ := json.Marshal(dto.CreateBookingRequest{TicketTypeID: "tt-001", Quantity: 1})
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/bookings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "reference")
	})
}

func TestBookingHandler_GetBooking(t *testing.T) {
	t.Run("found returns 200", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("GetBooking", mock.Anything, "booking-001", "user-001").
			Return(&dto.BookingResponse{ID: "booking-001", Status: "confirmed"}, nil)

		router := setupBookingTestRouter(svc)
		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-001", nil)
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("someone else's booking returns 404", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("GetBooking", mock.Anything, "booking-001", "user-002").
			Return(nil, domain.ErrBookingNotFound)

		router := setupBookingTestRouter(svc)
		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-001", nil)
		req.Header.Set("X-User-ID", "user-002")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookingHandler_CancelBooking(t *testing.T) {
	t.Run("cancel returns 200", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CancelBooking", mock.Anything, "booking-001", "user-001").
			Return(&dto.CancelBookingResponse{BookingID: "booking-001", Status: "cancelled"}, nil)

		router := setupBookingTestRouter(svc)
		req := httptest.NewRequest(http.MethodDelete, "/bookings/booking-001", nil)
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("double cancel returns 409", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CancelBooking", mock.Anything, "booking-001", "user-001").
			Return(nil, domain.ErrAlreadyCancelled)

		router := setupBookingTestRouter(svc)
		req := httptest.NewRequest(http.MethodDelete, "/bookings/booking-001", nil)
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ALREADY_CANCELLED")
	})

	t.Run("cancel after check-in returns 409", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CancelBooking", mock.Anything, "booking-001", "user-001").
			Return(nil, domain.ErrCannotCancelCheckedIn)

		router := setupBookingTestRouter(svc)
		req := httptest.NewRequest(http.MethodDelete, "/bookings/booking-001", nil)
		req.Header.Set("X-User-ID", "user-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "CANNOT_CANCEL_CHECKED_IN")
	})
}

func TestBookingHandler_CheckIn(t *testing.T) {
	t.Run("check-in returns 200", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CheckInBooking", mock.Anything, "event-001", "booking-001").
			Return(&dto.CheckInResponse{BookingID: "booking-001", Status: "checked_in"}, nil)

		router := setupBookingTestRouter(svc)
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/bookings/booking-001/check-in", nil)
		req.Header.Set("X-User-ID", "organizer-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("double check-in returns 409", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("CheckInBooking", mock.Anything, "event-001", "booking-001").
			Return(nil, domain.ErrAlreadyCheckedIn)

		router := setupBookingTestRouter(svc)
		req := httptest.NewRequest(http.MethodPost, "/events/event-001/bookings/booking-001/check-in", nil)
		req.Header.Set("X-User-ID", "organizer-001")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ALREADY_CHECKED_IN")
	})
}

func TestBookingHandler_ListBookings(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("ListUserBookings", mock.Anything, "user-001", 2, 5).
		Return([]*dto.BookingResponse{{ID: "b1"}, {ID: "b2"}}, nil)

	router := setupBookingTestRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/bookings?page=2&page_size=5", nil)
	req.Header.Set("X-User-ID", "user-001")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
