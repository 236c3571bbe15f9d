package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventease/eventease/internal/domain"
	"github.com/eventease/eventease/pkg/response"
)

// handleError maps a domain error to an HTTP status and a stable
// error code. Internal errors never leak their message to the caller.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		response.Error(c, http.StatusNotFound, "EVENT_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrTicketTypeNotFound):
		response.Error(c, http.StatusNotFound, "TICKET_TYPE_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		response.Error(c, http.StatusNotFound, "ORDER_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInsufficientInventory):
		response.Conflict(c, "INSUFFICIENT_INVENTORY", err.Error())
	case errors.Is(err, domain.ErrUserLimitExceeded):
		response.Conflict(c, "USER_LIMIT_EXCEEDED", err.Error())
	case errors.Is(err, domain.ErrEventNotApproved):
		response.Conflict(c, "EVENT_NOT_APPROVED", err.Error())
	case errors.Is(err, domain.ErrAlreadyCancelled):
		response.Conflict(c, "ALREADY_CANCELLED", err.Error())
	case errors.Is(err, domain.ErrCannotCancelCheckedIn):
		response.Conflict(c, "CANNOT_CANCEL_CHECKED_IN", err.Error())
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		response.Conflict(c, "ALREADY_CHECKED_IN", err.Error())
	case errors.Is(err, domain.ErrCannotCheckInCancelled):
		response.Conflict(c, "CANNOT_CHECK_IN_CANCELLED", err.Error())
	case errors.Is(err, domain.ErrOrderAlreadyCancelled):
		response.Conflict(c, "ALREADY_CANCELLED", err.Error())
	case errors.Is(err, domain.ErrTicketTypeInUse):
		response.Conflict(c, "TICKET_TYPE_IN_USE", err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c)
	}
}
