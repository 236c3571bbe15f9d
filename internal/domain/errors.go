package domain

import "errors"

// Domain errors
var (
	// Lookup errors
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrOrderNotFound      = errors.New("order not found")

	// Validation errors
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidEventID    = errors.New("invalid event id")
	ErrInvalidName       = errors.New("name is required")
	ErrInvalidPrice      = errors.New("price cannot be negative")
	ErrInvalidCapacity   = errors.New("capacity must be greater than zero")
	ErrEventNotApproved  = errors.New("event is not approved for sale")
	ErrEmptyOrder        = errors.New("order must contain at least one item")

	// Inventory errors
	ErrInsufficientInventory = errors.New("insufficient tickets available")
	ErrUserLimitExceeded     = errors.New("per-user ticket limit exceeded")

	// Lifecycle errors
	ErrAlreadyCancelled       = errors.New("booking already cancelled")
	ErrCannotCancelCheckedIn  = errors.New("cannot cancel a checked-in booking")
	ErrAlreadyCheckedIn       = errors.New("booking already checked in")
	ErrCannotCheckInCancelled = errors.New("cannot check in a cancelled booking")
	ErrOrderAlreadyCancelled  = errors.New("order already cancelled")
	ErrTicketTypeInUse        = errors.New("ticket type has bookings and cannot be deleted")

	// Internal errors
	ErrReferenceGenerationFailed = errors.New("failed to generate a unique reference")
	ErrNegativeInventory         = errors.New("inventory release would drive sold count below zero")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketTypeNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrEmptyOrder)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInsufficientInventory) ||
		errors.Is(err, ErrUserLimitExceeded) ||
		errors.Is(err, ErrEventNotApproved) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrCannotCancelCheckedIn) ||
		errors.Is(err, ErrAlreadyCheckedIn) ||
		errors.Is(err, ErrCannotCheckInCancelled) ||
		errors.Is(err, ErrOrderAlreadyCancelled) ||
		errors.Is(err, ErrTicketTypeInUse)
}

// IsInternalError checks if the error indicates a defect rather than
// a rejectable request. These must never be surfaced as caller mistakes.
func IsInternalError(err error) bool {
	return errors.Is(err, ErrReferenceGenerationFailed) ||
		errors.Is(err, ErrNegativeInventory)
}
