package booking

import "staybook/internal/pkg/apperr"

var (
	ErrNotFound          = apperr.NotFound("BOOKING_NOT_FOUND", "Booking not found")
	ErrForbidden         = apperr.Forbidden("FORBIDDEN", "You are not allowed to access this booking")
	ErrSelfBooking       = apperr.Forbidden("SELF_BOOKING", "You cannot book your own property")
	ErrConflict          = apperr.Conflict("BOOKING_CONFLICT", "Property is not available for the selected dates")
	ErrInvalidStatus     = apperr.Validation("INVALID_STATUS", "status must be one of Confirmed, Cancelled, Completed")
	ErrInvalidTransition = apperr.Conflict("INVALID_STATUS_TRANSITION", "Booking cannot move to the requested status")
	ErrHostOnly          = apperr.Forbidden("FORBIDDEN", "Only the host can confirm or complete bookings")
	ErrCancelForbidden   = apperr.Forbidden("FORBIDDEN", "Unauthorized to cancel this booking")
)
