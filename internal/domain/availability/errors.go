package availability

import "staybook/internal/pkg/apperr"

var (
	ErrMissingFields    = apperr.Validation("INVALID_REQUEST", "property_id, check_in_date and check_out_date are required")
	ErrInvalidDate      = apperr.Validation("INVALID_REQUEST", "dates must be formatted as YYYY-MM-DD")
	ErrStartInPast      = apperr.Validation("INVALID_DATE_RANGE", "Check-in date cannot be in the past")
	ErrEndBeforeStart   = apperr.Validation("INVALID_DATE_RANGE", "Check-out date must be after check-in date")
	ErrRangeTooLong     = apperr.Validation("INVALID_DATE_RANGE", "Booking cannot exceed 365 days")
	ErrInvalidGuests    = apperr.Validation("INVALID_REQUEST", "guests must be greater than 0")
	ErrPropertyNotFound = apperr.NotFound("PROPERTY_NOT_FOUND", "Property not found")
	ErrCapacityExceeded = apperr.Validation("CAPACITY_EXCEEDED", "Property cannot accommodate the requested number of guests")
)
