package property

import "staybook/internal/pkg/apperr"

var (
	ErrNotFound          = apperr.NotFound("PROPERTY_NOT_FOUND", "Property not found")
	ErrForbidden         = apperr.Forbidden("FORBIDDEN", "You can only modify your own properties")
	ErrTypeRequired      = apperr.Validation("VALIDATION_ERROR", "property_type is required").WithDetails(map[string]string{"field": "property_type"})
	ErrInvalidType       = apperr.Validation("VALIDATION_ERROR", "property_type must be one of House, Flat, Apartment, Room").WithDetails(map[string]string{"field": "property_type"})
	ErrUnknownFacilities = apperr.Validation("UNKNOWN_FACILITIES", "One or more facilities do not exist")
	ErrTooManyImages     = apperr.Validation("TOO_MANY_IMAGES", "A property can have at most 10 images")
)
