package user

import "staybook/internal/pkg/apperr"

var (
	ErrNotFound           = apperr.NotFound("USER_NOT_FOUND", "User not found")
	ErrEmailExists        = apperr.Conflict("EMAIL_EXISTS", "This email is already registered")
	ErrInvalidCredentials = apperr.Unauthorized("INVALID_CREDENTIALS", "Email or password is incorrect")
	ErrWrongPassword      = apperr.Validation("INVALID_PASSWORD", "Current password is incorrect").WithDetails(map[string]string{"field": "current_password"})
	ErrActiveBookings     = apperr.Conflict("ACTIVE_BOOKINGS", "Cannot delete account while your properties have active bookings")
	ErrAvatarMissing      = apperr.Validation("VALIDATION_ERROR", "profile_image file is required").WithDetails(map[string]string{"field": "profile_image"})
)
