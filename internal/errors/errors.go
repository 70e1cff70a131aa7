package errors

import "errors"

var ErrUnauthorized = errors.New("admin token is missing or invalid")
var ErrForbidden = errors.New("operation is forbidden for user")

// Booking admission and lifecycle errors. Handlers translate them with errors.Is.
var (
	ErrValidation        = errors.New("invalid input")
	ErrInvalidService    = errors.New("invalid service")
	ErrSlotTaken         = errors.New("time slot is not available")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("transition is not allowed for booking")
	ErrSettingsMissing   = errors.New("promptpay settings are not configured")
)
