package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. Handlers map these to HTTP statuses
// via StatusForError.
const (
	ErrCodeInvalidToken    = "INVALID_TOKEN"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNotAllowed      = "NOT_ALLOWED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeDataUnavailable = "DATA_UNAVAILABLE"
)

// AppError is the application-level error type. Code identifies the error
// class, Message is safe to return to clients, Err holds the underlying
// cause and is logged but never serialized.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError returns a NOT_FOUND error for the given resource and ID.
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s with id %v not found", resource, id),
	}
}

// NewNotFoundMessage returns a NOT_FOUND error with a custom message.
func NewNotFoundMessage(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NewValidationError returns a VALIDATION_ERROR with the given message.
func NewValidationError(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// NewUnauthorizedError returns an UNAUTHORIZED error with the given message.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

// NewNotAllowedError returns a NOT_ALLOWED error with the given message.
func NewNotAllowedError(message string) *AppError {
	return &AppError{Code: ErrCodeNotAllowed, Message: message}
}

// NewConflictError returns a CONFLICT error with the given message.
func NewConflictError(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// NewInvalidTokenError returns an INVALID_TOKEN error with the given message.
func NewInvalidTokenError(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidToken, Message: message}
}

// NewInternalError wraps a storage or infrastructure failure. The cause is
// kept for logging; clients only ever see the generic message.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeDataUnavailable,
		Message: "Database temporarily unavailable",
		Err:     err,
	}
}

// StatusForError maps an error to an HTTP status code. Non-AppError values
// map to 500.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case ErrCodeInvalidToken:
		return fiber.StatusBadRequest
	case ErrCodeUnauthorized:
		return fiber.StatusUnauthorized
	case ErrCodeNotAllowed:
		return fiber.StatusForbidden
	case ErrCodeNotFound:
		return fiber.StatusNotFound
	case ErrCodeConflict:
		return fiber.StatusConflict
	case ErrCodeValidation:
		return fiber.StatusUnprocessableEntity
	case ErrCodeDataUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes a JSON error response. AppError messages are
// returned verbatim; anything else is replaced by a generic message so
// internals never leak.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(status).JSON(fiber.Map{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

// RespondWithAppError writes the response using the status derived from the
// error itself.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusForError(err), err)
}
