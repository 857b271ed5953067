package errors

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskforge-api/internal/constants"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeValidation = "VALIDATION_ERROR"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is a business-rule failure carrying the HTTP status it maps to
// and a message that is safe to show to clients.
type APIError struct {
	Status  int         `json:"-"`
	Success bool        `json:"success"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Is matches APIErrors by status and code so that sentinel errors survive
// being copied with WithDetails.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Code == t.Code && e.Message == t.Message
}

// WithDetails returns a copy of the error carrying details.
func (e *APIError) WithDetails(details interface{}) *APIError {
	clone := *e
	clone.Details = details
	return &clone
}

// NewAPIError creates a new APIError
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// NotFoundError reports that a referenced resource does not resolve.
func NotFoundError(message string) *APIError {
	return NewAPIError(http.StatusNotFound, ErrCodeNotFound, message)
}

// ForbiddenError reports an authorization denial.
func ForbiddenError(message string) *APIError {
	return NewAPIError(http.StatusForbidden, ErrCodeForbidden, message)
}

// ValidationError reports violated field constraints.
func ValidationError(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrCodeValidation, message)
}

// ConflictError reports a duplicate unique field.
func ConflictError(message string) *APIError {
	return NewAPIError(http.StatusConflict, ErrCodeConflict, message)
}

// UnauthorizedError reports a missing or invalid session.
func UnauthorizedError(message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// ServiceUnavailableError reports a disabled or unreachable collaborator.
func ServiceUnavailableError(message string) *APIError {
	return NewAPIError(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// Predefined errors
var (
	ErrUnauthorized  = UnauthorizedError("Not authenticated. Please login.")
	ErrInvalidInput  = ValidationError("Invalid request body")
	ErrInternalError = NewAPIError(http.StatusInternalServerError, ErrCodeInternalError, "Internal server error")
)

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err *APIError) {
	body := *err
	body.Success = false
	c.JSON(err.Status, body)
}

// Respond writes err as the single response for the request. Typed errors
// are sent as-is; anything else is logged and hidden behind a generic 500.
func Respond(c *gin.Context, err error) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		RespondWithError(c, apiErr)
		return
	}

	loggerFrom(c).Error("request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.String("error", err.Error()),
	)
	RespondWithError(c, ErrInternalError)
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = ErrUnauthorized.Message
	}
	RespondWithError(c, UnauthorizedError(message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, ForbiddenError(message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = ErrInvalidInput.Message
	}
	RespondWithError(c, ValidationError(message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = ErrInternalError.Message
	}
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrCodeInternalError, message))
}

func loggerFrom(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(constants.ContextKeyLogger); ok {
		if logger, ok := v.(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}
