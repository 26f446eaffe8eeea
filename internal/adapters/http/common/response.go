// Package common holds the shared types of the HTTP layer.
//
// Lives in its own package so handlers and the router package can both
// import it without a cycle.
package common

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/avelora/coinvault/internal/domain/errors"
)

// ============================================
// Standard API Response Format
// ============================================

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *APIMeta    `json:"meta,omitempty"`
	RequestID string      `json:"request_id"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIMeta carries pagination details for list responses.
type APIMeta struct {
	Limit  int   `json:"limit,omitempty"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// APIError is the error body of a failed response.
type APIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Fields     []FieldError           `json:"fields,omitempty"`
	RetryAfter int                    `json:"retry_after,omitempty"`
}

// FieldError pins a validation failure to one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ============================================
// Error Codes
// ============================================

const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeDuplicateRequest  = "DUPLICATE_REQUEST"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrCodeTooManyRequests   = "TOO_MANY_REQUESTS"
	ErrCodeUnavailable       = "SERVICE_UNAVAILABLE"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ============================================
// Request ID
// ============================================

const RequestIDKey = "X-Request-ID"

// GetRequestID returns the request id stored by the RequestID middleware.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}

// SetRequestID stores the request id in the context and echoes it as a header.
func SetRequestID(c *gin.Context, id string) {
	c.Set(RequestIDKey, id)
	c.Header(RequestIDKey, id)
}

// ============================================
// Response Helpers
// ============================================

// Success sends a successful response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Data:      data,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// SuccessWithMeta sends a successful response with pagination meta.
func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *APIMeta) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Data:      data,
		Meta:      meta,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// Error sends a failed response.
func Error(c *gin.Context, statusCode int, apiError *APIError) {
	c.JSON(statusCode, APIResponse{
		Success:   false,
		Error:     apiError,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// ============================================
// Error Response Helpers
// ============================================

// ValidationErrorResponse sends a 400 with field-level details.
func ValidationErrorResponse(c *gin.Context, fields []FieldError) {
	Error(c, http.StatusBadRequest, &APIError{
		Code:    ErrCodeValidation,
		Message: "Request validation failed",
		Fields:  fields,
	})
}

// NotFoundResponse sends a 404 for a missing resource.
func NotFoundResponse(c *gin.Context, resource string) {
	Error(c, http.StatusNotFound, &APIError{
		Code:    ErrCodeNotFound,
		Message: resource + " not found",
		Details: map[string]interface{}{
			"resource": resource,
		},
	})
}

// BadRequestResponse sends a 400 without field details.
func BadRequestResponse(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
	})
}

// TooManyRequestsResponse sends a 429 for rate limiting.
func TooManyRequestsResponse(c *gin.Context, retryAfter int) {
	Error(c, http.StatusTooManyRequests, &APIError{
		Code:       ErrCodeTooManyRequests,
		Message:    "Too many requests, please try again later",
		RetryAfter: retryAfter,
	})
}

// InternalErrorResponse sends a 500. The message must never leak internals.
func InternalErrorResponse(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, &APIError{
		Code:    ErrCodeInternal,
		Message: message,
	})
}

// ============================================
// Domain Error to HTTP Error Mapper
// ============================================

// HandleDomainError translates the domain error taxonomy onto HTTP.
//
//	InvalidArgument      -> 400
//	EntityNotFound       -> 404
//	IdempotencyConflict  -> 409 (new key or later retry required)
//	InsufficientFunds    -> 422 (request understood, balance says no)
//	Transient            -> 503 (safe to retry with the SAME key)
//	anything else        -> 500
func HandleDomainError(c *gin.Context, err error) {
	if domainerrors.IsValidationError(err) {
		if fields := extractFieldErrors(err); len(fields) > 0 {
			ValidationErrorResponse(c, fields)
			return
		}
		BadRequestResponse(c, err.Error())
		return
	}

	switch {
	case domainerrors.IsInsufficientFunds(err):
		Error(c, http.StatusUnprocessableEntity, &APIError{
			Code:    ErrCodeInsufficientFunds,
			Message: "Wallet balance does not cover the requested amount",
		})

	case domainerrors.IsIdempotencyConflict(err):
		Error(c, http.StatusConflict, &APIError{
			Code:    ErrCodeDuplicateRequest,
			Message: "Idempotency key is already claimed by another request",
			Details: map[string]interface{}{
				"retryable": false,
			},
		})

	case domainerrors.IsTransient(err):
		Error(c, http.StatusServiceUnavailable, &APIError{
			Code:       ErrCodeUnavailable,
			Message:    "Temporary storage contention, retry with the same idempotency key",
			RetryAfter: 1,
			Details: map[string]interface{}{
				"retryable": true,
			},
		})

	case domainerrors.IsNotFound(err):
		NotFoundResponse(c, "Resource")

	case domainerrors.IsInvalidArgument(err):
		BadRequestResponse(c, err.Error())

	default:
		InternalErrorResponse(c, "An unexpected error occurred")
	}
}

// extractFieldErrors pulls field-level details out of the error chain.
func extractFieldErrors(err error) []FieldError {
	var many domainerrors.ValidationErrors
	if errors.As(err, &many) {
		fields := make([]FieldError, 0, len(many))
		for _, v := range many {
			fields = append(fields, FieldError{Field: v.Field, Message: v.Message, Code: "invalid"})
		}
		return fields
	}

	var one domainerrors.ValidationError
	if errors.As(err, &one) {
		return []FieldError{{Field: one.Field, Message: one.Message, Code: "invalid"}}
	}
	return nil
}
