package dto

import "net/http"

// Error code constants shared across handlers.

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Input error codes
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInvalidJSON  = "INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUsernameTaken = "USERNAME_TAKEN"
	ErrCodeEmailTaken    = "EMAIL_TAKEN"
)

// Business rule error codes
const (
	ErrCodeEmptyQuote         = "EMPTY_QUOTE"
	ErrCodeInvalidQuoteStatus = "INVALID_QUOTE_STATUS"
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
)

// Rate limiting and upstream error codes
const (
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeUpstream    = "UPSTREAM_UNAVAILABLE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	"INVALID_USERNAME":  http.StatusBadRequest,
	"INVALID_EMAIL":     http.StatusBadRequest,
	"INVALID_PASSWORD":  http.StatusBadRequest,
	"INVALID_SORT":      http.StatusBadRequest,
	"INVALID_FILTER":    http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeUsernameTaken: http.StatusConflict,
	ErrCodeEmailTaken:    http.StatusConflict,

	ErrCodeEmptyQuote:         http.StatusUnprocessableEntity,
	ErrCodeInvalidQuoteStatus: http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable: http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
	ErrCodeUpstream:    http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
