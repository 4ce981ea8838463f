package dto

import "net/http"

// Error codes shared between the domain layer and the wire. Domain errors
// carry these codes directly; the HTTP layer only adds transport-level ones.

// Domain error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeValidation is used for invalid input data
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeInvalidUnitInput is used when a cartons/pieces pair is malformed
	ErrCodeInvalidUnitInput = "INVALID_UNIT_INPUT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is used when an idempotency key was already consumed
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	// ErrCodeInsufficientStock is used when stock is insufficient
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeTierUnavailable is used when a price tier is not set on an item
	ErrCodeTierUnavailable = "TIER_UNAVAILABLE"
	// ErrCodeReturnExceedsOriginal is used when a return exceeds the returnable quantity
	ErrCodeReturnExceedsOriginal = "RETURN_EXCEEDS_ORIGINAL"
	// ErrCodeOverpaymentNotAllowed is used when a payment exceeds the outstanding balance
	ErrCodeOverpaymentNotAllowed = "OVERPAYMENT_NOT_ALLOWED"
	// ErrCodeNegativeBalanceGuard is used when an operation would drive a balance below zero
	ErrCodeNegativeBalanceGuard = "NEGATIVE_BALANCE_GUARD"
)

// Transport error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when gateway identity is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks access to the resource
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeRequestTooLarge is used when a request body exceeds the size limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRateLimited is used when the rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:              http.StatusNotFound,
	ErrCodeAlreadyExists:         http.StatusConflict,
	ErrCodeValidation:            http.StatusBadRequest,
	ErrCodeInvalidUnitInput:      http.StatusBadRequest,
	ErrCodeConcurrencyConflict:   http.StatusConflict,
	ErrCodeDuplicateRequest:      http.StatusConflict,
	ErrCodeInsufficientStock:     http.StatusUnprocessableEntity,
	ErrCodeTierUnavailable:       http.StatusUnprocessableEntity,
	ErrCodeReturnExceedsOriginal: http.StatusUnprocessableEntity,
	ErrCodeOverpaymentNotAllowed: http.StatusUnprocessableEntity,
	ErrCodeNegativeBalanceGuard:  http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
