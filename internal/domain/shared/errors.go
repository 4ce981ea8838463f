package shared

import "fmt"

// DomainError represents a domain-level error with a stable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR with a formatted message
func NewValidationError(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists         = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation            = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrConcurrencyConflict   = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInsufficientStock     = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInvalidUnitInput      = NewDomainError("INVALID_UNIT_INPUT", "Invalid carton/piece input")
	ErrTierUnavailable       = NewDomainError("TIER_UNAVAILABLE", "Price tier is not set on this item")
	ErrReturnExceedsOriginal = NewDomainError("RETURN_EXCEEDS_ORIGINAL", "Return quantity exceeds the remaining returnable quantity")
	ErrOverpaymentNotAllowed = NewDomainError("OVERPAYMENT_NOT_ALLOWED", "Payment amount exceeds the outstanding balance")
	ErrNegativeBalanceGuard  = NewDomainError("NEGATIVE_BALANCE_GUARD", "Operation would drive the balance below zero")
	ErrDuplicateRequest      = NewDomainError("DUPLICATE_REQUEST", "Request with this idempotency key was already processed")
)
