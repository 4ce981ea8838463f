package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var domainCodes = []string{
	ErrCodeNotFound,
	ErrCodeAlreadyExists,
	ErrCodeValidation,
	ErrCodeInvalidUnitInput,
	ErrCodeConcurrencyConflict,
	ErrCodeDuplicateRequest,
	ErrCodeInsufficientStock,
	ErrCodeTierUnavailable,
	ErrCodeReturnExceedsOriginal,
	ErrCodeOverpaymentNotAllowed,
	ErrCodeNegativeBalanceGuard,
}

var transportCodes = []string{
	ErrCodeBadRequest,
	ErrCodeUnauthorized,
	ErrCodeForbidden,
	ErrCodeRequestTooLarge,
	ErrCodeRateLimited,
	ErrCodeInternal,
}

func TestGetHTTPStatus(t *testing.T) {
	t.Run("should map every known code to a status", func(t *testing.T) {
		for _, code := range append(append([]string{}, domainCodes...), transportCodes...) {
			status, ok := ErrorCodeHTTPStatus[code]
			require.True(t, ok, "code %s has no status mapping", code)
			assert.Equal(t, status, GetHTTPStatus(code))
		}
	})

	t.Run("should map business rule violations to 422", func(t *testing.T) {
		for _, code := range []string{
			ErrCodeInsufficientStock,
			ErrCodeTierUnavailable,
			ErrCodeReturnExceedsOriginal,
			ErrCodeOverpaymentNotAllowed,
			ErrCodeNegativeBalanceGuard,
		} {
			assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(code), code)
		}
	})

	t.Run("should map conflicts to 409", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeConcurrencyConflict))
		assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeDuplicateRequest))
		assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeAlreadyExists))
	})

	t.Run("should map malformed input to 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(ErrCodeValidation))
		assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(ErrCodeInvalidUnitInput))
		assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(ErrCodeBadRequest))
	})

	t.Run("should fall back to 500 for unknown codes", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("NO_SUCH_CODE"))
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(""))
	})
}

func TestErrorResponses(t *testing.T) {
	t.Run("should stamp the error with code, message and time", func(t *testing.T) {
		before := time.Now()
		resp := NewErrorResponse(ErrCodeNotFound, "sale not found")

		assert.False(t, resp.Success)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "sale not found", resp.Error.Message)
		assert.False(t, resp.Error.Timestamp.Before(before))
		assert.False(t, resp.Error.Timestamp.After(time.Now()))
	})

	t.Run("should carry the request id when given", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeConcurrencyConflict, "stale version", "req-123")

		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-123", resp.Error.RequestID)
	})

	t.Run("should attach field level validation details", func(t *testing.T) {
		resp := NewValidationErrorResponse("validation failed", "req-789", []ValidationDetail{
			{Field: "payment_type", Message: "must be CASH or CREDIT"},
			{Field: "lines", Message: "at least one line is required"},
		})

		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "payment_type", resp.Error.Details[0].Field)
	})

	t.Run("should survive a trip through JSON", func(t *testing.T) {
		data, err := json.Marshal(NewErrorResponseWithRequestID(ErrCodeTierUnavailable, "no wholesale price for item", "req-test"))
		require.NoError(t, err)

		var decoded Response
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.NotNil(t, decoded.Error)
		assert.Equal(t, ErrCodeTierUnavailable, decoded.Error.Code)
		assert.Equal(t, "no wholesale price for item", decoded.Error.Message)
		assert.Equal(t, "req-test", decoded.Error.RequestID)
	})
}

func TestSuccessResponses(t *testing.T) {
	t.Run("should wrap data without meta", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"name": "crate of cola"})

		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
		assert.Nil(t, resp.Error)
		assert.Nil(t, resp.Meta)
	})

	t.Run("should compute pagination meta", func(t *testing.T) {
		tests := []struct {
			name       string
			total      int64
			pageSize   int
			wantPages  int
			wantSize   int
		}{
			{"even pages", 100, 10, 10, 10},
			{"partial last page", 101, 10, 11, 10},
			{"empty result", 0, 10, 0, 10},
			{"single short page", 9, 10, 1, 10},
			{"exactly one page", 10, 10, 1, 10},
			{"zero page size defaults", 100, 0, 5, 20},
			{"negative page size defaults", 100, -1, 5, 20},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
				require.NotNil(t, resp.Meta)
				assert.Equal(t, tt.wantPages, resp.Meta.TotalPages)
				assert.Equal(t, tt.wantSize, resp.Meta.PageSize)
				assert.Equal(t, tt.total, resp.Meta.Total)
			})
		}
	})
}
