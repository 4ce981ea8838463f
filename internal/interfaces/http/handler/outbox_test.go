package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shopledger/backend/internal/domain/shared"
)

type mockOutboxStatsSource struct {
	mock.Mock
}

func (m *mockOutboxStatsSource) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shared.OutboxStatus]int64), args.Error(1)
}

var _ OutboxStatsSource = (*mockOutboxStatsSource)(nil)

func setupOutboxHandlerTest(t *testing.T) (*gin.Engine, *mockOutboxStatsSource) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stats := new(mockOutboxStatsSource)

	router := gin.New()
	api := router.Group("/api/v1")
	NewOutboxHandler(stats).RegisterRoutes(api)

	return router, stats
}

func TestOutboxHandler_GetStats(t *testing.T) {
	t.Run("should report counts per delivery status", func(t *testing.T) {
		router, stats := setupOutboxHandlerTest(t)

		stats.On("CountByStatus", mock.Anything).Return(map[shared.OutboxStatus]int64{
			shared.OutboxStatusPending: 3,
			shared.OutboxStatusSent:    40,
			shared.OutboxStatusDead:    1,
		}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/system/outbox/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, float64(3), data["pending"])
		assert.Equal(t, float64(40), data["sent"])
		assert.Equal(t, float64(1), data["dead"])
		assert.Equal(t, float64(0), data["failed"])
		assert.Equal(t, float64(44), data["total"])

		stats.AssertExpectations(t)
	})

	t.Run("should return 500 when the store is unreachable", func(t *testing.T) {
		router, stats := setupOutboxHandlerTest(t)

		stats.On("CountByStatus", mock.Anything).Return(nil, assert.AnError)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/system/outbox/stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
