package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedGin(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.Use(GinMiddleware(zap.New(core)))
	return router, logs
}

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestGinMiddleware(t *testing.T) {
	t.Run("should log a successful request at info", func(t *testing.T) {
		router, logs := newObservedGin(t)
		router.GET("/items", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items?page=2", nil))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.Equal(t, "HTTP Request", entry.Message)

		fields := fieldMap(entry)
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/items", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "page=2", fields["query"])
	})

	t.Run("should log client errors at warn", func(t *testing.T) {
		router, logs := newObservedGin(t)
		router.GET("/missing", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{})
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("should log server errors at error", func(t *testing.T) {
		router, logs := newObservedGin(t)
		router.GET("/broken", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{})
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
	})

	t.Run("should include the tenant resolved mid-chain", func(t *testing.T) {
		router, logs := newObservedGin(t)
		router.GET("/scoped", func(c *gin.Context) {
			c.Set("tenant_id", "tenant-42")
			c.JSON(http.StatusOK, gin.H{})
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scoped", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "tenant-42", fieldMap(logs.All()[0])["tenant_id"])
	})

	t.Run("should collect gin errors", func(t *testing.T) {
		router, logs := newObservedGin(t)
		router.GET("/errs", func(c *gin.Context) {
			_ = c.Error(assert.AnError)
			c.JSON(http.StatusOK, gin.H{})
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/errs", nil))

		require.Equal(t, 1, logs.Len())
		fields := fieldMap(logs.All()[0])
		require.Contains(t, fields, "errors")
	})
}

func TestRecovery(t *testing.T) {
	t.Run("should convert a panic into a 500 response", func(t *testing.T) {
		router, logs := newObservedGin(t)
		router.GET("/panic", func(c *gin.Context) {
			panic("stock ledger corrupted")
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")

		var recovered bool
		for _, entry := range logs.All() {
			if entry.Message == "Panic recovered" {
				recovered = true
				assert.Equal(t, zapcore.ErrorLevel, entry.Level)
			}
		}
		assert.True(t, recovered)
	})

	t.Run("should not interfere with normal requests", func(t *testing.T) {
		router, _ := newObservedGin(t)
		router.GET("/fine", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fine", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetGinLogger(t *testing.T) {
	t.Run("should return the request-scoped logger", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		scoped := zap.NewNop().With(zap.String("request_id", "abc"))
		c.Set(ginLoggerKey, scoped)

		assert.Same(t, scoped, GetGinLogger(c))
	})

	t.Run("should fall back to a no-op logger", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.NotNil(t, GetGinLogger(c))
	})
}
