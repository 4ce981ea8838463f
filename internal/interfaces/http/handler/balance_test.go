package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopledger/backend/internal/application/ledger"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
)

func setupBalanceHandlerTest(t *testing.T) (*gin.Engine, *MockTransactionService, *MockQueryService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.SetupValidator())

	engine := new(MockTransactionService)
	queries := new(MockQueryService)

	router := gin.New()
	router.Use(testIdentity(testTenantID, testUserID))
	api := router.Group("/api/v1")
	NewBalanceHandler(engine, queries).RegisterRoutes(api)

	return router, engine, queries
}

func TestBalanceHandler_Override(t *testing.T) {
	t.Run("should override balance successfully", func(t *testing.T) {
		router, engine, _ := setupBalanceHandlerTest(t)

		customerID := uuid.New()
		resp := &ledger.BalanceOverrideResponse{
			EntryID:       uuid.New(),
			EntityKind:    "customer",
			EntityID:      customerID,
			BalanceBefore: decimal.NewFromInt(120),
			BalanceAfter:  decimal.NewFromInt(100),
			CreatedAt:     time.Now(),
		}
		engine.On("OverrideBalance", mock.Anything, testTenantID, testUserID, mock.AnythingOfType("ledger.OverrideBalanceRequest")).
			Return(resp, nil)

		reqBody := ledger.OverrideBalanceRequest{
			EntityKind: "customer",
			EntityID:   customerID,
			NewBalance: decimal.NewFromInt(100),
			Reason:     "Agreed write-down after dispute",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/ledger/balance/override", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "120", data["balance_before"])
		assert.Equal(t, "100", data["balance_after"])

		engine.AssertExpectations(t)
	})

	t.Run("should reject missing reason", func(t *testing.T) {
		router, engine, _ := setupBalanceHandlerTest(t)

		reqBody := map[string]interface{}{
			"entity_kind": "customer",
			"entity_id":   uuid.New().String(),
			"new_balance": "100",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/ledger/balance/override", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "reason")
		engine.AssertNotCalled(t, "OverrideBalance")
	})

	t.Run("should allow a negative target balance", func(t *testing.T) {
		router, engine, _ := setupBalanceHandlerTest(t)

		// Credit in the entity's favour is stored as a negative balance.
		engine.On("OverrideBalance", mock.Anything, testTenantID, testUserID, mock.MatchedBy(func(req ledger.OverrideBalanceRequest) bool {
			return req.NewBalance.Equal(decimal.NewFromInt(-50))
		})).Return(&ledger.BalanceOverrideResponse{
			EntryID:       uuid.New(),
			EntityKind:    "customer",
			EntityID:      uuid.New(),
			BalanceBefore: decimal.NewFromInt(10),
			BalanceAfter:  decimal.NewFromInt(-50),
			CreatedAt:     time.Now(),
		}, nil)

		reqBody := ledger.OverrideBalanceRequest{
			EntityKind: "customer",
			EntityID:   uuid.New(),
			NewBalance: decimal.NewFromInt(-50),
			Reason:     "Prepayment received outside the ledger",
		}
		body, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/ledger/balance/override", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		engine.AssertExpectations(t)
	})
}

func TestBalanceHandler_Get(t *testing.T) {
	t.Run("should return entity balance", func(t *testing.T) {
		router, _, queries := setupBalanceHandlerTest(t)

		customerID := uuid.New()
		resp := &ledger.EntityBalanceResponse{
			EntityKind: "customer",
			EntityID:   customerID,
			Code:       "CUST-001",
			Name:       "Corner Shop",
			Balance:    decimal.NewFromInt(80),
			UpdatedAt:  time.Now(),
			RecentEntries: []ledger.BalanceEntryResponse{
				{ID: uuid.New(), EntityKind: "customer", EntityID: customerID, EntryType: "CREDIT_SALE", Delta: decimal.NewFromInt(80)},
			},
		}
		queries.On("GetEntityBalance", mock.Anything, testTenantID, "customer", customerID).Return(resp, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/ledger/balance/customer/"+customerID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "80", data["balance"])
		assert.Len(t, data["recent_entries"].([]interface{}), 1)

		queries.AssertExpectations(t)
	})

	t.Run("should verify balance against the audit trail", func(t *testing.T) {
		router, _, queries := setupBalanceHandlerTest(t)

		supplierID := uuid.New()
		drift := &ledger.BalanceDriftResponse{
			EntityKind: "supplier",
			EntityID:   supplierID,
			Balance:    decimal.NewFromInt(200),
			EntrySum:   decimal.NewFromInt(180),
			Drift:      decimal.NewFromInt(20),
		}
		queries.On("CheckBalanceDrift", mock.Anything, testTenantID, "supplier", supplierID).Return(drift, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/ledger/balance/supplier/"+supplierID.String()+"?verify=true", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "20", data["drift"])

		queries.AssertNotCalled(t, "GetEntityBalance")
	})

	t.Run("should reject unknown entity kind", func(t *testing.T) {
		router, _, queries := setupBalanceHandlerTest(t)

		// Kind validation happens in the application layer.
		entityID := uuid.New()
		queries.On("GetEntityBalance", mock.Anything, testTenantID, "vendor", entityID).
			Return(nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown entity kind"))

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/ledger/balance/vendor/"+entityID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject malformed entity ID", func(t *testing.T) {
		router, _, queries := setupBalanceHandlerTest(t)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/ledger/balance/customer/xyz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		queries.AssertNotCalled(t, "GetEntityBalance")
	})
}

func TestBalanceHandler_ListEntries(t *testing.T) {
	t.Run("should list balance entries with pagination meta", func(t *testing.T) {
		router, _, queries := setupBalanceHandlerTest(t)

		customerID := uuid.New()
		entries := []ledger.BalanceEntryResponse{
			{ID: uuid.New(), EntityKind: "customer", EntityID: customerID, EntryType: "CREDIT_SALE", Delta: decimal.NewFromInt(80)},
			{ID: uuid.New(), EntityKind: "customer", EntityID: customerID, EntryType: "PAYMENT", Delta: decimal.NewFromInt(-30)},
		}
		queries.On("ListBalanceEntries", mock.Anything, testTenantID, "customer", customerID, mock.MatchedBy(func(f ledger.EntryListFilter) bool {
			return f.Page == 1 && f.PageSize == 20
		})).Return(entries, int64(2), nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/ledger/balance/customer/"+customerID.String()+"/entries", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response["data"].([]interface{}), 2)
		meta := response["meta"].(map[string]interface{})
		assert.Equal(t, float64(2), meta["total"])

		queries.AssertExpectations(t)
	})

	t.Run("should return 404 for unknown entity", func(t *testing.T) {
		router, _, queries := setupBalanceHandlerTest(t)

		entityID := uuid.New()
		queries.On("ListBalanceEntries", mock.Anything, testTenantID, "supplier", entityID, mock.AnythingOfType("ledger.EntryListFilter")).
			Return(nil, int64(0), shared.NewDomainError("NOT_FOUND", "Supplier not found"))

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/ledger/balance/supplier/"+entityID.String()+"/entries", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
