// HTTP-level flows through the real middleware chain, router and
// handlers, backed by the same engine and database as the engine flows.
package integration

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopledger/backend/internal/application/ledger"
	"github.com/shopledger/backend/internal/interfaces/http/handler"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
	"github.com/shopledger/backend/internal/interfaces/http/router"
	"github.com/shopledger/backend/tests/testutil"
)

// apiStack mounts the request ID and gateway trust middleware plus the
// versioned router over a full engine setup, the way the server wires them.
type apiStack struct {
	*ledgerFlowSetup
	HTTP *gin.Engine
}

func newAPIStack(t *testing.T) *apiStack {
	t.Helper()

	flow := newLedgerFlowSetup(t)

	require.NoError(t, middleware.SetupValidator())

	ginEngine := gin.New()
	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(middleware.GatewayTrust(middleware.TrustConfig{
		Mode:      middleware.TrustModeHeaders,
		SkipPaths: []string{"/api/v1/system/ping"},
		Logger:    zap.NewNop(),
	}))

	r := router.NewRouter(ginEngine, router.WithAPIVersion("v1"))
	r.Register(handler.NewSaleHandler(flow.Engine, flow.Queries)).
		Register(handler.NewStockHandler(flow.Engine, flow.Queries)).
		Register(handler.NewBalanceHandler(flow.Engine, flow.Queries)).
		Register(handler.NewSystemHandler("integration-test"))
	r.Setup()

	return &apiStack{ledgerFlowSetup: flow, HTTP: ginEngine}
}

// identity returns the gateway trust headers for the setup's tenant and user.
func (s *apiStack) identity() map[string]string {
	return map[string]string{
		middleware.TenantIDHeader: s.TenantID.String(),
		middleware.UserIDHeader:   s.UserID.String(),
	}
}

func TestLedgerAPI(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := newAPIStack(t)
	var saleID uuid.UUID

	t.Run("should reject requests without gateway identity", func(t *testing.T) {
		w := testutil.PerformRequest(t, s.HTTP, http.MethodGet, "/api/v1/ledger/sales", nil, nil)
		testutil.RequireErrorCode(t, w, http.StatusUnauthorized, "UNAUTHORIZED")
	})

	t.Run("should leave ping open for probes", func(t *testing.T) {
		w := testutil.PerformRequest(t, s.HTTP, http.MethodGet, "/api/v1/system/ping", nil, nil)
		data := testutil.RequireSuccess(t, w, http.StatusOK)

		var ping struct {
			Message string `json:"message"`
		}
		testutil.DecodeData(t, data, &ping)
		assert.Equal(t, "pong", ping.Message)
	})

	t.Run("should create a sale and expose the new stock position", func(t *testing.T) {
		body := testutil.JSONBody(t, gin.H{
			"payment_type": "CASH",
			"lines":        []gin.H{{"item_id": s.CartonItemID, "cartons": 1}},
		})
		w := testutil.PerformRequest(t, s.HTTP, http.MethodPost, "/api/v1/ledger/sales", body, s.identity())
		data := testutil.RequireSuccess(t, w, http.StatusCreated)

		var sale ledger.SaleResponse
		testutil.DecodeData(t, data, &sale)
		saleID = sale.ID
		assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(360)), "12 pieces at 30, got %s", sale.TotalAmount)
		assert.True(t, sale.PaidAmount.Equal(sale.TotalAmount), "cash sales settle in full")

		w = testutil.PerformRequest(t, s.HTTP, http.MethodGet, "/api/v1/ledger/stock/items/"+s.CartonItemID.String(), nil, s.identity())
		data = testutil.RequireSuccess(t, w, http.StatusOK)

		var stock ledger.ItemStockResponse
		testutil.DecodeData(t, data, &stock)
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(108)))
		require.NotNil(t, stock.Packs)
		assert.Equal(t, int64(9), stock.Packs.Cartons)
		assert.Equal(t, int64(0), stock.Packs.Pieces)
	})

	t.Run("should reject malformed payloads at the binding layer", func(t *testing.T) {
		body := testutil.JSONBody(t, gin.H{
			"payment_type": "BARTER",
			"lines":        []gin.H{{"item_id": s.CartonItemID, "cartons": 1}},
		})
		w := testutil.PerformRequest(t, s.HTTP, http.MethodPost, "/api/v1/ledger/sales", body, s.identity())
		testutil.RequireErrorCode(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("should surface domain guards with stable codes", func(t *testing.T) {
		body := testutil.JSONBody(t, gin.H{
			"payment_type": "CASH",
			"lines":        []gin.H{{"item_id": s.LooseItemID, "quantity": 500}},
		})
		w := testutil.PerformRequest(t, s.HTTP, http.MethodPost, "/api/v1/ledger/sales", body, s.identity())
		testutil.RequireErrorCode(t, w, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK")
	})

	t.Run("should honor the idempotency key header", func(t *testing.T) {
		headers := s.identity()
		headers["Idempotency-Key"] = "api-sale-replay"
		payload := gin.H{
			"payment_type": "CASH",
			"lines":        []gin.H{{"item_id": s.LooseItemID, "quantity": 3}},
		}

		w := testutil.PerformRequest(t, s.HTTP, http.MethodPost, "/api/v1/ledger/sales", testutil.JSONBody(t, payload), headers)
		testutil.RequireSuccess(t, w, http.StatusCreated)

		w = testutil.PerformRequest(t, s.HTTP, http.MethodPost, "/api/v1/ledger/sales", testutil.JSONBody(t, payload), headers)
		testutil.RequireErrorCode(t, w, http.StatusConflict, "DUPLICATE_REQUEST")
	})

	t.Run("should hide documents behind tenant boundaries", func(t *testing.T) {
		require.NotEqual(t, uuid.Nil, saleID, "needs the sale created above")

		foreign := map[string]string{
			middleware.TenantIDHeader: uuid.New().String(),
			middleware.UserIDHeader:   uuid.New().String(),
		}
		w := testutil.PerformRequest(t, s.HTTP, http.MethodGet, "/api/v1/ledger/sales/"+saleID.String(), nil, foreign)
		testutil.RequireErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
	})

	t.Run("should read balances through the versioned routes", func(t *testing.T) {
		w := testutil.PerformRequest(t, s.HTTP, http.MethodGet, "/api/v1/ledger/balance/customer/"+s.CustomerID.String(), nil, s.identity())
		data := testutil.RequireSuccess(t, w, http.StatusOK)

		var balance ledger.EntityBalanceResponse
		testutil.DecodeData(t, data, &balance)
		assert.Equal(t, "customer", balance.EntityKind)
		assert.True(t, balance.Balance.IsZero(), "no credit activity yet")
	})
}
