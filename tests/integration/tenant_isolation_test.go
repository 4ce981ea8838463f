// Multi-tenant isolation: every query and document number sequence is
// scoped to the calling tenant, and no tenant can see another's data.
package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopledger/backend/internal/application/ledger"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/infrastructure/persistence"
)

func TestTenantIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := newLedgerFlowSetup(t)
	ctx := context.Background()
	year := time.Now().Year()

	otherTenant := uuid.New()
	otherUser := uuid.New()

	// The second tenant reuses a code the first tenant already owns.
	// Codes are only unique within a tenant, so this save must succeed.
	otherItem, err := catalog.NewItem(otherTenant, "CARTON-01", "Other Tenant Carton", "", 6)
	require.NoError(t, err)
	require.NoError(t, otherItem.SetPrices(decimal.RequireFromString("10"), decimal.RequireFromString("15")))
	require.NoError(t, otherItem.IncreaseStock(decimal.NewFromInt(60)))
	require.NoError(t, persistence.NewGormItemRepository(s.DB.DB).Save(ctx, otherItem))

	saleA, err := s.Engine.CreateSale(ctx, s.TenantID, s.UserID, ledger.CreateSaleRequest{
		PaymentType: "CASH",
		Lines: []ledger.SaleLineRequest{
			{ItemID: s.CartonItemID, Cartons: intPtr(1)},
		},
	})
	require.NoError(t, err)

	saleB, err := s.Engine.CreateSale(ctx, otherTenant, otherUser, ledger.CreateSaleRequest{
		PaymentType: "CASH",
		Lines: []ledger.SaleLineRequest{
			{ItemID: otherItem.ID, Cartons: intPtr(1)},
		},
	})
	require.NoError(t, err)

	t.Run("should run document number sequences per tenant", func(t *testing.T) {
		first := fmt.Sprintf("SA-%d-00001", year)
		assert.Equal(t, first, saleA.Number)
		assert.Equal(t, first, saleB.Number, "each tenant starts its own sequence")
	})

	t.Run("should scope list queries to the calling tenant", func(t *testing.T) {
		sales, total, err := s.Queries.ListSales(ctx, s.TenantID, ledger.SaleListFilter{})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		assert.Equal(t, saleA.ID, sales[0].ID)

		sales, total, err = s.Queries.ListSales(ctx, otherTenant, ledger.SaleListFilter{})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		assert.Equal(t, saleB.ID, sales[0].ID)
	})

	t.Run("should hide other tenants' documents", func(t *testing.T) {
		_, err := s.Queries.GetSale(ctx, s.TenantID, saleB.ID)
		requireDomainCode(t, err, "NOT_FOUND")

		_, err = s.Queries.GetItemStock(ctx, s.TenantID, otherItem.ID)
		requireDomainCode(t, err, "NOT_FOUND")
	})

	t.Run("should keep stock movements inside their tenant", func(t *testing.T) {
		assert.True(t, s.stockOf(t, s.CartonItemID).Equal(decimal.NewFromInt(108)))

		otherStock, err := s.Queries.GetItemStock(ctx, otherTenant, otherItem.ID)
		require.NoError(t, err)
		assert.True(t, otherStock.Quantity.Equal(decimal.NewFromInt(54)), "6 of 60 sold")

		movements, err := s.Queries.ListStockMovements(ctx, otherTenant, ledger.MovementListFilter{})
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, otherItem.ID, movements[0].ItemID)
	})

	t.Run("should reject writes against another tenant's item", func(t *testing.T) {
		_, err := s.Engine.CreateSale(ctx, s.TenantID, s.UserID, ledger.CreateSaleRequest{
			PaymentType: "CASH",
			Lines: []ledger.SaleLineRequest{
				{ItemID: otherItem.ID, Pieces: intPtr(1)},
			},
		})
		requireDomainCode(t, err, "NOT_FOUND")
	})
}
