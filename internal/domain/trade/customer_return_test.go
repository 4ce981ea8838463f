package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomerReturn(t *testing.T) {
	tenantID := uuid.New()
	itemID := uuid.New()
	customerID := uuid.New()

	newSaleWithLine := func(t *testing.T, cust *uuid.UUID) *Sale {
		sale, err := NewSale(tenantID, "SA-2026-00001", cust, PaymentTypeCash, PaymentMethodCash)
		require.NoError(t, err)
		require.NoError(t, sale.AddLine(itemID, "COLA-330", "Cola 330ml", decimal.NewFromInt(5), catalog.PriceTierDefault, decimal.NewFromInt(12), decimal.Zero))
		require.NoError(t, sale.Finalize(decimal.Zero))
		return sale
	}

	t.Run("creates credit return against a customer sale", func(t *testing.T) {
		sale := newSaleWithLine(t, uuidPtr(customerID))

		ret, err := NewCustomerReturn(tenantID, "CR-2026-00001", sale, itemID, decimal.NewFromInt(2), ReturnTypeCredit, decimal.NewFromInt(24))

		require.NoError(t, err)
		assert.Equal(t, sale.ID, ret.SaleID)
		assert.Equal(t, "SA-2026-00001", ret.SaleNumber)
		assert.Equal(t, "COLA-330", ret.ItemCode)
		assert.True(t, ret.CreditsCustomer())

		events := ret.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCustomerReturnProcessed, events[0].EventType())
	})

	t.Run("credit return on a walk-in sale does not credit anyone", func(t *testing.T) {
		sale := newSaleWithLine(t, nil)

		ret, err := NewCustomerReturn(tenantID, "CR-2026-00002", sale, itemID, decimal.NewFromInt(1), ReturnTypeCredit, decimal.NewFromInt(12))

		require.NoError(t, err)
		assert.Nil(t, ret.CustomerID)
		assert.False(t, ret.CreditsCustomer())
	})

	t.Run("fails for an item not on the sale", func(t *testing.T) {
		sale := newSaleWithLine(t, uuidPtr(customerID))

		_, err := NewCustomerReturn(tenantID, "CR-2026-00003", sale, uuid.New(), decimal.NewFromInt(1), ReturnTypeCash, decimal.NewFromInt(12))
		require.Error(t, err)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		sale := newSaleWithLine(t, uuidPtr(customerID))

		_, err := NewCustomerReturn(tenantID, "CR-2026-00004", sale, itemID, decimal.Zero, ReturnTypeCash, decimal.NewFromInt(12))
		require.Error(t, err)

		_, err = NewCustomerReturn(tenantID, "CR-2026-00004", sale, itemID, decimal.NewFromInt(1), ReturnType("STORE_CREDIT"), decimal.NewFromInt(12))
		require.Error(t, err)

		_, err = NewCustomerReturn(tenantID, "CR-2026-00004", sale, itemID, decimal.NewFromInt(1), ReturnTypeCash, decimal.NewFromInt(-1))
		require.Error(t, err)
	})
}

func TestNewSupplierReturn(t *testing.T) {
	tenantID := uuid.New()
	itemID := uuid.New()

	purchase, err := NewPurchase(tenantID, "PU-2026-00001", uuid.New(), PaymentTypeCredit, PaymentMethodBank)
	require.NoError(t, err)
	require.NoError(t, purchase.AddLine(itemID, "COLA-330", "Cola 330ml", decimal.NewFromInt(20), decimal.NewFromInt(8), decimal.Zero))
	require.NoError(t, purchase.Finalize(decimal.Zero))

	t.Run("creates credit return against the purchase", func(t *testing.T) {
		ret, err := NewSupplierReturn(tenantID, "SR-2026-00001", purchase, itemID, decimal.NewFromInt(5), ReturnTypeCredit, decimal.NewFromInt(40))

		require.NoError(t, err)
		assert.Equal(t, purchase.ID, ret.PurchaseID)
		assert.Equal(t, purchase.SupplierID, ret.SupplierID)
		assert.True(t, ret.ReducesSupplierBalance())
	})

	t.Run("cash refund does not touch the stored balance", func(t *testing.T) {
		ret, err := NewSupplierReturn(tenantID, "SR-2026-00002", purchase, itemID, decimal.NewFromInt(5), ReturnTypeCash, decimal.NewFromInt(40))

		require.NoError(t, err)
		assert.False(t, ret.ReducesSupplierBalance())
	})
}
