package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBalanceEntry(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()

	t.Run("creates entry with matching before and after", func(t *testing.T) {
		entry, err := NewBalanceEntry(
			tenantID, EntityKindCustomer, customerID,
			BalanceEntryTypeCreditSale,
			decimal.NewFromInt(60), decimal.Zero, decimal.NewFromInt(60),
		)

		require.NoError(t, err)
		assert.Equal(t, EntityKindCustomer, entry.EntityKind)
		assert.Equal(t, "60", entry.Delta.String())
		assert.True(t, entry.IsIncrease())
	})

	t.Run("builder methods attach source and operator", func(t *testing.T) {
		sourceID := uuid.New()
		operatorID := uuid.New()

		entry, err := NewBalanceEntry(
			tenantID, EntityKindSupplier, uuid.New(),
			BalanceEntryTypePayment,
			decimal.NewFromInt(-40), decimal.NewFromInt(100), decimal.NewFromInt(60),
		)
		require.NoError(t, err)

		entry.WithSource(sourceID).WithOperator(operatorID).WithNote("wire transfer")

		require.NotNil(t, entry.SourceID)
		assert.Equal(t, sourceID, *entry.SourceID)
		require.NotNil(t, entry.OperatorID)
		assert.Equal(t, operatorID, *entry.OperatorID)
		assert.Equal(t, "wire transfer", entry.Note)
		assert.False(t, entry.IsIncrease())
	})

	t.Run("rejects mismatched before and after", func(t *testing.T) {
		_, err := NewBalanceEntry(
			tenantID, EntityKindCustomer, customerID,
			BalanceEntryTypePayment,
			decimal.NewFromInt(-40), decimal.NewFromInt(100), decimal.NewFromInt(70),
		)
		require.Error(t, err)
	})

	t.Run("rejects zero delta except for overrides", func(t *testing.T) {
		_, err := NewBalanceEntry(
			tenantID, EntityKindCustomer, customerID,
			BalanceEntryTypePayment,
			decimal.Zero, decimal.NewFromInt(100), decimal.NewFromInt(100),
		)
		require.Error(t, err)

		entry, err := NewBalanceEntry(
			tenantID, EntityKindCustomer, customerID,
			BalanceEntryTypeOverride,
			decimal.Zero, decimal.NewFromInt(100), decimal.NewFromInt(100),
		)
		require.NoError(t, err)
		assert.Equal(t, BalanceEntryTypeOverride, entry.EntryType)
	})

	t.Run("rejects unknown kind and type", func(t *testing.T) {
		_, err := NewBalanceEntry(
			tenantID, EntityKind("partner"), customerID,
			BalanceEntryTypePayment,
			decimal.NewFromInt(-1), decimal.NewFromInt(1), decimal.Zero,
		)
		require.Error(t, err)

		_, err = NewBalanceEntry(
			tenantID, EntityKindCustomer, customerID,
			BalanceEntryType("BONUS"),
			decimal.NewFromInt(-1), decimal.NewFromInt(1), decimal.Zero,
		)
		require.Error(t, err)
	})
}

func TestParseEntityKind(t *testing.T) {
	kind, err := ParseEntityKind("customer")
	require.NoError(t, err)
	assert.Equal(t, EntityKindCustomer, kind)

	kind, err = ParseEntityKind("supplier")
	require.NoError(t, err)
	assert.Equal(t, EntityKindSupplier, kind)

	_, err = ParseEntityKind("staff")
	require.Error(t, err)
}
