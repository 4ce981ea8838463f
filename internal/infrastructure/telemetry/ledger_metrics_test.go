package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/shopledger/backend/internal/infrastructure/telemetry"
)

func TestNewLedgerMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, lm)
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, lm)
	assert.Equal(t, "NewLedgerMetrics: meter cannot be nil", err.Error())
}

func TestLedgerMetrics_RecordDocument(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	lm.RecordDocument(ctx, tenantID, telemetry.DocumentTypeSale, decimal.NewFromFloat(199.99))
	lm.RecordDocument(ctx, tenantID, telemetry.DocumentTypePurchase, decimal.NewFromInt(5000))
	lm.RecordDocument(ctx, tenantID, telemetry.DocumentTypeCustomerReturn, decimal.NewFromInt(50))
	lm.RecordDocument(ctx, tenantID, telemetry.DocumentTypeSupplierReturn, decimal.NewFromInt(120))
}

func TestLedgerMetrics_RecordPayment(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	lm.RecordPayment(ctx, tenantID, "CASH", decimal.NewFromInt(100))
	lm.RecordPayment(ctx, tenantID, "TRANSFER", decimal.NewFromFloat(2500.50))
}

func TestLedgerMetrics_RecordOperationFailure(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	lm.RecordOperationFailure(ctx, tenantID, "create_sale", "INSUFFICIENT_STOCK")
	lm.RecordOperationFailure(ctx, tenantID, "record_payment", "OVERPAYMENT_NOT_ALLOWED")
}

func TestLedgerMetrics_RecordStockAdjustment(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	lm.RecordStockAdjustment(ctx, tenantID, "increase")
	lm.RecordStockAdjustment(ctx, tenantID, "decrease")
}

func TestLedgerMetrics_RecordBalanceOverride(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	lm.RecordBalanceOverride(ctx, tenantID, "customer")
	lm.RecordBalanceOverride(ctx, tenantID, "supplier")
}

func TestLedgerMetrics_RecordOutboxBacklog(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	lm.RecordOutboxBacklog(ctx, "PENDING", 12)
	lm.RecordOutboxBacklog(ctx, "FAILED", 2)
}

func TestLedgerMetrics_RecordOutOfStockCount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	// Should not panic
	lm.RecordOutOfStockCount(ctx, tenantID, 5)
	lm.RecordOutOfStockCount(ctx, tenantID, 0)
}

// Mock implementations for testing periodic collection

type mockTenantProvider struct {
	tenantIDs []uuid.UUID
	err       error
}

func (m *mockTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.tenantIDs, m.err
}

type mockBacklogProvider struct {
	backlog map[string]int64
	err     error
}

func (m *mockBacklogProvider) BacklogByStatus(ctx context.Context) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.backlog, nil
}

type mockStockProvider struct {
	outOfStock int64
	err        error
}

func (m *mockStockProvider) GetOutOfStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.outOfStock, nil
}

func TestLedgerMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	tenantID := uuid.New()

	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		BacklogProvider: &mockBacklogProvider{
			backlog: map[string]int64{"PENDING": 3, "FAILED": 1},
		},
		StockProvider: &mockStockProvider{outOfStock: 2},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{tenantID},
	}

	// Start periodic collection with short interval for testing
	lm.StartPeriodicCollection(ctx, tenantProvider, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	lm.Stop()

	// Should complete without error
}

func TestLedgerMetrics_PeriodicCollection_NoProviders(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No backlog or stock providers
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{uuid.New()},
	}

	// Should not panic with no providers
	lm.StartPeriodicCollection(ctx, tenantProvider, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	lm.Stop()
}

func TestLedgerMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	lm.Stop()
	lm.Stop()
	lm.Stop()
}

func TestLedgerMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tenantProvider := &mockTenantProvider{
		tenantIDs: []uuid.UUID{},
	}

	// Calling StartPeriodicCollection multiple times should only start once
	lm.StartPeriodicCollection(ctx, tenantProvider, time.Hour)
	lm.StartPeriodicCollection(ctx, tenantProvider, time.Minute)
	lm.StartPeriodicCollection(ctx, tenantProvider, time.Second)

	lm.Stop()
}

func TestDocumentType_Values(t *testing.T) {
	assert.Equal(t, telemetry.DocumentType("sale"), telemetry.DocumentTypeSale)
	assert.Equal(t, telemetry.DocumentType("purchase"), telemetry.DocumentTypePurchase)
	assert.Equal(t, telemetry.DocumentType("customer_return"), telemetry.DocumentTypeCustomerReturn)
	assert.Equal(t, telemetry.DocumentType("supplier_return"), telemetry.DocumentTypeSupplierReturn)
	assert.Equal(t, telemetry.DocumentType("payment"), telemetry.DocumentTypePayment)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
