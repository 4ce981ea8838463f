package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/shopledger/backend/internal/application/ledger"
	"github.com/shopledger/backend/internal/interfaces/http/middleware"
)

var (
	testTenantID = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	testUserID   = uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
)

// testIdentity stands in for the gateway trust middleware.
func testIdentity(tenantID, userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, tenantID.String())
		c.Set(middleware.UserIDKey, userID.String())
		c.Next()
	}
}

// MockTransactionService implements TransactionService for testing
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) CreateSale(ctx context.Context, tenantID, userID uuid.UUID, req ledger.CreateSaleRequest) (*ledger.SaleResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SaleResponse), args.Error(1)
}

func (m *MockTransactionService) CreatePurchase(ctx context.Context, tenantID, userID uuid.UUID, req ledger.CreatePurchaseRequest) (*ledger.PurchaseResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PurchaseResponse), args.Error(1)
}

func (m *MockTransactionService) ProcessCustomerReturn(ctx context.Context, tenantID, userID uuid.UUID, req ledger.ProcessCustomerReturnRequest) (*ledger.CustomerReturnResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.CustomerReturnResponse), args.Error(1)
}

func (m *MockTransactionService) ProcessSupplierReturn(ctx context.Context, tenantID, userID uuid.UUID, req ledger.ProcessSupplierReturnRequest) (*ledger.SupplierReturnResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SupplierReturnResponse), args.Error(1)
}

func (m *MockTransactionService) RecordPayment(ctx context.Context, tenantID, userID uuid.UUID, req ledger.RecordPaymentRequest) (*ledger.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentResponse), args.Error(1)
}

func (m *MockTransactionService) OverrideBalance(ctx context.Context, tenantID, userID uuid.UUID, req ledger.OverrideBalanceRequest) (*ledger.BalanceOverrideResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.BalanceOverrideResponse), args.Error(1)
}

func (m *MockTransactionService) AdjustStock(ctx context.Context, tenantID, userID uuid.UUID, req ledger.AdjustStockRequest) (*ledger.StockAdjustmentResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.StockAdjustmentResponse), args.Error(1)
}

// MockQueryService implements QueryService for testing
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*ledger.SaleResponse, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SaleResponse), args.Error(1)
}

func (m *MockQueryService) GetSaleByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ledger.SaleResponse, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SaleResponse), args.Error(1)
}

func (m *MockQueryService) ListSales(ctx context.Context, tenantID uuid.UUID, filter ledger.SaleListFilter) ([]ledger.SaleListItemResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]ledger.SaleListItemResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockQueryService) GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*ledger.PurchaseResponse, error) {
	args := m.Called(ctx, tenantID, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PurchaseResponse), args.Error(1)
}

func (m *MockQueryService) ListPurchases(ctx context.Context, tenantID uuid.UUID, filter ledger.PurchaseListFilter) ([]ledger.PurchaseListItemResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]ledger.PurchaseListItemResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockQueryService) ListCustomerReturnsForSale(ctx context.Context, tenantID, saleID uuid.UUID) ([]ledger.CustomerReturnResponse, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.CustomerReturnResponse), args.Error(1)
}

func (m *MockQueryService) ListSupplierReturnsForPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]ledger.SupplierReturnResponse, error) {
	args := m.Called(ctx, tenantID, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.SupplierReturnResponse), args.Error(1)
}

func (m *MockQueryService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentListFilter) ([]ledger.PaymentResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]ledger.PaymentResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockQueryService) GetItemStock(ctx context.Context, tenantID, itemID uuid.UUID) (*ledger.ItemStockResponse, error) {
	args := m.Called(ctx, tenantID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ItemStockResponse), args.Error(1)
}

func (m *MockQueryService) ListStockMovements(ctx context.Context, tenantID uuid.UUID, filter ledger.MovementListFilter) ([]ledger.StockMovementResponse, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.StockMovementResponse), args.Error(1)
}

func (m *MockQueryService) GetEntityBalance(ctx context.Context, tenantID uuid.UUID, kind string, entityID uuid.UUID) (*ledger.EntityBalanceResponse, error) {
	args := m.Called(ctx, tenantID, kind, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.EntityBalanceResponse), args.Error(1)
}

func (m *MockQueryService) ListBalanceEntries(ctx context.Context, tenantID uuid.UUID, kind string, entityID uuid.UUID, filter ledger.EntryListFilter) ([]ledger.BalanceEntryResponse, int64, error) {
	args := m.Called(ctx, tenantID, kind, entityID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]ledger.BalanceEntryResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockQueryService) CheckBalanceDrift(ctx context.Context, tenantID uuid.UUID, kind string, entityID uuid.UUID) (*ledger.BalanceDriftResponse, error) {
	args := m.Called(ctx, tenantID, kind, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.BalanceDriftResponse), args.Error(1)
}

// Ensure mocks implement the interfaces
var (
	_ TransactionService = (*MockTransactionService)(nil)
	_ QueryService       = (*MockQueryService)(nil)
)
