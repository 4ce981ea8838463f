package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopledger/backend/internal/application/ledger"
)

// TransactionService is the write side of the ledger as consumed by the
// HTTP handlers. *ledger.TransactionEngine is the production implementation.
type TransactionService interface {
	CreateSale(ctx context.Context, tenantID, userID uuid.UUID, req ledger.CreateSaleRequest) (*ledger.SaleResponse, error)
	CreatePurchase(ctx context.Context, tenantID, userID uuid.UUID, req ledger.CreatePurchaseRequest) (*ledger.PurchaseResponse, error)
	ProcessCustomerReturn(ctx context.Context, tenantID, userID uuid.UUID, req ledger.ProcessCustomerReturnRequest) (*ledger.CustomerReturnResponse, error)
	ProcessSupplierReturn(ctx context.Context, tenantID, userID uuid.UUID, req ledger.ProcessSupplierReturnRequest) (*ledger.SupplierReturnResponse, error)
	RecordPayment(ctx context.Context, tenantID, userID uuid.UUID, req ledger.RecordPaymentRequest) (*ledger.PaymentResponse, error)
	OverrideBalance(ctx context.Context, tenantID, userID uuid.UUID, req ledger.OverrideBalanceRequest) (*ledger.BalanceOverrideResponse, error)
	AdjustStock(ctx context.Context, tenantID, userID uuid.UUID, req ledger.AdjustStockRequest) (*ledger.StockAdjustmentResponse, error)
}

// QueryService is the read side of the ledger as consumed by the HTTP
// handlers. *ledger.QueryService is the production implementation.
type QueryService interface {
	GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*ledger.SaleResponse, error)
	GetSaleByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ledger.SaleResponse, error)
	ListSales(ctx context.Context, tenantID uuid.UUID, filter ledger.SaleListFilter) ([]ledger.SaleListItemResponse, int64, error)
	GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*ledger.PurchaseResponse, error)
	ListPurchases(ctx context.Context, tenantID uuid.UUID, filter ledger.PurchaseListFilter) ([]ledger.PurchaseListItemResponse, int64, error)
	ListCustomerReturnsForSale(ctx context.Context, tenantID, saleID uuid.UUID) ([]ledger.CustomerReturnResponse, error)
	ListSupplierReturnsForPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]ledger.SupplierReturnResponse, error)
	ListPayments(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentListFilter) ([]ledger.PaymentResponse, int64, error)
	GetItemStock(ctx context.Context, tenantID, itemID uuid.UUID) (*ledger.ItemStockResponse, error)
	ListStockMovements(ctx context.Context, tenantID uuid.UUID, filter ledger.MovementListFilter) ([]ledger.StockMovementResponse, error)
	GetEntityBalance(ctx context.Context, tenantID uuid.UUID, kind string, entityID uuid.UUID) (*ledger.EntityBalanceResponse, error)
	ListBalanceEntries(ctx context.Context, tenantID uuid.UUID, kind string, entityID uuid.UUID, filter ledger.EntryListFilter) ([]ledger.BalanceEntryResponse, int64, error)
	CheckBalanceDrift(ctx context.Context, tenantID uuid.UUID, kind string, entityID uuid.UUID) (*ledger.BalanceDriftResponse, error)
}

var (
	_ TransactionService = (*ledger.TransactionEngine)(nil)
	_ QueryService       = (*ledger.QueryService)(nil)
)
