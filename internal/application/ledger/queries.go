package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// QueryService serves the read side of the ledger: documents, stock
// positions, audit trails and balances. Reads never open a transaction.
type QueryService struct {
	repos RepositorySet
}

// NewQueryService creates a new QueryService.
func NewQueryService(repos RepositorySet) *QueryService {
	return &QueryService{repos: repos}
}

// GetSale retrieves a sale with its lines.
func (q *QueryService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := q.repos.Sales.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale, q.ppuForSaleLines(ctx, tenantID, sale))
	return &resp, nil
}

// GetSaleByNumber retrieves a sale by its document number.
func (q *QueryService) GetSaleByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*SaleResponse, error) {
	sale, err := q.repos.Sales.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale, q.ppuForSaleLines(ctx, tenantID, sale))
	return &resp, nil
}

// ListSales retrieves sales with filtering and pagination.
func (q *QueryService) ListSales(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleListItemResponse, int64, error) {
	domainFilter := toDomainFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	var (
		sales []trade.Sale
		err   error
	)
	if filter.CustomerID != nil && filter.Search == "" {
		sales, err = q.repos.Sales.FindByCustomer(ctx, tenantID, *filter.CustomerID, domainFilter)
	} else {
		sales, err = q.repos.Sales.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := q.repos.Sales.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleListItemResponse, 0, len(sales))
	for idx := range sales {
		responses = append(responses, ToSaleListItemResponse(&sales[idx]))
	}
	return responses, total, nil
}

// GetPurchase retrieves a purchase with its lines.
func (q *QueryService) GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := q.repos.Purchases.FindByIDForTenant(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(purchase, q.ppuForPurchaseLines(ctx, tenantID, purchase))
	return &resp, nil
}

// ListPurchases retrieves purchases with filtering and pagination.
func (q *QueryService) ListPurchases(ctx context.Context, tenantID uuid.UUID, filter PurchaseListFilter) ([]PurchaseListItemResponse, int64, error) {
	domainFilter := toDomainFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}

	var (
		purchases []trade.Purchase
		err       error
	)
	if filter.SupplierID != nil && filter.Search == "" {
		purchases, err = q.repos.Purchases.FindBySupplier(ctx, tenantID, *filter.SupplierID, domainFilter)
	} else {
		purchases, err = q.repos.Purchases.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := q.repos.Purchases.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PurchaseListItemResponse, 0, len(purchases))
	for idx := range purchases {
		responses = append(responses, ToPurchaseListItemResponse(&purchases[idx]))
	}
	return responses, total, nil
}

// ListCustomerReturnsForSale retrieves the returns processed against a sale.
func (q *QueryService) ListCustomerReturnsForSale(ctx context.Context, tenantID, saleID uuid.UUID) ([]CustomerReturnResponse, error) {
	returns, err := q.repos.CustomerReturns.FindBySale(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	responses := make([]CustomerReturnResponse, 0, len(returns))
	for idx := range returns {
		responses = append(responses, ToCustomerReturnResponse(&returns[idx]))
	}
	return responses, nil
}

// ListSupplierReturnsForPurchase retrieves the returns processed against a purchase.
func (q *QueryService) ListSupplierReturnsForPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) ([]SupplierReturnResponse, error) {
	returns, err := q.repos.SupplierReturns.FindByPurchase(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	responses := make([]SupplierReturnResponse, 0, len(returns))
	for idx := range returns {
		responses = append(responses, ToSupplierReturnResponse(&returns[idx]))
	}
	return responses, nil
}

// ListPayments retrieves payments, optionally narrowed to one customer or supplier.
func (q *QueryService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := toDomainFilter(filter.Page, filter.PageSize, "", "", "")

	var (
		payments []trade.Payment
		err      error
	)
	if filter.EntityKind != "" && filter.EntityID != nil {
		kind, kerr := partner.ParseEntityKind(filter.EntityKind)
		if kerr != nil {
			return nil, 0, kerr
		}
		switch kind {
		case partner.EntityKindCustomer:
			domainFilter.Filters["customer_id"] = *filter.EntityID
		case partner.EntityKindSupplier:
			domainFilter.Filters["supplier_id"] = *filter.EntityID
		}
		payments, err = q.repos.Payments.FindByEntity(ctx, tenantID, kind, *filter.EntityID, domainFilter)
	} else {
		payments, err = q.repos.Payments.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := q.repos.Payments.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for idx := range payments {
		// Historic payments do not carry the balance they left behind;
		// that lives in the balance entry audit trail.
		responses = append(responses, ToPaymentResponse(&payments[idx], decimal.Zero))
	}
	return responses, total, nil
}

// GetItemStock retrieves an item's current stock position.
func (q *QueryService) GetItemStock(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemStockResponse, error) {
	item, err := q.repos.Items.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	resp := ToItemStockResponse(item)
	return &resp, nil
}

// ListStockMovements retrieves the stock movement audit trail, optionally
// narrowed to one item or one originating document.
func (q *QueryService) ListStockMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) ([]StockMovementResponse, error) {
	domainFilter := toDomainFilter(filter.Page, filter.PageSize, "", "", "")

	movements, err := q.findMovements(ctx, tenantID, filter, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]StockMovementResponse, 0, len(movements))
	for idx := range movements {
		responses = append(responses, ToStockMovementResponse(&movements[idx]))
	}
	return responses, nil
}

// GetEntityBalance retrieves the current balance of a customer or supplier
// together with its most recent audit entries.
func (q *QueryService) GetEntityBalance(ctx context.Context, tenantID uuid.UUID, kindRaw string, entityID uuid.UUID) (*EntityBalanceResponse, error) {
	kind, err := partner.ParseEntityKind(kindRaw)
	if err != nil {
		return nil, err
	}

	resp := &EntityBalanceResponse{
		EntityKind: string(kind),
		EntityID:   entityID,
	}

	switch kind {
	case partner.EntityKindCustomer:
		customer, err := q.repos.Customers.FindByIDForTenant(ctx, tenantID, entityID)
		if err != nil {
			return nil, err
		}
		resp.Code = customer.Code
		resp.Name = customer.Name
		resp.Balance = customer.Balance
		resp.UpdatedAt = customer.UpdatedAt
	case partner.EntityKindSupplier:
		supplier, err := q.repos.Suppliers.FindByIDForTenant(ctx, tenantID, entityID)
		if err != nil {
			return nil, err
		}
		resp.Code = supplier.Code
		resp.Name = supplier.Name
		resp.Balance = supplier.Balance
		resp.UpdatedAt = supplier.UpdatedAt
	}

	recentFilter := toDomainFilter(1, 10, "", "", "")
	entries, err := q.repos.BalanceEntries.FindByEntity(ctx, tenantID, kind, entityID, recentFilter)
	if err != nil {
		return nil, err
	}
	resp.RecentEntries = make([]BalanceEntryResponse, 0, len(entries))
	for idx := range entries {
		resp.RecentEntries = append(resp.RecentEntries, ToBalanceEntryResponse(&entries[idx]))
	}

	return resp, nil
}

// ListBalanceEntries retrieves the balance entry audit trail for one entity.
func (q *QueryService) ListBalanceEntries(ctx context.Context, tenantID uuid.UUID, kindRaw string, entityID uuid.UUID, filter EntryListFilter) ([]BalanceEntryResponse, int64, error) {
	kind, err := partner.ParseEntityKind(kindRaw)
	if err != nil {
		return nil, 0, err
	}

	domainFilter := toDomainFilter(filter.Page, filter.PageSize, "", "", "")
	entries, err := q.repos.BalanceEntries.FindByEntity(ctx, tenantID, kind, entityID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := q.repos.BalanceEntries.CountByEntity(ctx, tenantID, kind, entityID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BalanceEntryResponse, 0, len(entries))
	for idx := range entries {
		responses = append(responses, ToBalanceEntryResponse(&entries[idx]))
	}
	return responses, total, nil
}

// BalanceDriftResponse reports how an entity's live balance compares to the
// sum of its audit entry deltas.
type BalanceDriftResponse struct {
	EntityKind string          `json:"entity_kind"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Balance    decimal.Decimal `json:"balance"`
	EntrySum   decimal.Decimal `json:"entry_sum"`
	Drift      decimal.Decimal `json:"drift"`
}

// CheckBalanceDrift reconciles an entity's live balance against its full
// audit trail. Override entries record the jump they applied, so the sum of
// all deltas tracks the balance exactly; non-zero drift means entries were
// purged or the balance was seeded outside the ledger.
func (q *QueryService) CheckBalanceDrift(ctx context.Context, tenantID uuid.UUID, kindRaw string, entityID uuid.UUID) (*BalanceDriftResponse, error) {
	kind, err := partner.ParseEntityKind(kindRaw)
	if err != nil {
		return nil, err
	}

	var balance decimal.Decimal
	switch kind {
	case partner.EntityKindCustomer:
		customer, err := q.repos.Customers.FindByIDForTenant(ctx, tenantID, entityID)
		if err != nil {
			return nil, err
		}
		balance = customer.Balance
	case partner.EntityKindSupplier:
		supplier, err := q.repos.Suppliers.FindByIDForTenant(ctx, tenantID, entityID)
		if err != nil {
			return nil, err
		}
		balance = supplier.Balance
	}

	entrySum, err := q.repos.BalanceEntries.SumDeltasSince(ctx, tenantID, kind, entityID, time.Time{})
	if err != nil {
		return nil, err
	}

	return &BalanceDriftResponse{
		EntityKind: string(kind),
		EntityID:   entityID,
		Balance:    balance,
		EntrySum:   entrySum,
		Drift:      balance.Sub(entrySum),
	}, nil
}

func (q *QueryService) findMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter, domainFilter shared.Filter) ([]inventory.StockMovement, error) {
	switch {
	case filter.ItemID != nil:
		return q.repos.StockMovements.FindByItem(ctx, tenantID, *filter.ItemID, domainFilter)
	case filter.SourceID != nil:
		return q.repos.StockMovements.FindBySource(ctx, tenantID, *filter.SourceID)
	default:
		return q.repos.StockMovements.FindForTenant(ctx, tenantID, domainFilter)
	}
}

// ppuForSaleLines loads pieces-per-unit for the items on a sale. Pack
// breakdowns are presentation sugar, so a failed lookup just omits them.
func (q *QueryService) ppuForSaleLines(ctx context.Context, tenantID uuid.UUID, sale *trade.Sale) map[uuid.UUID]int64 {
	ids := make([]uuid.UUID, 0, len(sale.Lines))
	for idx := range sale.Lines {
		ids = append(ids, sale.Lines[idx].ItemID)
	}
	return q.ppuForItems(ctx, tenantID, ids)
}

func (q *QueryService) ppuForPurchaseLines(ctx context.Context, tenantID uuid.UUID, purchase *trade.Purchase) map[uuid.UUID]int64 {
	ids := make([]uuid.UUID, 0, len(purchase.Lines))
	for idx := range purchase.Lines {
		ids = append(ids, purchase.Lines[idx].ItemID)
	}
	return q.ppuForItems(ctx, tenantID, ids)
}

func (q *QueryService) ppuForItems(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) map[uuid.UUID]int64 {
	if len(ids) == 0 {
		return nil
	}
	items, err := q.repos.Items.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil
	}
	ppu := make(map[uuid.UUID]int64, len(items))
	for idx := range items {
		ppu[items[idx].ID] = items[idx].PiecesPerUnit
	}
	return ppu
}
