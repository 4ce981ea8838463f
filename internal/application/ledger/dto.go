package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/shared/valueobject"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleLineRequest represents one line of a sale. The quantity is given
// either as a plain decimal or as a cartons/pieces pair, never both.
type SaleLineRequest struct {
	ItemID       uuid.UUID        `json:"item_id" binding:"required"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Cartons      *int64           `json:"cartons" binding:"omitempty,min=0"`
	Pieces       *int64           `json:"pieces" binding:"omitempty,min=0"`
	PriceTier    string           `json:"price_tier" binding:"omitempty,price_tier"`
	LineDiscount decimal.Decimal  `json:"line_discount"`
}

// CreateSaleRequest represents a request to create a sale
type CreateSaleRequest struct {
	CustomerID    *uuid.UUID        `json:"customer_id"`
	PaymentType   string            `json:"payment_type" binding:"required,payment_type"`
	PaymentMethod string            `json:"payment_method" binding:"omitempty,payment_method"`
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
	DiscountType  string            `json:"discount_type" binding:"omitempty,discount_type"`
	DiscountValue decimal.Decimal   `json:"discount_value"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
	Notes         string            `json:"notes"`

	// IdempotencyKey is taken from the Idempotency-Key header, never the body.
	IdempotencyKey string `json:"-"`
}

// PurchaseLineRequest represents one line of a purchase. A nil unit cost
// falls back to the item's stored cost price.
type PurchaseLineRequest struct {
	ItemID       uuid.UUID        `json:"item_id" binding:"required"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Cartons      *int64           `json:"cartons" binding:"omitempty,min=0"`
	Pieces       *int64           `json:"pieces" binding:"omitempty,min=0"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	LineDiscount decimal.Decimal  `json:"line_discount"`
}

// CreatePurchaseRequest represents a request to create a purchase
type CreatePurchaseRequest struct {
	SupplierID    uuid.UUID             `json:"supplier_id" binding:"required"`
	PaymentType   string                `json:"payment_type" binding:"required,payment_type"`
	PaymentMethod string                `json:"payment_method" binding:"omitempty,payment_method"`
	Lines         []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
	DiscountType  string                `json:"discount_type" binding:"omitempty,discount_type"`
	DiscountValue decimal.Decimal       `json:"discount_value"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	Notes         string                `json:"notes"`

	IdempotencyKey string `json:"-"`
}

// ProcessCustomerReturnRequest represents a request to return goods from a sale
type ProcessCustomerReturnRequest struct {
	SaleID   uuid.UUID       `json:"sale_id" binding:"required"`
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	Type     string          `json:"type" binding:"required,return_type"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes"`

	IdempotencyKey string `json:"-"`
}

// ProcessSupplierReturnRequest represents a request to return goods to a supplier
type ProcessSupplierReturnRequest struct {
	PurchaseID uuid.UUID       `json:"purchase_id" binding:"required"`
	ItemID     uuid.UUID       `json:"item_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Type       string          `json:"type" binding:"required,return_type"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`

	IdempotencyKey string `json:"-"`
}

// RecordPaymentRequest represents a request to settle part of a balance
type RecordPaymentRequest struct {
	EntityKind string          `json:"entity_kind" binding:"required,entity_kind"`
	EntityID   uuid.UUID       `json:"entity_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Method     string          `json:"method" binding:"omitempty,payment_method"`
	Notes      string          `json:"notes"`

	IdempotencyKey string `json:"-"`
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	ItemID   uuid.UUID        `json:"item_id" binding:"required"`
	Type     string           `json:"type" binding:"required,movement_type"`
	Quantity *decimal.Decimal `json:"quantity"`
	Cartons  *int64           `json:"cartons" binding:"omitempty,min=0"`
	Pieces   *int64           `json:"pieces" binding:"omitempty,min=0"`
	Reason   string           `json:"reason" binding:"required"`

	IdempotencyKey string `json:"-"`
}

// OverrideBalanceRequest represents an administrative absolute balance override
type OverrideBalanceRequest struct {
	EntityKind string          `json:"entity_kind" binding:"required,entity_kind"`
	EntityID   uuid.UUID       `json:"entity_id" binding:"required"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Reason     string          `json:"reason" binding:"required"`

	IdempotencyKey string `json:"-"`
}

// resolveLineQuantity converts the dual quantity form of a request into the
// canonical decimal quantity. piecesPerUnit comes from the item being moved.
func resolveLineQuantity(quantity *decimal.Decimal, cartons, pieces *int64, piecesPerUnit int64) (decimal.Decimal, error) {
	packed := cartons != nil || pieces != nil

	switch {
	case quantity != nil && packed:
		return decimal.Decimal{}, shared.NewValidationError("provide either quantity or cartons/pieces, not both")
	case quantity != nil:
		if quantity.LessThanOrEqual(decimal.Zero) {
			return decimal.Decimal{}, shared.NewValidationError("quantity must be positive")
		}
		return *quantity, nil
	case packed:
		var c, p int64
		if cartons != nil {
			c = *cartons
		}
		if pieces != nil {
			p = *pieces
		}
		resolved, err := valueobject.ToQuantity(c, p, piecesPerUnit)
		if err != nil {
			return decimal.Decimal{}, err
		}
		if resolved.LessThanOrEqual(decimal.Zero) {
			return decimal.Decimal{}, shared.NewValidationError("quantity must be positive")
		}
		return resolved, nil
	default:
		return decimal.Decimal{}, shared.NewValidationError("quantity is required")
	}
}

// PackBreakdown is the carton/piece presentation of a decimal quantity
type PackBreakdown struct {
	Cartons int64 `json:"cartons"`
	Pieces  int64 `json:"pieces"`
}

// packBreakdownFor renders a quantity as cartons and pieces for items packed
// in units larger than one piece. Returns nil for per-piece items and for
// quantities the packing cannot represent.
func packBreakdownFor(quantity decimal.Decimal, piecesPerUnit int64) *PackBreakdown {
	if piecesPerUnit <= 1 {
		return nil
	}
	pack, err := valueobject.FromQuantity(quantity, piecesPerUnit)
	if err != nil {
		return nil
	}
	return &PackBreakdown{Cartons: pack.Cartons(), Pieces: pack.Pieces()}
}

// SaleLineResponse represents a sale line in API responses
type SaleLineResponse struct {
	ItemID           uuid.UUID       `json:"item_id"`
	ItemCode         string          `json:"item_code"`
	ItemName         string          `json:"item_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	Packs            *PackBreakdown  `json:"packs,omitempty"`
	PriceTier        string          `json:"price_tier"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineDiscount     decimal.Decimal `json:"line_discount"`
	Amount           decimal.Decimal `json:"amount"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID                uuid.UUID          `json:"id"`
	Number            string             `json:"number"`
	CustomerID        *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName      string             `json:"customer_name,omitempty"`
	PaymentType       string             `json:"payment_type"`
	PaymentMethod     string             `json:"payment_method"`
	Lines             []SaleLineResponse `json:"lines"`
	SubtotalAmount    decimal.Decimal    `json:"subtotal_amount"`
	DiscountAmount    decimal.Decimal    `json:"discount_amount"`
	TotalAmount       decimal.Decimal    `json:"total_amount"`
	PaidAmount        decimal.Decimal    `json:"paid_amount"`
	OutstandingAmount decimal.Decimal    `json:"outstanding_amount"`
	Notes             string             `json:"notes,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	Version           int                `json:"version"`
}

// ToSaleResponse converts a sale to its response form. ppuByItem supplies
// pieces-per-unit for pack breakdowns and may be nil.
func ToSaleResponse(sale *trade.Sale, ppuByItem map[uuid.UUID]int64) SaleResponse {
	lines := make([]SaleLineResponse, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		resp := SaleLineResponse{
			ItemID:           line.ItemID,
			ItemCode:         line.ItemCode,
			ItemName:         line.ItemName,
			Quantity:         line.Quantity,
			PriceTier:        string(line.PriceTier),
			UnitPrice:        line.UnitPrice,
			LineDiscount:     line.LineDiscount,
			Amount:           line.Amount,
			ReturnedQuantity: line.ReturnedQuantity,
		}
		if ppu, ok := ppuByItem[line.ItemID]; ok {
			resp.Packs = packBreakdownFor(line.Quantity, ppu)
		}
		lines = append(lines, resp)
	}

	return SaleResponse{
		ID:                sale.ID,
		Number:            sale.Number,
		CustomerID:        sale.CustomerID,
		CustomerName:      sale.CustomerName,
		PaymentType:       string(sale.PaymentType),
		PaymentMethod:     string(sale.PaymentMethod),
		Lines:             lines,
		SubtotalAmount:    sale.SubtotalAmount,
		DiscountAmount:    sale.DiscountAmount,
		TotalAmount:       sale.TotalAmount,
		PaidAmount:        sale.PaidAmount,
		OutstandingAmount: sale.OutstandingAmount(),
		Notes:             sale.Notes,
		CreatedAt:         sale.CreatedAt,
		Version:           sale.Version,
	}
}

// SaleListItemResponse represents a sale in list responses
type SaleListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name,omitempty"`
	PaymentType  string          `json:"payment_type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	LineCount    int             `json:"line_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToSaleListItemResponse converts a sale to its list form
func ToSaleListItemResponse(sale *trade.Sale) SaleListItemResponse {
	return SaleListItemResponse{
		ID:           sale.ID,
		Number:       sale.Number,
		CustomerID:   sale.CustomerID,
		CustomerName: sale.CustomerName,
		PaymentType:  string(sale.PaymentType),
		TotalAmount:  sale.TotalAmount,
		PaidAmount:   sale.PaidAmount,
		LineCount:    len(sale.Lines),
		CreatedAt:    sale.CreatedAt,
	}
}

// PurchaseLineResponse represents a purchase line in API responses
type PurchaseLineResponse struct {
	ItemID           uuid.UUID       `json:"item_id"`
	ItemCode         string          `json:"item_code"`
	ItemName         string          `json:"item_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	Packs            *PackBreakdown  `json:"packs,omitempty"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LineDiscount     decimal.Decimal `json:"line_discount"`
	Amount           decimal.Decimal `json:"amount"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID                uuid.UUID              `json:"id"`
	Number            string                 `json:"number"`
	SupplierID        uuid.UUID              `json:"supplier_id"`
	SupplierName      string                 `json:"supplier_name,omitempty"`
	PaymentType       string                 `json:"payment_type"`
	PaymentMethod     string                 `json:"payment_method"`
	Lines             []PurchaseLineResponse `json:"lines"`
	SubtotalAmount    decimal.Decimal        `json:"subtotal_amount"`
	DiscountAmount    decimal.Decimal        `json:"discount_amount"`
	TotalAmount       decimal.Decimal        `json:"total_amount"`
	PaidAmount        decimal.Decimal        `json:"paid_amount"`
	OutstandingAmount decimal.Decimal        `json:"outstanding_amount"`
	Notes             string                 `json:"notes,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	Version           int                    `json:"version"`
}

// ToPurchaseResponse converts a purchase to its response form
func ToPurchaseResponse(purchase *trade.Purchase, ppuByItem map[uuid.UUID]int64) PurchaseResponse {
	lines := make([]PurchaseLineResponse, 0, len(purchase.Lines))
	for _, line := range purchase.Lines {
		resp := PurchaseLineResponse{
			ItemID:           line.ItemID,
			ItemCode:         line.ItemCode,
			ItemName:         line.ItemName,
			Quantity:         line.Quantity,
			UnitCost:         line.UnitCost,
			LineDiscount:     line.LineDiscount,
			Amount:           line.Amount,
			ReturnedQuantity: line.ReturnedQuantity,
		}
		if ppu, ok := ppuByItem[line.ItemID]; ok {
			resp.Packs = packBreakdownFor(line.Quantity, ppu)
		}
		lines = append(lines, resp)
	}

	return PurchaseResponse{
		ID:                purchase.ID,
		Number:            purchase.Number,
		SupplierID:        purchase.SupplierID,
		SupplierName:      purchase.SupplierName,
		PaymentType:       string(purchase.PaymentType),
		PaymentMethod:     string(purchase.PaymentMethod),
		Lines:             lines,
		SubtotalAmount:    purchase.SubtotalAmount,
		DiscountAmount:    purchase.DiscountAmount,
		TotalAmount:       purchase.TotalAmount,
		PaidAmount:        purchase.PaidAmount,
		OutstandingAmount: purchase.OutstandingAmount(),
		Notes:             purchase.Notes,
		CreatedAt:         purchase.CreatedAt,
		Version:           purchase.Version,
	}
}

// PurchaseListItemResponse represents a purchase in list responses
type PurchaseListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name,omitempty"`
	PaymentType  string          `json:"payment_type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	LineCount    int             `json:"line_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToPurchaseListItemResponse converts a purchase to its list form
func ToPurchaseListItemResponse(purchase *trade.Purchase) PurchaseListItemResponse {
	return PurchaseListItemResponse{
		ID:           purchase.ID,
		Number:       purchase.Number,
		SupplierID:   purchase.SupplierID,
		SupplierName: purchase.SupplierName,
		PaymentType:  string(purchase.PaymentType),
		TotalAmount:  purchase.TotalAmount,
		PaidAmount:   purchase.PaidAmount,
		LineCount:    len(purchase.Lines),
		CreatedAt:    purchase.CreatedAt,
	}
}

// CustomerReturnResponse represents a processed customer return
type CustomerReturnResponse struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	ItemID     uuid.UUID       `json:"item_id"`
	ItemCode   string          `json:"item_code"`
	Quantity   decimal.Decimal `json:"quantity"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToCustomerReturnResponse converts a customer return to its response form
func ToCustomerReturnResponse(ret *trade.CustomerReturn) CustomerReturnResponse {
	return CustomerReturnResponse{
		ID:         ret.ID,
		Number:     ret.Number,
		SaleID:     ret.SaleID,
		SaleNumber: ret.SaleNumber,
		CustomerID: ret.CustomerID,
		ItemID:     ret.ItemID,
		ItemCode:   ret.ItemCode,
		Quantity:   ret.Quantity,
		Type:       string(ret.Type),
		Amount:     ret.Amount,
		Notes:      ret.Notes,
		CreatedAt:  ret.CreatedAt,
	}
}

// SupplierReturnResponse represents a processed supplier return
type SupplierReturnResponse struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number"`
	PurchaseID     uuid.UUID       `json:"purchase_id"`
	PurchaseNumber string          `json:"purchase_number"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	ItemCode       string          `json:"item_code"`
	Quantity       decimal.Decimal `json:"quantity"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToSupplierReturnResponse converts a supplier return to its response form
func ToSupplierReturnResponse(ret *trade.SupplierReturn) SupplierReturnResponse {
	return SupplierReturnResponse{
		ID:             ret.ID,
		Number:         ret.Number,
		PurchaseID:     ret.PurchaseID,
		PurchaseNumber: ret.PurchaseNumber,
		SupplierID:     ret.SupplierID,
		ItemID:         ret.ItemID,
		ItemCode:       ret.ItemCode,
		Quantity:       ret.Quantity,
		Type:           string(ret.Type),
		Amount:         ret.Amount,
		Notes:          ret.Notes,
		CreatedAt:      ret.CreatedAt,
	}
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	EntityKind   string          `json:"entity_kind"`
	EntityID     uuid.UUID       `json:"entity_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a payment and the resulting balance to its response form
func ToPaymentResponse(payment *trade.Payment, balanceAfter decimal.Decimal) PaymentResponse {
	return PaymentResponse{
		ID:           payment.ID,
		Number:       payment.Number,
		EntityKind:   string(payment.Kind()),
		EntityID:     payment.EntityID(),
		Amount:       payment.Amount,
		Method:       string(payment.Method),
		BalanceAfter: balanceAfter,
		Notes:        payment.Notes,
		CreatedAt:    payment.CreatedAt,
	}
}

// StockAdjustmentResponse represents a manual stock adjustment
type StockAdjustmentResponse struct {
	MovementID     uuid.UUID       `json:"movement_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	ItemCode       string          `json:"item_code"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Packs          *PackBreakdown  `json:"packs,omitempty"`
	Reason         string          `json:"reason"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BalanceOverrideResponse represents an administrative balance override
type BalanceOverrideResponse struct {
	EntryID       uuid.UUID       `json:"entry_id"`
	EntityKind    string          `json:"entity_kind"`
	EntityID      uuid.UUID       `json:"entity_id"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ItemStockResponse represents an item's current stock position
type ItemStockResponse struct {
	ItemID        uuid.UUID       `json:"item_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	UnitName      string          `json:"unit_name,omitempty"`
	PiecesPerUnit int64           `json:"pieces_per_unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	Packs         *PackBreakdown  `json:"packs,omitempty"`
	Status        string          `json:"status"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToItemStockResponse converts an item to its stock view
func ToItemStockResponse(item *catalog.Item) ItemStockResponse {
	return ItemStockResponse{
		ItemID:        item.ID,
		Code:          item.Code,
		Name:          item.Name,
		UnitName:      item.UnitName,
		PiecesPerUnit: item.PiecesPerUnit,
		Quantity:      item.Quantity,
		Packs:         packBreakdownFor(item.Quantity, item.PiecesPerUnit),
		Status:        string(item.Status),
		UpdatedAt:     item.UpdatedAt,
		Version:       item.Version,
	}
}

// StockMovementResponse represents one stock movement audit record
type StockMovementResponse struct {
	ID             uuid.UUID       `json:"id"`
	ItemID         uuid.UUID       `json:"item_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Source         string          `json:"source"`
	SourceID       *uuid.UUID      `json:"source_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	OperatorID     *uuid.UUID      `json:"operator_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToStockMovementResponse converts a stock movement to its response form
func ToStockMovementResponse(movement *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:             movement.ID,
		ItemID:         movement.ItemID,
		Type:           string(movement.MovementType),
		Quantity:       movement.Quantity,
		QuantityBefore: movement.QuantityBefore,
		QuantityAfter:  movement.QuantityAfter,
		Source:         string(movement.Source),
		SourceID:       movement.SourceID,
		Reason:         movement.Reason,
		OperatorID:     movement.OperatorID,
		CreatedAt:      movement.CreatedAt,
	}
}

// BalanceEntryResponse represents one balance entry audit record
type BalanceEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	EntityKind    string          `json:"entity_kind"`
	EntityID      uuid.UUID       `json:"entity_id"`
	EntryType     string          `json:"entry_type"`
	Delta         decimal.Decimal `json:"delta"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	OperatorID    *uuid.UUID      `json:"operator_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToBalanceEntryResponse converts a balance entry to its response form
func ToBalanceEntryResponse(entry *partner.BalanceEntry) BalanceEntryResponse {
	return BalanceEntryResponse{
		ID:            entry.ID,
		EntityKind:    string(entry.EntityKind),
		EntityID:      entry.EntityID,
		EntryType:     string(entry.EntryType),
		Delta:         entry.Delta,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		SourceID:      entry.SourceID,
		Note:          entry.Note,
		OperatorID:    entry.OperatorID,
		CreatedAt:     entry.CreatedAt,
	}
}

// EntityBalanceResponse represents the current balance of a customer or
// supplier together with its most recent audit entries
type EntityBalanceResponse struct {
	EntityKind    string                 `json:"entity_kind"`
	EntityID      uuid.UUID              `json:"entity_id"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Balance       decimal.Decimal        `json:"balance"`
	UpdatedAt     time.Time              `json:"updated_at"`
	RecentEntries []BalanceEntryResponse `json:"recent_entries"`
}

// SaleListFilter represents filter options for listing sales
type SaleListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseListFilter represents filter options for listing purchases
type PurchaseListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentListFilter represents filter options for listing payments
type PaymentListFilter struct {
	EntityKind string     `form:"entity_kind" binding:"omitempty,entity_kind"`
	EntityID   *uuid.UUID `form:"entity_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MovementListFilter represents filter options for listing stock movements
type MovementListFilter struct {
	ItemID   *uuid.UUID `form:"item_id"`
	SourceID *uuid.UUID `form:"source_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// EntryListFilter represents filter options for listing balance entries
type EntryListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// toDomainFilter builds a shared.Filter with defaults applied
func toDomainFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if orderBy == "" {
		orderBy = "created_at"
	}
	if orderDir == "" {
		orderDir = "desc"
	}
	return shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
		Filters:  make(map[string]interface{}),
	}
}
