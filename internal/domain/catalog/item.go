package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the lifecycle status of an item
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

// UnitMode describes how an item's quantity is entered and displayed
type UnitMode string

const (
	// UnitModeCarton items are counted in cartons plus loose pieces.
	UnitModeCarton UnitMode = "carton"
	// UnitModeFractional items carry a unit name and accept fractional quantities (e.g. 1.5 kg).
	UnitModeFractional UnitMode = "fractional"
	// UnitModeCount items are counted in whole units.
	UnitModeCount UnitMode = "count"
)

// Item represents a stocked product with tiered prices.
// It is the aggregate root for stock operations: Quantity is mutated only
// through IncreaseStock/DecreaseStock so the non-negative invariant holds.
type Item struct {
	shared.TenantAggregateRoot
	Code           string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_item_tenant_code,priority:2"`
	Name           string           `gorm:"type:varchar(200);not null"`
	Barcode        string           `gorm:"type:varchar(50);index"`
	UnitName       string           `gorm:"type:varchar(20)"`
	PiecesPerUnit  int64            `gorm:"not null;default:1"`
	Quantity       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	RetailPrice    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	WholesalePrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	PromoPrice     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Status         ItemStatus       `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new item
func NewItem(tenantID uuid.UUID, code, name, unitName string, piecesPerUnit int64) (*Item, error) {
	if err := validateItemCode(code); err != nil {
		return nil, err
	}
	if err := validateItemName(name); err != nil {
		return nil, err
	}
	if piecesPerUnit < 1 || piecesPerUnit > valueobject.MaxPiecesPerUnit {
		return nil, shared.NewValidationError("pieces per unit must be between 1 and %d", valueobject.MaxPiecesPerUnit)
	}

	item := &Item{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		UnitName:            unitName,
		PiecesPerUnit:       piecesPerUnit,
		Quantity:            decimal.Zero,
		CostPrice:           decimal.Zero,
		SellingPrice:        decimal.Zero,
		Status:              ItemStatusActive,
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))

	return item, nil
}

// Mode returns how this item's quantity is entered: cartons+pieces when
// PiecesPerUnit > 1, fractional when a unit name is set, whole counts otherwise.
func (i *Item) Mode() UnitMode {
	if i.PiecesPerUnit > 1 {
		return UnitModeCarton
	}
	if i.UnitName != "" {
		return UnitModeFractional
	}
	return UnitModeCount
}

// SetPrices sets the cost and default selling price
func (i *Item) SetPrices(costPrice, sellingPrice decimal.Decimal) error {
	if costPrice.IsNegative() {
		return shared.NewValidationError("cost price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewValidationError("selling price cannot be negative")
	}

	i.CostPrice = costPrice
	i.SellingPrice = sellingPrice
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// SetTierPrices sets the optional price tiers. A nil price removes the tier,
// which makes it unavailable to the pricing resolver.
func (i *Item) SetTierPrices(retail, wholesale, promo *decimal.Decimal) error {
	for _, p := range []*decimal.Decimal{retail, wholesale, promo} {
		if p != nil && p.IsNegative() {
			return shared.NewValidationError("tier price cannot be negative")
		}
	}

	i.RetailPrice = retail
	i.WholesalePrice = wholesale
	i.PromoPrice = promo
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// IncreaseStock adds quantity to on-hand stock
func (i *Item) IncreaseStock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("stock increase quantity must be positive")
	}

	before := i.Quantity
	i.Quantity = i.Quantity.Add(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockIncreasedEvent(i, quantity, before, i.Quantity))

	return nil
}

// DecreaseStock removes quantity from on-hand stock.
// Fails with INSUFFICIENT_STOCK when the decrease would drive stock below zero.
func (i *Item) DecreaseStock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("stock decrease quantity must be positive")
	}
	if i.Quantity.LessThan(quantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			"Insufficient stock for item "+i.Code+": have "+i.Quantity.String()+", need "+quantity.String())
	}

	before := i.Quantity
	i.Quantity = i.Quantity.Sub(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewStockDecreasedEvent(i, quantity, before, i.Quantity))

	return nil
}

// CanFulfill returns true if on-hand stock covers the requested quantity
func (i *Item) CanFulfill(quantity decimal.Decimal) bool {
	return i.Quantity.GreaterThanOrEqual(quantity)
}

// StockInPacks decomposes the on-hand quantity into cartons and loose pieces
func (i *Item) StockInPacks() (valueobject.PackQuantity, error) {
	return valueobject.FromQuantity(i.Quantity, i.PiecesPerUnit)
}

func validateItemCode(code string) error {
	if code == "" {
		return shared.NewValidationError("item code is required")
	}
	if len(code) > 50 {
		return shared.NewValidationError("item code cannot exceed 50 characters")
	}
	return nil
}

func validateItemName(name string) error {
	if name == "" {
		return shared.NewValidationError("item name is required")
	}
	if len(name) > 200 {
		return shared.NewValidationError("item name cannot exceed 200 characters")
	}
	return nil
}
