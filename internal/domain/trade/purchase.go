package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseLine represents one item received on a purchase
type PurchaseLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PurchaseID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemCode         string          `gorm:"type:varchar(50);not null"`
	ItemName         string          `gorm:"type:varchar(200);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineDiscount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReturnedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (PurchaseLine) TableName() string {
	return "purchase_lines"
}

// RemainingReturnable returns how much of this line can still be sent back
func (l *PurchaseLine) RemainingReturnable() decimal.Decimal {
	return l.Quantity.Sub(l.ReturnedQuantity)
}

// Purchase represents goods received from a supplier. Like a sale it is
// append-only; corrections happen through supplier returns.
type Purchase struct {
	shared.TenantAggregateRoot
	Number         string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_tenant_number,priority:2"`
	SupplierID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	SupplierName   string                `gorm:"type:varchar(200)"`
	PaymentType    PaymentType           `gorm:"type:varchar(20);not null"`
	PaymentMethod  PaymentMethod         `gorm:"type:varchar(20);not null;default:'CASH'"`
	DiscountType   *catalog.DiscountType `gorm:"type:varchar(20)"`
	DiscountValue  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	SubtotalAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Notes          string                `gorm:"type:text"`
	Lines          []PurchaseLine        `gorm:"foreignKey:PurchaseID;references:ID"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewPurchase creates a new purchase. Purchases always name a supplier.
func NewPurchase(tenantID uuid.UUID, number string, supplierID uuid.UUID, paymentType PaymentType, method PaymentMethod) (*Purchase, error) {
	if number == "" {
		return nil, shared.NewValidationError("purchase number is required")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("purchases require a supplier")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewValidationError("unknown payment type %q", string(paymentType))
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("unknown payment method %q", string(method))
	}

	return &Purchase{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		SupplierID:          supplierID,
		PaymentType:         paymentType,
		PaymentMethod:       method,
		SubtotalAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
		PaidAmount:          decimal.Zero,
		DiscountValue:       decimal.Zero,
		DiscountAmount:      decimal.Zero,
		Lines:               make([]PurchaseLine, 0),
	}, nil
}

// AddLine appends a line for an item received at the given unit cost. As on
// sales, an item may appear on at most one line per purchase.
func (p *Purchase) AddLine(itemID uuid.UUID, itemCode, itemName string, quantity, unitCost, lineDiscount decimal.Decimal) error {
	if itemID == uuid.Nil {
		return shared.NewValidationError("line item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("line quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewValidationError("line unit cost cannot be negative")
	}
	if lineDiscount.IsNegative() {
		return shared.NewValidationError("line discount cannot be negative")
	}
	for idx := range p.Lines {
		if p.Lines[idx].ItemID == itemID {
			return shared.NewValidationError("item %s appears on more than one line", itemCode)
		}
	}

	amount, applied := catalog.ApplyLineDiscount(unitCost, quantity, lineDiscount)
	now := time.Now()

	p.Lines = append(p.Lines, PurchaseLine{
		ID:               uuid.New(),
		PurchaseID:       p.ID,
		ItemID:           itemID,
		ItemCode:         itemCode,
		ItemName:         itemName,
		Quantity:         quantity,
		UnitCost:         unitCost,
		LineDiscount:     applied,
		Amount:           amount,
		ReturnedQuantity: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	p.recalculateTotals()

	return nil
}

// SetOrderDiscount applies an order-level discount over the line subtotal
func (p *Purchase) SetOrderDiscount(discountType catalog.DiscountType, value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewValidationError("order discount value cannot be negative")
	}
	if _, err := catalog.ParseDiscountType(string(discountType)); err != nil {
		return err
	}

	p.DiscountType = &discountType
	p.DiscountValue = value
	p.recalculateTotals()

	return nil
}

// Finalize fixes the paid amount and emits the purchase event, with the same
// clamping rules as Sale.Finalize. The unpaid remainder of a credit purchase
// becomes what the business owes the supplier.
func (p *Purchase) Finalize(paidAmount decimal.Decimal) error {
	if len(p.Lines) == 0 {
		return shared.NewValidationError("purchase requires at least one line")
	}

	switch p.PaymentType {
	case PaymentTypeCash:
		p.PaidAmount = p.TotalAmount
	case PaymentTypeCredit:
		paid := paidAmount
		if paid.IsNegative() {
			paid = decimal.Zero
		}
		if paid.GreaterThan(p.TotalAmount) {
			paid = p.TotalAmount
		}
		p.PaidAmount = paid
	}
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewPurchaseCreatedEvent(p))

	return nil
}

// OutstandingAmount returns the unpaid remainder owed to the supplier
func (p *Purchase) OutstandingAmount() decimal.Decimal {
	return p.TotalAmount.Sub(p.PaidAmount)
}

// LineForItem returns the line receiving the given item
func (p *Purchase) LineForItem(itemID uuid.UUID) (*PurchaseLine, error) {
	for idx := range p.Lines {
		if p.Lines[idx].ItemID == itemID {
			return &p.Lines[idx], nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Purchase "+p.Number+" has no line for this item")
}

// RegisterReturn accumulates a supplier return against the line for itemID
func (p *Purchase) RegisterReturn(itemID uuid.UUID, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("return quantity must be positive")
	}

	line, err := p.LineForItem(itemID)
	if err != nil {
		return err
	}

	if quantity.GreaterThan(line.RemainingReturnable()) {
		return shared.NewDomainError("RETURN_EXCEEDS_ORIGINAL",
			"Return of "+quantity.String()+" exceeds remaining returnable "+line.RemainingReturnable().String()+
				" on purchase "+p.Number)
	}

	line.ReturnedQuantity = line.ReturnedQuantity.Add(quantity)
	line.UpdatedAt = time.Now()
	p.UpdatedAt = line.UpdatedAt
	p.IncrementVersion()

	return nil
}

func (p *Purchase) recalculateTotals() {
	subtotal := decimal.Zero
	for idx := range p.Lines {
		subtotal = subtotal.Add(p.Lines[idx].Amount)
	}
	p.SubtotalAmount = subtotal

	if p.DiscountType != nil {
		p.TotalAmount, p.DiscountAmount = catalog.ApplyOrderDiscount(subtotal, *p.DiscountType, p.DiscountValue)
	} else {
		p.TotalAmount = subtotal
		p.DiscountAmount = decimal.Zero
	}
	p.UpdatedAt = time.Now()
}
