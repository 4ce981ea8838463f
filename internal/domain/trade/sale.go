package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentType distinguishes settled and credit documents
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "CASH"
	PaymentTypeCredit PaymentType = "CREDIT"
)

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// IsValid returns true if the payment type is valid
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeCash || t == PaymentTypeCredit
}

// ParsePaymentType parses a payment type name
func ParsePaymentType(s string) (PaymentType, error) {
	pt := PaymentType(s)
	if !pt.IsValid() {
		return "", shared.NewValidationError("unknown payment type %q", s)
	}
	return pt, nil
}

// PaymentMethod is how money changed hands
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodCard        PaymentMethod = "CARD"
	PaymentMethodBank        PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentMethodOther       PaymentMethod = "OTHER"
)

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid returns true if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBank, PaymentMethodMobileMoney, PaymentMethodOther:
		return true
	}
	return false
}

// ParsePaymentMethod parses a payment method name. An empty string defaults to cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return PaymentMethodCash, nil
	}
	pm := PaymentMethod(s)
	if !pm.IsValid() {
		return "", shared.NewValidationError("unknown payment method %q", s)
	}
	return pm, nil
}

// SaleLine represents one item sold on a sale. ReturnedQuantity accumulates
// across customer returns so a line can never be returned beyond its original
// quantity.
type SaleLine struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey"`
	SaleID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	ItemCode         string            `gorm:"type:varchar(50);not null"`
	ItemName         string            `gorm:"type:varchar(200);not null"`
	Quantity         decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	PriceTier        catalog.PriceTier `gorm:"type:varchar(20);not null;default:'default'"`
	UnitPrice        decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	LineDiscount     decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Amount           decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	ReturnedQuantity decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// RemainingReturnable returns how much of this line can still be returned
func (l *SaleLine) RemainingReturnable() decimal.Decimal {
	return l.Quantity.Sub(l.ReturnedQuantity)
}

// Sale represents one completed sale. A sale is append-only: it is built
// line by line, finalized once, and never edited afterwards — corrections
// happen through customer returns.
type Sale struct {
	shared.TenantAggregateRoot
	Number         string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_tenant_number,priority:2"`
	CustomerID     *uuid.UUID            `gorm:"type:uuid;index"`
	CustomerName   string                `gorm:"type:varchar(200)"`
	PaymentType    PaymentType           `gorm:"type:varchar(20);not null"`
	PaymentMethod  PaymentMethod         `gorm:"type:varchar(20);not null;default:'CASH'"`
	DiscountType   *catalog.DiscountType `gorm:"type:varchar(20)"`
	DiscountValue  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	SubtotalAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Notes          string                `gorm:"type:text"`
	Lines          []SaleLine            `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new sale. Credit sales require a customer; cash sales may
// be anonymous walk-ins.
func NewSale(tenantID uuid.UUID, number string, customerID *uuid.UUID, paymentType PaymentType, method PaymentMethod) (*Sale, error) {
	if number == "" {
		return nil, shared.NewValidationError("sale number is required")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewValidationError("unknown payment type %q", string(paymentType))
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("unknown payment method %q", string(method))
	}
	if paymentType == PaymentTypeCredit && customerID == nil {
		return nil, shared.NewValidationError("credit sales require a customer")
	}

	return &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		CustomerID:          customerID,
		PaymentType:         paymentType,
		PaymentMethod:       method,
		SubtotalAmount:      decimal.Zero,
		TotalAmount:         decimal.Zero,
		PaidAmount:          decimal.Zero,
		DiscountValue:       decimal.Zero,
		DiscountAmount:      decimal.Zero,
		Lines:               make([]SaleLine, 0),
	}, nil
}

// AddLine appends a line for an item. An item may appear on at most one line
// per sale so returns can reference lines by (sale, item) unambiguously. The
// line discount is capped at the line's gross amount.
func (s *Sale) AddLine(itemID uuid.UUID, itemCode, itemName string, quantity decimal.Decimal, tier catalog.PriceTier, unitPrice, lineDiscount decimal.Decimal) error {
	if itemID == uuid.Nil {
		return shared.NewValidationError("line item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("line unit price cannot be negative")
	}
	if lineDiscount.IsNegative() {
		return shared.NewValidationError("line discount cannot be negative")
	}
	for idx := range s.Lines {
		if s.Lines[idx].ItemID == itemID {
			return shared.NewValidationError("item %s appears on more than one line", itemCode)
		}
	}

	amount, applied := catalog.ApplyLineDiscount(unitPrice, quantity, lineDiscount)
	now := time.Now()

	s.Lines = append(s.Lines, SaleLine{
		ID:               uuid.New(),
		SaleID:           s.ID,
		ItemID:           itemID,
		ItemCode:         itemCode,
		ItemName:         itemName,
		Quantity:         quantity,
		PriceTier:        tier,
		UnitPrice:        unitPrice,
		LineDiscount:     applied,
		Amount:           amount,
		ReturnedQuantity: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	s.recalculateTotals()

	return nil
}

// SetOrderDiscount applies an order-level discount over the line subtotal
func (s *Sale) SetOrderDiscount(discountType catalog.DiscountType, value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewValidationError("order discount value cannot be negative")
	}
	if _, err := catalog.ParseDiscountType(string(discountType)); err != nil {
		return err
	}

	s.DiscountType = &discountType
	s.DiscountValue = value
	s.recalculateTotals()

	return nil
}

// Finalize fixes the paid amount and emits the sale event. Cash sales are
// always fully paid; credit sales clamp the tendered amount into
// [0, TotalAmount] so the recorded paid amount never exceeds the total.
func (s *Sale) Finalize(paidAmount decimal.Decimal) error {
	if len(s.Lines) == 0 {
		return shared.NewValidationError("sale requires at least one line")
	}

	switch s.PaymentType {
	case PaymentTypeCash:
		s.PaidAmount = s.TotalAmount
	case PaymentTypeCredit:
		paid := paidAmount
		if paid.IsNegative() {
			paid = decimal.Zero
		}
		if paid.GreaterThan(s.TotalAmount) {
			paid = s.TotalAmount
		}
		s.PaidAmount = paid
	}
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewSaleCreatedEvent(s))

	return nil
}

// OutstandingAmount returns the unpaid remainder owed by the customer
func (s *Sale) OutstandingAmount() decimal.Decimal {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// LineForItem returns the line selling the given item
func (s *Sale) LineForItem(itemID uuid.UUID) (*SaleLine, error) {
	for idx := range s.Lines {
		if s.Lines[idx].ItemID == itemID {
			return &s.Lines[idx], nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Sale "+s.Number+" has no line for this item")
}

// RegisterReturn accumulates a customer return against the line for itemID.
// Fails with RETURN_EXCEEDS_ORIGINAL when the cumulative returned quantity
// would exceed the quantity originally sold.
func (s *Sale) RegisterReturn(itemID uuid.UUID, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("return quantity must be positive")
	}

	line, err := s.LineForItem(itemID)
	if err != nil {
		return err
	}

	if quantity.GreaterThan(line.RemainingReturnable()) {
		return shared.NewDomainError("RETURN_EXCEEDS_ORIGINAL",
			"Return of "+quantity.String()+" exceeds remaining returnable "+line.RemainingReturnable().String()+
				" on sale "+s.Number)
	}

	line.ReturnedQuantity = line.ReturnedQuantity.Add(quantity)
	line.UpdatedAt = time.Now()
	s.UpdatedAt = line.UpdatedAt
	s.IncrementVersion()

	return nil
}

// recalculateTotals recomputes subtotal, order discount and total from the lines
func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	for idx := range s.Lines {
		subtotal = subtotal.Add(s.Lines[idx].Amount)
	}
	s.SubtotalAmount = subtotal

	if s.DiscountType != nil {
		s.TotalAmount, s.DiscountAmount = catalog.ApplyOrderDiscount(subtotal, *s.DiscountType, s.DiscountValue)
	} else {
		s.TotalAmount = subtotal
		s.DiscountAmount = decimal.Zero
	}
	s.UpdatedAt = time.Now()
}
