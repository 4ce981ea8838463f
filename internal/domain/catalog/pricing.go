package catalog

import (
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceTier identifies which of an item's prices a sale line uses
type PriceTier string

const (
	PriceTierDefault   PriceTier = "default"
	PriceTierRetail    PriceTier = "retail"
	PriceTierWholesale PriceTier = "wholesale"
	PriceTierPromo     PriceTier = "promo"
)

// ParsePriceTier parses a tier name. An empty string selects the default tier.
func ParsePriceTier(s string) (PriceTier, error) {
	switch PriceTier(s) {
	case "":
		return PriceTierDefault, nil
	case PriceTierDefault, PriceTierRetail, PriceTierWholesale, PriceTierPromo:
		return PriceTier(s), nil
	default:
		return "", shared.NewValidationError("unknown price tier %q", s)
	}
}

// IsValid returns true for a known tier name
func (t PriceTier) IsValid() bool {
	switch t {
	case PriceTierDefault, PriceTierRetail, PriceTierWholesale, PriceTierPromo:
		return true
	}
	return false
}

// DiscountType distinguishes percentage and fixed-amount order discounts
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeAmount  DiscountType = "amount"
)

// ParseDiscountType parses a discount type name
func ParseDiscountType(s string) (DiscountType, error) {
	switch DiscountType(s) {
	case DiscountTypePercent, DiscountTypeAmount:
		return DiscountType(s), nil
	default:
		return "", shared.NewValidationError("unknown discount type %q", s)
	}
}

// UnitPriceFor resolves the effective unit price for a tier.
// The default tier is always present (the selling price); the optional tiers
// fail with TIER_UNAVAILABLE when not set on the item, and the caller decides
// whether to fall back to the default.
func (i *Item) UnitPriceFor(tier PriceTier) (decimal.Decimal, error) {
	switch tier {
	case PriceTierDefault, "":
		return i.SellingPrice, nil
	case PriceTierRetail:
		if i.RetailPrice == nil {
			return decimal.Zero, tierUnavailable(i, "retail")
		}
		return *i.RetailPrice, nil
	case PriceTierWholesale:
		if i.WholesalePrice == nil {
			return decimal.Zero, tierUnavailable(i, "wholesale")
		}
		return *i.WholesalePrice, nil
	case PriceTierPromo:
		if i.PromoPrice == nil {
			return decimal.Zero, tierUnavailable(i, "promo")
		}
		return *i.PromoPrice, nil
	default:
		return decimal.Zero, shared.NewValidationError("unknown price tier %q", string(tier))
	}
}

func tierUnavailable(i *Item, tier string) error {
	return shared.NewDomainError("TIER_UNAVAILABLE",
		"Item "+i.Code+" has no "+tier+" price")
}

// ApplyLineDiscount computes a line's net amount from unit price, quantity and
// an absolute discount. The discount is capped at the line's gross amount, so
// the net amount never goes below zero. It returns the net amount and the
// discount actually applied.
func ApplyLineDiscount(unitPrice, quantity, discount decimal.Decimal) (net, applied decimal.Decimal) {
	gross := unitPrice.Mul(quantity)
	applied = discount
	if applied.IsNegative() {
		applied = decimal.Zero
	}
	if applied.GreaterThan(gross) {
		applied = gross
	}
	net = gross.Sub(applied)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return net, applied
}

// ApplyOrderDiscount computes the order-level discount over a subtotal.
// Percent discounts take value as a percentage of the subtotal; amount
// discounts take value directly. Either way the discount is capped at the
// subtotal and the resulting total floors at zero. It returns the total and
// the discount actually applied.
func ApplyOrderDiscount(subtotal decimal.Decimal, discountType DiscountType, value decimal.Decimal) (total, applied decimal.Decimal) {
	if value.IsNegative() {
		value = decimal.Zero
	}

	switch discountType {
	case DiscountTypePercent:
		applied = subtotal.Mul(value).Div(decimal.NewFromInt(100)).Round(4)
	case DiscountTypeAmount:
		applied = value
	default:
		applied = decimal.Zero
	}

	if applied.GreaterThan(subtotal) {
		applied = subtotal
	}
	total = subtotal.Sub(applied)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total, applied
}
