package valueobject

import (
	"fmt"

	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places stock quantities are stored
// with. It matches the decimal(18,4) columns in the schema.
const QuantityScale = 4

// MaxPiecesPerUnit bounds an item's pieces-per-carton so that a single piece
// remains representable at QuantityScale (1/piecesPerUnit must survive the
// round trip through a 4-decimal quantity).
const MaxPiecesPerUnit = 9999

// PackQuantity is the physical carton+pieces representation of a stock
// quantity for carton-mode items. It is immutable.
type PackQuantity struct {
	cartons int64
	pieces  int64
}

// NewPackQuantity creates a PackQuantity. Pieces are validated against the
// item's piecesPerUnit at conversion time, not here.
func NewPackQuantity(cartons, pieces int64) (PackQuantity, error) {
	if cartons < 0 {
		return PackQuantity{}, shared.NewDomainError("INVALID_UNIT_INPUT", "Cartons cannot be negative")
	}
	if pieces < 0 {
		return PackQuantity{}, shared.NewDomainError("INVALID_UNIT_INPUT", "Pieces cannot be negative")
	}
	return PackQuantity{cartons: cartons, pieces: pieces}, nil
}

// Cartons returns the whole-carton count
func (p PackQuantity) Cartons() int64 {
	return p.cartons
}

// Pieces returns the loose-piece count
func (p PackQuantity) Pieces() int64 {
	return p.pieces
}

// IsZero returns true when both cartons and pieces are zero
func (p PackQuantity) IsZero() bool {
	return p.cartons == 0 && p.pieces == 0
}

// String renders the pack quantity for logs and display
func (p PackQuantity) String() string {
	return fmt.Sprintf("%d+%d", p.cartons, p.pieces)
}

// ToQuantity converts a carton+pieces input into a single decimal stock
// quantity: cartons + pieces/piecesPerUnit, rounded to QuantityScale.
// Pieces must be a proper remainder (0 <= pieces < piecesPerUnit).
func ToQuantity(cartons, pieces, piecesPerUnit int64) (decimal.Decimal, error) {
	if err := validatePiecesPerUnit(piecesPerUnit); err != nil {
		return decimal.Zero, err
	}
	if cartons < 0 {
		return decimal.Zero, shared.NewDomainError("INVALID_UNIT_INPUT", "Cartons cannot be negative")
	}
	if pieces < 0 {
		return decimal.Zero, shared.NewDomainError("INVALID_UNIT_INPUT", "Pieces cannot be negative")
	}
	if pieces >= piecesPerUnit {
		return decimal.Zero, shared.NewDomainError("INVALID_UNIT_INPUT",
			fmt.Sprintf("Pieces must be less than pieces per unit (%d)", piecesPerUnit))
	}

	quantity := decimal.NewFromInt(cartons).
		Add(decimal.NewFromInt(pieces).Div(decimal.NewFromInt(piecesPerUnit))).
		Round(QuantityScale)
	return quantity, nil
}

// ToQuantityPacked converts a PackQuantity using the item's piecesPerUnit
func ToQuantityPacked(pack PackQuantity, piecesPerUnit int64) (decimal.Decimal, error) {
	return ToQuantity(pack.cartons, pack.pieces, piecesPerUnit)
}

// FromQuantity decomposes a decimal stock quantity back into cartons and
// pieces, rounding to the nearest whole piece. It is exact for any quantity
// produced by ToQuantity; for quantities that do not align to a piece
// boundary it yields the nearest representable packing. The packed form is
// only meaningful for carton-mode items (piecesPerUnit > 1).
func FromQuantity(quantity decimal.Decimal, piecesPerUnit int64) (PackQuantity, error) {
	if err := validatePiecesPerUnit(piecesPerUnit); err != nil {
		return PackQuantity{}, err
	}
	if quantity.IsNegative() {
		return PackQuantity{}, shared.NewDomainError("INVALID_UNIT_INPUT", "Quantity cannot be negative")
	}

	cartons := quantity.Floor()
	pieces := quantity.Sub(cartons).
		Mul(decimal.NewFromInt(piecesPerUnit)).
		Round(0)

	c := cartons.IntPart()
	p := pieces.IntPart()

	// Rounding may push the fractional part up to a full carton.
	if p >= piecesPerUnit {
		c++
		p -= piecesPerUnit
	}

	return PackQuantity{cartons: c, pieces: p}, nil
}

func validatePiecesPerUnit(piecesPerUnit int64) error {
	if piecesPerUnit < 1 {
		return shared.NewDomainError("INVALID_UNIT_INPUT", "Pieces per unit must be at least 1")
	}
	if piecesPerUnit > MaxPiecesPerUnit {
		return shared.NewDomainError("INVALID_UNIT_INPUT",
			fmt.Sprintf("Pieces per unit cannot exceed %d", MaxPiecesPerUnit))
	}
	return nil
}
