package inventory

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeStockMovement = "StockMovement"

// Event type constants
const EventTypeStockAdjusted = "StockAdjusted"

// StockAdjustedEvent is published when stock is changed by a manual
// adjustment rather than by a trade document.
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	MovementID     uuid.UUID       `json:"movement_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	MovementType   MovementType    `json:"movement_type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Reason         string          `json:"reason"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent from the movement
// that recorded the adjustment.
func NewStockAdjustedEvent(movement *StockMovement) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockMovement, movement.ID, movement.TenantID),
		MovementID:      movement.ID,
		ItemID:          movement.ItemID,
		MovementType:    movement.MovementType,
		Quantity:        movement.Quantity,
		QuantityBefore:  movement.QuantityBefore,
		QuantityAfter:   movement.QuantityAfter,
		Reason:          movement.Reason,
	}
}
