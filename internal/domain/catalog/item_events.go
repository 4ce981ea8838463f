package catalog

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeItem = "Item"

// Event type constants
const (
	EventTypeItemCreated    = "ItemCreated"
	EventTypeStockIncreased = "StockIncreased"
	EventTypeStockDecreased = "StockDecreased"
)

// ItemCreatedEvent is published when a new item is created
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID        uuid.UUID `json:"item_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	UnitName      string    `json:"unit_name,omitempty"`
	PiecesPerUnit int64     `json:"pieces_per_unit"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID, item.TenantID),
		ItemID:          item.ID,
		Code:            item.Code,
		Name:            item.Name,
		UnitName:        item.UnitName,
		PiecesPerUnit:   item.PiecesPerUnit,
	}
}

// StockIncreasedEvent is published when stock is added to an item
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	ItemID         uuid.UUID       `json:"item_id"`
	Code           string          `json:"code"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
}

// NewStockIncreasedEvent creates a new StockIncreasedEvent
func NewStockIncreasedEvent(item *Item, quantity, before, after decimal.Decimal) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, AggregateTypeItem, item.ID, item.TenantID),
		ItemID:          item.ID,
		Code:            item.Code,
		Quantity:        quantity,
		QuantityBefore:  before,
		QuantityAfter:   after,
	}
}

// StockDecreasedEvent is published when stock is removed from an item
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	ItemID         uuid.UUID       `json:"item_id"`
	Code           string          `json:"code"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
}

// NewStockDecreasedEvent creates a new StockDecreasedEvent
func NewStockDecreasedEvent(item *Item, quantity, before, after decimal.Decimal) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, AggregateTypeItem, item.ID, item.TenantID),
		ItemID:          item.ID,
		Code:            item.Code,
		Quantity:        quantity,
		QuantityBefore:  before,
		QuantityAfter:   after,
	}
}
