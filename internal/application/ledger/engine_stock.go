package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
)

// AdjustStock applies a manual stock correction outside any trade document:
// stocktake differences, breakage, spoilage. The mandatory reason and the
// acting user end up on the MANUAL stock movement, so manual changes carry
// the same audit trail as documented ones. A DECREASE below zero fails with
// INSUFFICIENT_STOCK like any other outflow.
func (e *TransactionEngine) AdjustStock(ctx context.Context, tenantID, userID uuid.UUID, req AdjustStockRequest) (_ *StockAdjustmentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "adjust")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validateActor(tenantID, userID); err != nil {
		return nil, err
	}

	movementType, err := inventory.ParseMovementType(req.Type)
	if err != nil {
		return nil, err
	}
	if req.Reason == "" {
		return nil, shared.NewValidationError("a manual adjustment requires a reason")
	}

	release, err := e.claimIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var resp StockAdjustmentResponse
	err = e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.ItemRepo().FindByIDForTenantLocked(ctx, tenantID, req.ItemID)
		if err != nil {
			return err
		}

		quantity, err := resolveLineQuantity(req.Quantity, req.Cartons, req.Pieces, item.PiecesPerUnit)
		if err != nil {
			return err
		}

		opts := StockChangeOpts{
			Source:     inventory.MovementSourceManual,
			OperatorID: &userID,
			Reason:     req.Reason,
		}

		var change *StockChange
		if movementType == inventory.MovementTypeIncrease {
			change, err = e.stock.Increase(ctx, repos, item, quantity, opts)
		} else {
			change, err = e.stock.Decrease(ctx, repos, item, quantity, opts)
		}
		if err != nil {
			return err
		}

		events := append(change.Events, inventory.NewStockAdjustedEvent(change.Movement))
		if err := repos.SaveEvents(ctx, events...); err != nil {
			return err
		}

		resp = StockAdjustmentResponse{
			MovementID:     change.Movement.ID,
			ItemID:         item.ID,
			ItemCode:       item.Code,
			Type:           string(movementType),
			Quantity:       quantity,
			QuantityBefore: change.Movement.QuantityBefore,
			QuantityAfter:  change.Movement.QuantityAfter,
			Packs:          packBreakdownFor(change.Movement.QuantityAfter, item.PiecesPerUnit),
			Reason:         req.Reason,
			CreatedAt:      change.Movement.CreatedAt,
		}
		return nil
	})
	if err != nil {
		release()
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemCode, resp.ItemCode,
		telemetry.SpanAttrQuantity, resp.Quantity.String(),
		"movement_type", resp.Type,
	)
	return &resp, nil
}
