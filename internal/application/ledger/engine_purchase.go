package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// CreatePurchase creates a purchase: the mirror of CreateSale. Stock is
// incremented per line, lines are costed from the item's cost price unless
// the request overrides it, and any unpaid remainder is booked on the
// supplier's balance.
func (e *TransactionEngine) CreatePurchase(ctx context.Context, tenantID, userID uuid.UUID, req CreatePurchaseRequest) (_ *PurchaseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "create",
		telemetry.WithAttribute("line_count", len(req.Lines)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validateActor(tenantID, userID); err != nil {
		return nil, err
	}

	paymentType, err := trade.ParsePaymentType(req.PaymentType)
	if err != nil {
		return nil, err
	}
	paymentMethod, err := trade.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("a purchase requires at least one line")
	}

	release, err := e.claimIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var resp PurchaseResponse
	err = e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.PurchaseRepo().GenerateNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		purchase, err := trade.NewPurchase(tenantID, number, req.SupplierID, paymentType, paymentMethod)
		if err != nil {
			return err
		}
		purchase.SetCreatedBy(userID)
		purchase.Notes = req.Notes

		supplier, err := repos.SupplierRepo().FindByIDForTenant(ctx, tenantID, req.SupplierID)
		if err != nil {
			return err
		}
		purchase.SupplierName = supplier.Name

		events := make([]shared.DomainEvent, 0, len(req.Lines)+2)
		ppuByItem := make(map[uuid.UUID]int64, len(req.Lines))

		for _, line := range req.Lines {
			item, err := repos.ItemRepo().FindByIDForTenantLocked(ctx, tenantID, line.ItemID)
			if err != nil {
				return err
			}
			ppuByItem[item.ID] = item.PiecesPerUnit

			quantity, err := resolveLineQuantity(line.Quantity, line.Cartons, line.Pieces, item.PiecesPerUnit)
			if err != nil {
				return err
			}

			unitCost := item.CostPrice
			if line.UnitCost != nil {
				unitCost = *line.UnitCost
			}

			if err := purchase.AddLine(item.ID, item.Code, item.Name, quantity, unitCost, line.LineDiscount); err != nil {
				return err
			}

			change, err := e.stock.Increase(ctx, repos, item, quantity, StockChangeOpts{
				Source:     inventory.MovementSourcePurchase,
				SourceID:   &purchase.ID,
				OperatorID: &userID,
			})
			if err != nil {
				return err
			}
			events = append(events, change.Events...)
		}

		if req.DiscountType != "" {
			discountType, err := catalog.ParseDiscountType(req.DiscountType)
			if err != nil {
				return err
			}
			if err := purchase.SetOrderDiscount(discountType, req.DiscountValue); err != nil {
				return err
			}
		}

		if err := purchase.Finalize(req.PaidAmount); err != nil {
			return err
		}

		outstanding := purchase.OutstandingAmount()
		if outstanding.GreaterThan(decimal.Zero) {
			change, err := e.balance.ApplyDelta(ctx, repos, tenantID, partner.EntityKindSupplier, purchase.SupplierID,
				outstanding, partner.BalanceEntryTypeCreditPurchase, BalanceChangeOpts{
					SourceID:   &purchase.ID,
					OperatorID: &userID,
					Note:       "Credit purchase " + purchase.Number,
				})
			if err != nil {
				return err
			}
			events = append(events, change.Events...)
		}

		if err := repos.PurchaseRepo().Save(ctx, purchase); err != nil {
			return err
		}

		events = append(events, drainEvents(purchase)...)
		if err := repos.SaveEvents(ctx, events...); err != nil {
			return err
		}

		resp = ToPurchaseResponse(purchase, ppuByItem)
		return nil
	})
	if err != nil {
		release()
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, resp.ID.String(),
		telemetry.SpanAttrDocumentNumber, resp.Number,
		telemetry.SpanAttrAmount, resp.TotalAmount.String(),
	)
	return &resp, nil
}
