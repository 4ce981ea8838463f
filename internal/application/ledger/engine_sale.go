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

// CreateSale creates a sale: it resolves quantities and tier prices per line,
// recomputes all totals, decrements stock per line, clamps the paid amount,
// and books any unpaid remainder on the customer's balance. The whole
// operation commits atomically; the first failing line aborts everything.
func (e *TransactionEngine) CreateSale(ctx context.Context, tenantID, userID uuid.UUID, req CreateSaleRequest) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create",
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
		return nil, shared.NewValidationError("a sale requires at least one line")
	}

	release, err := e.claimIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var resp SaleResponse
	err = e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.SaleRepo().GenerateNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		sale, err := trade.NewSale(tenantID, number, req.CustomerID, paymentType, paymentMethod)
		if err != nil {
			return err
		}
		sale.SetCreatedBy(userID)
		sale.Notes = req.Notes

		if req.CustomerID != nil {
			customer, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, *req.CustomerID)
			if err != nil {
				return err
			}
			sale.CustomerName = customer.Name
		}

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

			tier, err := catalog.ParsePriceTier(line.PriceTier)
			if err != nil {
				return err
			}
			unitPrice, err := item.UnitPriceFor(tier)
			if err != nil {
				return err
			}

			if err := sale.AddLine(item.ID, item.Code, item.Name, quantity, tier, unitPrice, line.LineDiscount); err != nil {
				return err
			}

			change, err := e.stock.Decrease(ctx, repos, item, quantity, StockChangeOpts{
				Source:     inventory.MovementSourceSale,
				SourceID:   &sale.ID,
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
			if err := sale.SetOrderDiscount(discountType, req.DiscountValue); err != nil {
				return err
			}
		}

		if err := sale.Finalize(req.PaidAmount); err != nil {
			return err
		}

		if sale.CustomerID != nil {
			outstanding := sale.OutstandingAmount()
			if outstanding.GreaterThan(decimal.Zero) {
				change, err := e.balance.ApplyDelta(ctx, repos, tenantID, partner.EntityKindCustomer, *sale.CustomerID,
					outstanding, partner.BalanceEntryTypeCreditSale, BalanceChangeOpts{
						SourceID:   &sale.ID,
						OperatorID: &userID,
						Note:       "Credit sale " + sale.Number,
					})
				if err != nil {
					return err
				}
				events = append(events, change.Events...)
			}
		}

		if err := repos.SaleRepo().Save(ctx, sale); err != nil {
			return err
		}

		events = append(events, drainEvents(sale)...)
		if err := repos.SaveEvents(ctx, events...); err != nil {
			return err
		}

		resp = ToSaleResponse(sale, ppuByItem)
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
