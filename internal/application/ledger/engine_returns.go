package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// ProcessCustomerReturn takes goods back from a customer against one sale
// line. Stock comes back in; the balance effect depends on the return type:
// CASH settles at the drawer, CREDIT credits the customer's balance by the
// caller-supplied amount (a credit note, allowed to go negative), EXCHANGE
// has no balance effect. Cumulative returns per line never exceed the
// quantity originally sold.
func (e *TransactionEngine) ProcessCustomerReturn(ctx context.Context, tenantID, userID uuid.UUID, req ProcessCustomerReturnRequest) (_ *CustomerReturnResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "return", "customer",
		telemetry.WithAttribute(telemetry.SpanAttrSourceType, "sale"),
		telemetry.WithAttribute(telemetry.SpanAttrSourceID, req.SaleID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validateActor(tenantID, userID); err != nil {
		return nil, err
	}

	returnType, err := trade.ParseReturnType(req.Type)
	if err != nil {
		return nil, err
	}

	release, err := e.claimIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var resp CustomerReturnResponse
	err = e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.CustomerReturnRepo().GenerateNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		sale, err := repos.SaleRepo().FindByIDForTenantLocked(ctx, tenantID, req.SaleID)
		if err != nil {
			return err
		}

		ret, err := trade.NewCustomerReturn(tenantID, number, sale, req.ItemID, req.Quantity, returnType, req.Amount)
		if err != nil {
			return err
		}
		ret.SetCreatedBy(userID)
		ret.Notes = req.Notes

		if err := sale.RegisterReturn(req.ItemID, req.Quantity); err != nil {
			return err
		}
		if err := repos.SaleRepo().SaveWithLock(ctx, sale); err != nil {
			return err
		}

		item, err := repos.ItemRepo().FindByIDForTenantLocked(ctx, tenantID, req.ItemID)
		if err != nil {
			return err
		}
		stockChange, err := e.stock.Increase(ctx, repos, item, req.Quantity, StockChangeOpts{
			Source:     inventory.MovementSourceCustomerReturn,
			SourceID:   &ret.ID,
			OperatorID: &userID,
		})
		if err != nil {
			return err
		}

		events := make([]shared.DomainEvent, 0, 4)
		events = append(events, stockChange.Events...)

		if ret.CreditsCustomer() && req.Amount.GreaterThan(decimal.Zero) {
			balanceChange, err := e.balance.ApplyDelta(ctx, repos, tenantID, partner.EntityKindCustomer, *ret.CustomerID,
				req.Amount.Neg(), partner.BalanceEntryTypeReturnCredit, BalanceChangeOpts{
					AllowNegative: true,
					SourceID:      &ret.ID,
					OperatorID:    &userID,
					Note:          "Customer return " + ret.Number,
				})
			if err != nil {
				return err
			}
			events = append(events, balanceChange.Events...)
		}

		if err := repos.CustomerReturnRepo().Save(ctx, ret); err != nil {
			return err
		}

		events = append(events, drainEvents(ret)...)
		events = append(events, drainEvents(sale)...)
		if err := repos.SaveEvents(ctx, events...); err != nil {
			return err
		}

		resp = ToCustomerReturnResponse(ret)
		return nil
	})
	if err != nil {
		release()
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, resp.ID.String(),
		telemetry.SpanAttrDocumentNumber, resp.Number,
		telemetry.SpanAttrQuantity, resp.Quantity.String(),
	)
	return &resp, nil
}

// ProcessSupplierReturn sends goods back to a supplier against one purchase
// line. Stock goes out, so the return fails with INSUFFICIENT_STOCK when the
// goods are no longer held. CREDIT reduces what the business owes the
// supplier by the caller-supplied amount; CASH refunds arrive externally.
func (e *TransactionEngine) ProcessSupplierReturn(ctx context.Context, tenantID, userID uuid.UUID, req ProcessSupplierReturnRequest) (_ *SupplierReturnResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "return", "supplier",
		telemetry.WithAttribute(telemetry.SpanAttrSourceType, "purchase"),
		telemetry.WithAttribute(telemetry.SpanAttrSourceID, req.PurchaseID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validateActor(tenantID, userID); err != nil {
		return nil, err
	}

	returnType, err := trade.ParseReturnType(req.Type)
	if err != nil {
		return nil, err
	}

	release, err := e.claimIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var resp SupplierReturnResponse
	err = e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.SupplierReturnRepo().GenerateNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		purchase, err := repos.PurchaseRepo().FindByIDForTenantLocked(ctx, tenantID, req.PurchaseID)
		if err != nil {
			return err
		}

		ret, err := trade.NewSupplierReturn(tenantID, number, purchase, req.ItemID, req.Quantity, returnType, req.Amount)
		if err != nil {
			return err
		}
		ret.SetCreatedBy(userID)
		ret.Notes = req.Notes

		if err := purchase.RegisterReturn(req.ItemID, req.Quantity); err != nil {
			return err
		}
		if err := repos.PurchaseRepo().SaveWithLock(ctx, purchase); err != nil {
			return err
		}

		item, err := repos.ItemRepo().FindByIDForTenantLocked(ctx, tenantID, req.ItemID)
		if err != nil {
			return err
		}
		stockChange, err := e.stock.Decrease(ctx, repos, item, req.Quantity, StockChangeOpts{
			Source:     inventory.MovementSourceSupplierReturn,
			SourceID:   &ret.ID,
			OperatorID: &userID,
		})
		if err != nil {
			return err
		}

		events := make([]shared.DomainEvent, 0, 4)
		events = append(events, stockChange.Events...)

		if ret.ReducesSupplierBalance() && req.Amount.GreaterThan(decimal.Zero) {
			balanceChange, err := e.balance.ApplyDelta(ctx, repos, tenantID, partner.EntityKindSupplier, ret.SupplierID,
				req.Amount.Neg(), partner.BalanceEntryTypeReturnCredit, BalanceChangeOpts{
					AllowNegative: true,
					SourceID:      &ret.ID,
					OperatorID:    &userID,
					Note:          "Supplier return " + ret.Number,
				})
			if err != nil {
				return err
			}
			events = append(events, balanceChange.Events...)
		}

		if err := repos.SupplierReturnRepo().Save(ctx, ret); err != nil {
			return err
		}

		events = append(events, drainEvents(ret)...)
		events = append(events, drainEvents(purchase)...)
		if err := repos.SaveEvents(ctx, events...); err != nil {
			return err
		}

		resp = ToSupplierReturnResponse(ret)
		return nil
	})
	if err != nil {
		release()
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, resp.ID.String(),
		telemetry.SpanAttrDocumentNumber, resp.Number,
		telemetry.SpanAttrQuantity, resp.Quantity.String(),
	)
	return &resp, nil
}
