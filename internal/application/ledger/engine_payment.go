package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
)

// RecordPayment settles part of a customer's or supplier's balance. The
// amount must be positive and may not exceed the current balance; paying
// more fails with OVERPAYMENT_NOT_ALLOWED and changes nothing.
func (e *TransactionEngine) RecordPayment(ctx context.Context, tenantID, userID uuid.UUID, req RecordPaymentRequest) (_ *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.WithAttribute(telemetry.SpanAttrEntityKind, req.EntityKind),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, req.Method))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validateActor(tenantID, userID); err != nil {
		return nil, err
	}

	kind, err := partner.ParseEntityKind(req.EntityKind)
	if err != nil {
		return nil, err
	}
	method, err := trade.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}

	release, err := e.claimIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var resp PaymentResponse
	err = e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.PaymentRepo().GenerateNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		payment, err := trade.NewPayment(tenantID, number, kind, req.EntityID, req.Amount, method)
		if err != nil {
			return err
		}
		payment.SetCreatedBy(userID)
		payment.Notes = req.Notes

		change, err := e.balance.SettlePayment(ctx, repos, tenantID, kind, req.EntityID, req.Amount, BalanceChangeOpts{
			SourceID:   &payment.ID,
			OperatorID: &userID,
			Note:       "Payment " + payment.Number,
		})
		if err != nil {
			return err
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}

		events := append(change.Events, drainEvents(payment)...)
		if err := repos.SaveEvents(ctx, events...); err != nil {
			return err
		}

		resp = ToPaymentResponse(payment, change.After)
		return nil
	})
	if err != nil {
		release()
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, resp.ID.String(),
		telemetry.SpanAttrDocumentNumber, resp.Number,
		telemetry.SpanAttrAmount, resp.Amount.String(),
	)
	return &resp, nil
}

// OverrideBalance sets a customer's or supplier's balance to an absolute
// value. This is the administrative escape hatch: it does not reconcile
// against history, it just audits the jump as an OVERRIDE entry.
func (e *TransactionEngine) OverrideBalance(ctx context.Context, tenantID, userID uuid.UUID, req OverrideBalanceRequest) (_ *BalanceOverrideResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "balance", "override",
		telemetry.WithAttribute(telemetry.SpanAttrEntityKind, req.EntityKind),
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, req.EntityID.String()))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := validateActor(tenantID, userID); err != nil {
		return nil, err
	}

	kind, err := partner.ParseEntityKind(req.EntityKind)
	if err != nil {
		return nil, err
	}
	if req.Reason == "" {
		return nil, shared.NewValidationError("an override requires a reason")
	}

	release, err := e.claimIdempotencyKey(ctx, tenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	var resp BalanceOverrideResponse
	err = e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		change, err := e.balance.Override(ctx, repos, tenantID, kind, req.EntityID, req.NewBalance, BalanceChangeOpts{
			OperatorID: &userID,
			Note:       req.Reason,
		})
		if err != nil {
			return err
		}

		if err := repos.SaveEvents(ctx, change.Events...); err != nil {
			return err
		}

		resp = BalanceOverrideResponse{
			EntryID:       change.Entry.ID,
			EntityKind:    string(change.Kind),
			EntityID:      change.EntityID,
			BalanceBefore: change.Before,
			BalanceAfter:  change.After,
			CreatedAt:     change.Entry.CreatedAt,
		}
		return nil
	})
	if err != nil {
		release()
		return nil, err
	}

	telemetry.AddEvent(span, "balance_overridden",
		"balance_before", resp.BalanceBefore.String(),
		"balance_after", resp.BalanceAfter.String(),
	)
	return &resp, nil
}
