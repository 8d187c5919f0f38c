package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/infra/observability"
	"github.com/albarakah/umrah-backoffice/internal/infra/resilience"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var ledgerTracer = otel.Tracer("service/ledger")

// LedgerService applies payments to balance accounts. Every mutation runs
// load → validate → append → recompute → persist; the persist step carries
// an optimistic version check and a conflict restarts the whole attempt
// with fresh state, a bounded number of times.
type LedgerService struct {
	store    port.LedgerStore
	audit    port.AuditStore
	notifier port.Notifier
	logger   *zap.Logger
	metrics  *observability.Metrics
	retry    resilience.Config
	now      func() time.Time
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(store port.LedgerStore, audit port.AuditStore, notifier port.Notifier, logger *zap.Logger, metrics *observability.Metrics, retry resilience.Config) *LedgerService {
	return &LedgerService{
		store:    store,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		retry:    retry,
		now:      time.Now,
	}
}

// RecordIncome records a jamaah payment (DP, installment, settlement).
func (s *LedgerService) RecordIncome(ctx context.Context, actorID, accountID string, in *domain.PaymentInput) (*domain.PaymentRecord, *domain.AccountSummary, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.RecordIncome")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	in.Direction = domain.DirectionIncome
	return s.record(ctx, "record_income", actorID, accountID, in)
}

// RecordExpense records a vendor cost against a debt account. Expenses
// linked to a package also feed the package's actual cost.
func (s *LedgerService) RecordExpense(ctx context.Context, actorID, accountID string, in *domain.PaymentInput) (*domain.PaymentRecord, *domain.AccountSummary, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.RecordExpense")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	in.Direction = domain.DirectionExpense
	return s.record(ctx, "record_expense", actorID, accountID, in)
}

/// PayVendorDebt records a debt repayment. The strict ceiling applies: an
// amount above the remaining balance is rejected with OverpaymentError.
func (s *LedgerService) PayVendorDebt(ctx context.Context, actorID, accountID string, amount domain.Money, method, notes string) (*domain.PaymentRecord, *domain.AccountSummary, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.PayVendorDebt")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID), attribute.Int64("amount", int64(amount)))

	if method == "" {
		method = "transfer"
	}
	in := &domain.PaymentInput{
		Direction:   domain.DirectionExpense,
		Category:    domain.CategoryLainnya,
		GrossAmount: amount,
		Method:      method,
		Description: notes,
		OccurredOn:  s.now().Format(domain.DateLayout),
	}
	record, summary, err := s.record(ctx, "pay_debt", actorID, accountID, in)
	if err != nil {
		return nil, nil, err
	}

	if summary.Status == domain.DebtStatusPaid {
		s.notifier.NotifyAll(ctx, domain.NotificationSuccess, "Hutang Vendor Lunas",
			fmt.Sprintf("Hutang dengan pembayaran terakhir Rp %d telah lunas", int64(amount)),
			"/keuangan/hutang")
	} else {
		s.notifier.NotifyAll(ctx, domain.NotificationInfo, "Pembayaran Hutang Vendor",
			fmt.Sprintf("Pembayaran hutang sebesar Rp %d dicatat", int64(amount)),
			"/keuangan/hutang")
	}
	return record, summary, nil
}

// AccountSummary returns the derived state of an account.
func (s *LedgerService) AccountSummary(ctx context.Context, accountID string) (*domain.AccountSummary, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.AccountSummary")
	defer span.End()

	acc, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return acc.Summary(), nil
}

// GetAccount returns an account with its full payment history.
func (s *LedgerService) GetAccount(ctx context.Context, accountID string) (*domain.BalanceAccount, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetAccount")
	defer span.End()

	return s.store.GetAccount(ctx, accountID)
}

// ListPayments returns payments matching the filter.
func (s *LedgerService) ListPayments(ctx context.Context, filter *domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListPayments")
	defer span.End()

	return s.store.ListPayments(ctx, filter)
}

// GetPayment returns a single payment.
func (s *LedgerService) GetPayment(ctx context.Context, paymentID string) (*domain.PaymentRecord, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetPayment")
	defer span.End()

	return s.store.GetPayment(ctx, paymentID)
}

// EditPayment applies a patch to an existing payment and recomputes the
// account. A payment never moves to a different account.
func (s *LedgerService) EditPayment(ctx context.Context, actorID, paymentID string, patch *domain.PaymentPatch) (*domain.PaymentRecord, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.EditPayment")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", paymentID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("edit_payment", time.Since(start)) }()

	var updated *domain.PaymentRecord
	err := s.withConflictRetry(ctx, "edit_payment", func() error {
		existing, err := s.store.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		patched, err := existing.ApplyPatch(patch)
		if err != nil {
			return err
		}

		acc, err := s.store.GetAccount(ctx, existing.AccountID)
		if err != nil {
			return err
		}

		// The debt ceiling holds under edits too: the payment's new gross
		// plus everything else already paid must not exceed the total.
		if acc.Kind == domain.AccountKindVendorDebt {
			var others domain.Money
			for _, p := range acc.Payments {
				if p.ID != paymentID {
					others = others.Add(p.GrossAmount)
				}
			}
			if others.Add(patched.GrossAmount) > acc.TotalDue {
				return &domain.ErrOverpayment{
					Remaining: acc.TotalDue.SubClamped(others),
					Amount:    patched.GrossAmount,
				}
			}
		}

		for i := range acc.Payments {
			if acc.Payments[i].ID == paymentID {
				acc.Payments[i] = *patched
			}
		}
		acc.Recompute(s.now())

		if err := s.store.UpdatePayment(ctx, acc, patched); err != nil {
			return err
		}
		updated = patched
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, actorID, "edit", "payment", paymentID, updated.GrossAmount)
	s.logger.Info("payment edited",
		zap.String("payment_id", paymentID),
		zap.String("actor_id", actorID))
	return updated, nil
}

// DeletePayment removes a payment and recomputes the account. Deleting a
// package-linked expense also reverses its actual-cost contribution.
func (s *LedgerService) DeletePayment(ctx context.Context, actorID, paymentID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeletePayment")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", paymentID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("delete_payment", time.Since(start)) }()

	var removed *domain.PaymentRecord
	err := s.withConflictRetry(ctx, "delete_payment", func() error {
		existing, err := s.store.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}

		acc, err := s.store.GetAccount(ctx, existing.AccountID)
		if err != nil {
			return err
		}

		remaining := acc.Payments[:0]
		for _, p := range acc.Payments {
			if p.ID != paymentID {
				remaining = append(remaining, p)
			}
		}
		acc.Payments = remaining
		acc.Recompute(s.now())

		if err := s.store.DeletePayment(ctx, acc, paymentID); err != nil {
			return err
		}
		removed = existing
		return nil
	})
	if err != nil {
		return err
	}

	s.appendAudit(ctx, actorID, "delete", "payment", paymentID, removed.GrossAmount)
	s.logger.Info("payment deleted",
		zap.String("payment_id", paymentID),
		zap.String("actor_id", actorID))
	return nil
}

// record is the shared apply path for all three payment-creating operations.
func (s *LedgerService) record(ctx context.Context, op, actorID, accountID string, in *domain.PaymentInput) (*domain.PaymentRecord, *domain.AccountSummary, error) {
	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration(op, time.Since(start)) }()

	var (
		record  *domain.PaymentRecord
		summary *domain.AccountSummary
	)
	err := s.withConflictRetry(ctx, op, func() error {
		acc, err := s.store.GetAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if err := acc.ValidateApply(in); err != nil {
			return err
		}

		p, err := domain.NewPaymentRecord(uuid.NewString(), accountID, in, s.now())
		if err != nil {
			return err
		}

		acc.Payments = append(acc.Payments, *p)
		acc.Recompute(s.now())

		if err := s.store.AppendPayment(ctx, acc, p); err != nil {
			return err
		}
		record = p
		summary = acc.Summary()
		return nil
	})
	if err != nil {
		s.metrics.IncrPayment(in.Direction, "rejected")
		return nil, nil, err
	}
	s.metrics.IncrPayment(in.Direction, "accepted")

	action := "create"
	if op == "pay_debt" {
		action = "pay"
	}
	s.appendAudit(ctx, actorID, action, "payment", record.ID, record.GrossAmount)

	s.logger.Info("payment recorded",
		zap.String("operation", op),
		zap.String("account_id", accountID),
		zap.String("payment_id", record.ID),
		zap.Int64("gross_amount", int64(record.GrossAmount)),
		zap.String("status", summary.Status))
	return record, summary, nil
}

// withConflictRetry runs fn, retrying only on optimistic-lock conflicts.
// Validation and not-found errors are caller defects and stop the loop
// immediately; the backoff helper sees nil for those and a captured
// variable carries the error out.
func (s *LedgerService) withConflictRetry(ctx context.Context, op string, fn func() error) error {
	var permanent error
	retryErr := resilience.RetryWithBackoff(ctx, s.retry, func() error {
		err := fn()
		var conflict *domain.ErrConcurrentModification
		if errors.As(err, &conflict) {
			s.metrics.IncrLedgerConflict(op)
			s.logger.Warn("ledger conflict, retrying",
				zap.String("operation", op),
				zap.String("account_id", conflict.AccountID))
			return err
		}
		permanent = err
		return nil
	})
	if retryErr != nil {
		return retryErr
	}
	return permanent
}

func (s *LedgerService) appendAudit(ctx context.Context, actorID, action, entity, entityID string, amount domain.Money) {
	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Amount:    amount,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("entity_id", entityID), zap.Error(err))
	}
}
