package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var vendorTracer = otel.Tracer("service/vendor")

// VendorService manages vendors and their debt accounts.
type VendorService struct {
	store    port.VendorStore
	ledger   port.LedgerStore
	notifier port.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewVendorService creates a VendorService.
func NewVendorService(store port.VendorStore, ledger port.LedgerStore, notifier port.Notifier, logger *zap.Logger) *VendorService {
	return &VendorService{
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateVendor registers a supplier.
func (s *VendorService) CreateVendor(ctx context.Context, in *domain.VendorInput) (*domain.Vendor, error) {
	ctx, span := vendorTracer.Start(ctx, "VendorService.CreateVendor")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	v := &domain.Vendor{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Type:          in.Type,
		ContactPerson: in.ContactPerson,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		BankName:      in.BankName,
		BankAccount:   in.BankAccount,
		NPWP:          in.NPWP,
	}
	if err := s.store.CreateVendor(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetVendor returns a vendor.
func (s *VendorService) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	ctx, span := vendorTracer.Start(ctx, "VendorService.GetVendor")
	defer span.End()

	return s.store.GetVendor(ctx, id)
}

// ListVendors returns vendors, optionally by type.
func (s *VendorService) ListVendors(ctx context.Context, vendorType string) ([]domain.Vendor, error) {
	ctx, span := vendorTracer.Start(ctx, "VendorService.ListVendors")
	defer span.End()

	return s.store.ListVendors(ctx, vendorType)
}

// UpdateVendor rewrites a vendor's fields.
func (s *VendorService) UpdateVendor(ctx context.Context, id string, in *domain.VendorInput) (*domain.Vendor, error) {
	ctx, span := vendorTracer.Start(ctx, "VendorService.UpdateVendor")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	v, err := s.store.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Name = in.Name
	v.Type = in.Type
	v.ContactPerson = in.ContactPerson
	v.Phone = in.Phone
	v.Email = in.Email
	v.Address = in.Address
	v.BankName = in.BankName
	v.BankAccount = in.BankAccount
	v.NPWP = in.NPWP

	if err := s.store.UpdateVendor(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DeleteVendor removes a vendor. The store refuses while unsettled debts
// remain.
func (s *VendorService) DeleteVendor(ctx context.Context, id string) error {
	ctx, span := vendorTracer.Start(ctx, "VendorService.DeleteVendor")
	defer span.End()

	return s.store.DeleteVendor(ctx, id)
}

// CreateDebt opens a debt account against a vendor.
func (s *VendorService) CreateDebt(ctx context.Context, in *domain.VendorDebtInput) (*domain.BalanceAccount, error) {
	ctx, span := vendorTracer.Start(ctx, "VendorService.CreateDebt")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", in.VendorID))

	if err := in.Validate(); err != nil {
		return nil, err
	}
	vendor, err := s.store.GetVendor(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}

	acc := &domain.BalanceAccount{
		ID:              uuid.NewString(),
		Kind:            domain.AccountKindVendorDebt,
		OwnerID:         in.VendorID,
		TotalDue:        in.TotalDue,
		RemainingAmount: in.TotalDue,
		Status:          domain.DebtStatusUnpaid,
		DueDate:         in.DueDate,
		Description:     in.Description,
	}
	if err := s.ledger.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	s.notifier.NotifyAll(ctx, domain.NotificationWarning, "Hutang Vendor Baru",
		fmt.Sprintf("Hutang baru ke %s sebesar Rp %d", vendor.Name, int64(in.TotalDue)),
		"/keuangan/hutang")

	s.logger.Info("vendor debt opened",
		zap.String("vendor_id", in.VendorID),
		zap.String("account_id", acc.ID),
		zap.Int64("total_due", int64(in.TotalDue)))
	return acc, nil
}

// ListDebts returns debt accounts joined with their vendors, optionally for
// one vendor. Statuses are refreshed against today so an unpaid balance
// flips to overdue the day after its due date without a write.
func (s *VendorService) ListDebts(ctx context.Context, vendorID string) ([]domain.VendorDebt, error) {
	ctx, span := vendorTracer.Start(ctx, "VendorService.ListDebts")
	defer span.End()

	accounts, err := s.ledger.ListDebtAccounts(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	vendors := make(map[string]*domain.Vendor)
	out := make([]domain.VendorDebt, 0, len(accounts))
	today := s.now()
	for _, acc := range accounts {
		acc.Status = domain.ClassifyVendorDebt(acc.TotalDue, acc.PaidAmount, acc.DueDate, today)

		v, ok := vendors[acc.OwnerID]
		if !ok {
			v, err = s.store.GetVendor(ctx, acc.OwnerID)
			if err != nil {
				return nil, err
			}
			vendors[acc.OwnerID] = v
		}
		out = append(out, domain.VendorDebt{Account: acc, Vendor: *v})
	}
	return out, nil
}

// UpdateDebt amends a debt's totalDue, dueDate or description. TotalDue
// can never drop below what has already been paid.
func (s *VendorService) UpdateDebt(ctx context.Context, accountID string, in *domain.VendorDebtInput) (*domain.BalanceAccount, error) {
	ctx, span := vendorTracer.Start(ctx, "VendorService.UpdateDebt")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	if in.TotalDue <= 0 {
		return nil, &domain.ErrInvalidAmount{Amount: in.TotalDue}
	}
	if in.DueDate != "" {
		if _, err := time.Parse(domain.DateLayout, in.DueDate); err != nil {
			return nil, &domain.ErrInvalidDate{Field: "dueDate", Value: in.DueDate}
		}
	}

	acc, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.Kind != domain.AccountKindVendorDebt {
		return nil, &domain.ErrValidation{Field: "accountId", Message: "not a vendor debt account"}
	}
	if in.TotalDue < acc.PaidAmount {
		return nil, &domain.ErrValidation{Field: "totalDue", Message: "below amount already paid"}
	}

	acc.TotalDue = in.TotalDue
	acc.DueDate = in.DueDate
	acc.Description = in.Description
	acc.Recompute(s.now())

	if err := s.ledger.UpdateAccountHeader(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}
