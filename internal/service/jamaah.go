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

var jamaahTracer = otel.Tracer("service/jamaah")

// lowSeatThreshold is the remaining-seat count at which staff get warned
// that a package is filling up.
const lowSeatThreshold = 5

// JamaahService manages pilgrims and their balance accounts.
type JamaahService struct {
	store    port.JamaahStore
	ledger   port.LedgerStore
	packages port.PackageStore
	notifier port.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewJamaahService creates a JamaahService.
func NewJamaahService(store port.JamaahStore, ledger port.LedgerStore, packages port.PackageStore, notifier port.Notifier, logger *zap.Logger) *JamaahService {
	return &JamaahService{
		store:    store,
		ledger:   ledger,
		packages: packages,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateJamaah registers a pilgrim with a fresh balance account. TotalDue
// defaults to the assigned package's price per person; assigning a package
// also books one seat.
func (s *JamaahService) CreateJamaah(ctx context.Context, in *domain.JamaahInput) (*domain.Jamaah, error) {
	ctx, span := jamaahTracer.Start(ctx, "JamaahService.CreateJamaah")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	var totalDue domain.Money
	var pkg *domain.Package
	if in.PackageID != "" {
		var err error
		pkg, err = s.packages.GetPackage(ctx, in.PackageID)
		if err != nil {
			return nil, err
		}
		totalDue = pkg.PricePerPax
		if err := s.packages.AdjustBookedSeats(ctx, in.PackageID, 1); err != nil {
			return nil, err
		}
	}
	if in.TotalDue != nil {
		totalDue = *in.TotalDue
	}

	acc := &domain.BalanceAccount{
		ID:              uuid.NewString(),
		Kind:            domain.AccountKindJamaah,
		OwnerID:         uuid.NewString(),
		TotalDue:        totalDue,
		RemainingAmount: totalDue,
		Status:          domain.StatusPending,
	}
	if err := s.ledger.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	j := &domain.Jamaah{
		ID:            acc.OwnerID,
		Name:          in.Name,
		Title:         in.Title,
		NIK:           in.NIK,
		PassportNo:    in.PassportNo,
		Gender:        in.Gender,
		MaritalStatus: in.MaritalStatus,
		BirthPlace:    in.BirthPlace,
		BirthDate:     in.BirthDate,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		Province:      in.Province,
		Regency:       in.Regency,
		District:      in.District,
		Village:       in.Village,
		PackageID:     in.PackageID,
		RoomType:      in.RoomType,
		AccountID:     acc.ID,
		DocumentURLs:  in.DocumentURLs,
	}
	if err := s.store.CreateJamaah(ctx, j); err != nil {
		return nil, err
	}

	if pkg != nil {
		s.warnOnLowSeats(ctx, pkg)
	}

	s.logger.Info("jamaah registered",
		zap.String("jamaah_id", j.ID),
		zap.String("package_id", j.PackageID),
		zap.Int64("total_due", int64(totalDue)))
	return j, nil
}

// GetJamaah returns a pilgrim with its balance account.
func (s *JamaahService) GetJamaah(ctx context.Context, id string) (*domain.Jamaah, *domain.BalanceAccount, error) {
	ctx, span := jamaahTracer.Start(ctx, "JamaahService.GetJamaah")
	defer span.End()
	span.SetAttributes(attribute.String("jamaah.id", id))

	j, err := s.store.GetJamaah(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	acc, err := s.ledger.GetAccount(ctx, j.AccountID)
	if err != nil {
		return nil, nil, err
	}
	return j, acc, nil
}

// ListJamaah returns pilgrims with their derived balances.
func (s *JamaahService) ListJamaah(ctx context.Context, filter *domain.JamaahFilter) ([]domain.JamaahWithBalance, error) {
	ctx, span := jamaahTracer.Start(ctx, "JamaahService.ListJamaah")
	defer span.End()

	return s.store.ListJamaah(ctx, filter)
}

// UpdateJamaah rewrites a pilgrim's data. A package change re-books seats
// and, unless overridden, re-prices the account's total due.
func (s *JamaahService) UpdateJamaah(ctx context.Context, id string, in *domain.JamaahInput) (*domain.Jamaah, error) {
	ctx, span := jamaahTracer.Start(ctx, "JamaahService.UpdateJamaah")
	defer span.End()
	span.SetAttributes(attribute.String("jamaah.id", id))

	if err := in.Validate(); err != nil {
		return nil, err
	}

	j, err := s.store.GetJamaah(ctx, id)
	if err != nil {
		return nil, err
	}

	packageChanged := in.PackageID != j.PackageID
	if packageChanged {
		if j.PackageID != "" {
			if err := s.packages.AdjustBookedSeats(ctx, j.PackageID, -1); err != nil {
				s.logger.Warn("failed to release seat on old package",
					zap.String("package_id", j.PackageID), zap.Error(err))
			}
		}
		if in.PackageID != "" {
			if err := s.packages.AdjustBookedSeats(ctx, in.PackageID, 1); err != nil {
				return nil, err
			}
		}
	}

	j.Name = in.Name
	j.Title = in.Title
	j.NIK = in.NIK
	j.PassportNo = in.PassportNo
	j.Gender = in.Gender
	j.MaritalStatus = in.MaritalStatus
	j.BirthPlace = in.BirthPlace
	j.BirthDate = in.BirthDate
	j.Phone = in.Phone
	j.Email = in.Email
	j.Address = in.Address
	j.Province = in.Province
	j.Regency = in.Regency
	j.District = in.District
	j.Village = in.Village
	j.PackageID = in.PackageID
	j.RoomType = in.RoomType
	j.DocumentURLs = in.DocumentURLs

	if err := s.store.UpdateJamaah(ctx, j); err != nil {
		return nil, err
	}

	if in.TotalDue != nil || packageChanged {
		if err := s.repriceAccount(ctx, j, in.TotalDue); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// CancelJamaah sets the cancelled flag with a reason and releases the seat.
// The account's payment history stays; its status becomes dibatalkan.
func (s *JamaahService) CancelJamaah(ctx context.Context, id, reason string) (*domain.Jamaah, error) {
	ctx, span := jamaahTracer.Start(ctx, "JamaahService.CancelJamaah")
	defer span.End()
	span.SetAttributes(attribute.String("jamaah.id", id))

	j, err := s.store.GetJamaah(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Cancelled {
		return j, nil
	}

	j.Cancelled = true
	j.CancelReason = reason
	if err := s.store.UpdateJamaah(ctx, j); err != nil {
		return nil, err
	}

	acc, err := s.ledger.GetAccount(ctx, j.AccountID)
	if err != nil {
		return nil, err
	}
	acc.Cancelled = true
	acc.Recompute(s.now())
	if err := s.ledger.UpdateAccountHeader(ctx, acc); err != nil {
		return nil, err
	}

	if j.PackageID != "" {
		if err := s.packages.AdjustBookedSeats(ctx, j.PackageID, -1); err != nil {
			s.logger.Warn("failed to release seat on cancellation",
				zap.String("package_id", j.PackageID), zap.Error(err))
		}
	}

	s.logger.Info("jamaah cancelled",
		zap.String("jamaah_id", id),
		zap.String("reason", reason))
	return j, nil
}

// DeleteJamaah removes a pilgrim, its account and payments.
func (s *JamaahService) DeleteJamaah(ctx context.Context, id string) error {
	ctx, span := jamaahTracer.Start(ctx, "JamaahService.DeleteJamaah")
	defer span.End()

	j, err := s.store.GetJamaah(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteJamaah(ctx, id); err != nil {
		return err
	}

	if j.PackageID != "" && !j.Cancelled {
		if err := s.packages.AdjustBookedSeats(ctx, j.PackageID, -1); err != nil {
			s.logger.Warn("failed to release seat on delete",
				zap.String("package_id", j.PackageID), zap.Error(err))
		}
	}
	return nil
}

// warnOnLowSeats broadcasts when a booking leaves a package nearly or
// completely full. pkg is the state read before the booking, so the seat
// just taken is counted here.
func (s *JamaahService) warnOnLowSeats(ctx context.Context, pkg *domain.Package) {
	seatsLeft := pkg.SeatCapacity - pkg.BookedSeats - 1
	switch {
	case seatsLeft <= 0:
		s.notifier.NotifyAll(ctx, domain.NotificationError, "Paket Penuh",
			fmt.Sprintf("Paket %s sudah penuh", pkg.Name), "/seat")
	case seatsLeft <= lowSeatThreshold:
		s.notifier.NotifyAll(ctx, domain.NotificationWarning, "Seat Paket Menipis",
			fmt.Sprintf("Paket %s tersisa %d seat", pkg.Name, seatsLeft), "/seat")
	}
}

// repriceAccount updates the account's totalDue after a package change or
// an explicit override, recomputing the derived state.
func (s *JamaahService) repriceAccount(ctx context.Context, j *domain.Jamaah, override *domain.Money) error {
	acc, err := s.ledger.GetAccount(ctx, j.AccountID)
	if err != nil {
		return err
	}

	switch {
	case override != nil:
		acc.TotalDue = *override
	case j.PackageID != "":
		pkg, err := s.packages.GetPackage(ctx, j.PackageID)
		if err != nil {
			return err
		}
		acc.TotalDue = pkg.PricePerPax
	default:
		acc.TotalDue = 0
	}

	acc.Recompute(s.now())
	return s.ledger.UpdateAccountHeader(ctx, acc)
}
