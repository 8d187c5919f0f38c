package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var packageTracer = otel.Tracer("service/package")

// PackageService manages travel packages.
type PackageService struct {
	store  port.PackageStore
	logger *zap.Logger
}

// NewPackageService creates a PackageService.
func NewPackageService(store port.PackageStore, logger *zap.Logger) *PackageService {
	return &PackageService{store: store, logger: logger}
}

// CreatePackage creates a package. Codes are unique.
func (s *PackageService) CreatePackage(ctx context.Context, in *domain.PackageInput) (*domain.Package, error) {
	ctx, span := packageTracer.Start(ctx, "PackageService.CreatePackage")
	defer span.End()
	span.SetAttributes(attribute.String("package.code", in.Code))

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPackageByCode(ctx, in.Code); err == nil {
		return nil, &domain.ErrConflict{Message: "package code already in use"}
	} else {
		var nf *domain.ErrNotFound
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	p := &domain.Package{
		ID:            uuid.NewString(),
		Code:          in.Code,
		Name:          in.Name,
		Type:          in.Type,
		PricePerPax:   in.PricePerPax,
		SeatCapacity:  in.SeatCapacity,
		DepartureDate: in.DepartureDate,
		ReturnDate:    in.ReturnDate,
		HotelMakkah:   in.HotelMakkah,
		HotelMadinah:  in.HotelMadinah,
		Airline:       in.Airline,
		Status:        in.Status,
		EstimatedCost: in.EstimatedCost,
	}
	if p.Status == "" {
		p.Status = domain.PackageStatusOpen
	}
	if err := s.store.CreatePackage(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("package created",
		zap.String("package_id", p.ID),
		zap.String("code", p.Code))
	return p, nil
}

// GetPackage returns a package.
func (s *PackageService) GetPackage(ctx context.Context, id string) (*domain.Package, error) {
	ctx, span := packageTracer.Start(ctx, "PackageService.GetPackage")
	defer span.End()

	return s.store.GetPackage(ctx, id)
}

// ListPackages returns packages, optionally by status.
func (s *PackageService) ListPackages(ctx context.Context, status string) ([]domain.Package, error) {
	ctx, span := packageTracer.Start(ctx, "PackageService.ListPackages")
	defer span.End()

	return s.store.ListPackages(ctx, status)
}

// UpdatePackage rewrites a package's editable fields. BookedSeats and
// actualCost are maintained by assignments and expense payments.
func (s *PackageService) UpdatePackage(ctx context.Context, id string, in *domain.PackageInput) (*domain.Package, error) {
	ctx, span := packageTracer.Start(ctx, "PackageService.UpdatePackage")
	defer span.End()
	span.SetAttributes(attribute.String("package.id", id))

	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Code != p.Code {
		if _, err := s.store.GetPackageByCode(ctx, in.Code); err == nil {
			return nil, &domain.ErrConflict{Message: "package code already in use"}
		}
	}
	if in.SeatCapacity < p.BookedSeats {
		return nil, &domain.ErrValidation{Field: "seatCapacity", Message: "below current booked seats"}
	}

	p.Code = in.Code
	p.Name = in.Name
	p.Type = in.Type
	p.PricePerPax = in.PricePerPax
	p.SeatCapacity = in.SeatCapacity
	p.DepartureDate = in.DepartureDate
	p.ReturnDate = in.ReturnDate
	p.HotelMakkah = in.HotelMakkah
	p.HotelMadinah = in.HotelMadinah
	p.Airline = in.Airline
	if in.Status != "" {
		p.Status = in.Status
	}
	p.EstimatedCost = in.EstimatedCost

	if err := s.store.UpdatePackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePackage removes a package; assigned jamaah keep their records but
// lose the package reference.
func (s *PackageService) DeletePackage(ctx context.Context, id string) error {
	ctx, span := packageTracer.Start(ctx, "PackageService.DeletePackage")
	defer span.End()

	return s.store.DeletePackage(ctx, id)
}
