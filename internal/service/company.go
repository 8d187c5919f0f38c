package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var companyTracer = otel.Tracer("service/company")

// CompanyService manages the agency's singleton profile.
type CompanyService struct {
	store  port.SettingsStore
	audit  port.AuditStore
	logger *zap.Logger
	now    func() time.Time
}

// NewCompanyService creates a CompanyService.
func NewCompanyService(store port.SettingsStore, audit port.AuditStore, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		store:  store,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the company profile, or nil when none has been saved yet.
func (s *CompanyService) Get(ctx context.Context) (*domain.CompanySettings, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Get")
	defer span.End()

	cs, err := s.store.GetCompanySettings(ctx)
	var notFound *domain.ErrNotFound
	if errors.As(err, &notFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// Upsert creates or replaces the company profile and audits the change.
func (s *CompanyService) Upsert(ctx context.Context, actorID string, in *domain.CompanySettingsInput) (*domain.CompanySettings, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Upsert")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	cs, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cs == nil {
		cs = &domain.CompanySettings{ID: uuid.NewString()}
	}
	cs.Name = in.Name
	cs.Address = in.Address
	cs.City = in.City
	cs.Phone = in.Phone
	cs.Email = in.Email
	cs.BankAccounts = in.BankAccounts
	cs.UpdatedAt = s.now()

	if err := s.store.SaveCompanySettings(ctx, cs); err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    "update",
		Entity:    "company_settings",
		EntityID:  cs.ID,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("entity_id", cs.ID), zap.Error(err))
	}

	s.logger.Info("company settings updated",
		zap.String("actor_id", actorID),
		zap.String("name", cs.Name))
	return cs, nil
}
