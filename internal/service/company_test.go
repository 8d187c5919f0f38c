package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

type mockSettingsStore struct {
	settings *domain.CompanySettings
}

func (m *mockSettingsStore) GetCompanySettings(_ context.Context) (*domain.CompanySettings, error) {
	if m.settings == nil {
		return nil, &domain.ErrNotFound{Resource: "company_settings", ID: "singleton"}
	}
	cp := *m.settings
	return &cp, nil
}

func (m *mockSettingsStore) SaveCompanySettings(_ context.Context, s *domain.CompanySettings) error {
	cp := *s
	m.settings = &cp
	return nil
}

func newTestCompanyService() (*CompanyService, *mockSettingsStore, *mockAuditStore) {
	store := &mockSettingsStore{}
	audit := &mockAuditStore{}
	return NewCompanyService(store, audit, zap.NewNop()), store, audit
}

func TestCompanyGetNilBeforeFirstSave(t *testing.T) {
	svc, _, _ := newTestCompanyService()

	settings, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if settings != nil {
		t.Errorf("settings = %+v, want nil before first save", settings)
	}
}

func TestCompanyUpsertCreatesThenReplaces(t *testing.T) {
	svc, _, audit := newTestCompanyService()
	ctx := context.Background()

	created, err := svc.Upsert(ctx, "user-1", &domain.CompanySettingsInput{
		Name:  "Al Barakah Travel",
		City:  "Jakarta",
		Email: "info@albarakah.id",
		BankAccounts: []domain.BankAccount{
			{BankName: "BSI", AccountNumber: "7100123456", AccountHolder: "PT Al Barakah"},
		},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("upsert assigned no ID")
	}

	// A second save keeps the singleton's identity.
	replaced, err := svc.Upsert(ctx, "user-1", &domain.CompanySettingsInput{
		Name: "Al Barakah Tour & Travel",
	})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if replaced.ID != created.ID {
		t.Errorf("ID changed on upsert: %q -> %q", created.ID, replaced.ID)
	}

	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if settings.Name != "Al Barakah Tour & Travel" {
		t.Errorf("name = %q, want replaced value", settings.Name)
	}

	if len(audit.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(audit.entries))
	}
	if e := audit.entries[0]; e.Entity != "company_settings" || e.Action != "update" || e.ActorID != "user-1" {
		t.Errorf("audit entry = %+v", e)
	}
}

func TestCompanyUpsertValidates(t *testing.T) {
	svc, store, _ := newTestCompanyService()

	_, err := svc.Upsert(context.Background(), "user-1", &domain.CompanySettingsInput{Name: ""})
	var invalid *domain.ErrValidation
	if !errors.As(err, &invalid) {
		t.Fatalf("Upsert(no name) error = %v, want ErrValidation", err)
	}
	if store.settings != nil {
		t.Error("invalid input was persisted")
	}
}
