package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// GetCompanySettings loads the singleton company profile.
func (s *Store) GetCompanySettings(ctx context.Context) (*domain.CompanySettings, error) {
	var cs domain.CompanySettings
	var bankAccounts sql.NullString
	var updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(address, ''), COALESCE(city, ''),
			COALESCE(phone, ''), COALESCE(email, ''), bank_accounts, updated_at
		FROM company_settings LIMIT 1`).Scan(
		&cs.ID, &cs.Name, &cs.Address, &cs.City, &cs.Phone, &cs.Email,
		&bankAccounts, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "company_settings", ID: "singleton"}
	}
	if err != nil {
		return nil, fmt.Errorf("get company settings: %w", err)
	}

	if bankAccounts.Valid && bankAccounts.String != "" {
		if err := json.Unmarshal([]byte(bankAccounts.String), &cs.BankAccounts); err != nil {
			return nil, fmt.Errorf("decode bank accounts: %w", err)
		}
	}
	cs.UpdatedAt = parseTime(updatedAt)
	return &cs, nil
}

// SaveCompanySettings upserts the singleton profile row. Bank accounts
// are stored as a JSON column; there is no per-account table because the
// list is tiny and always read whole.
func (s *Store) SaveCompanySettings(ctx context.Context, cs *domain.CompanySettings) error {
	banks, err := json.Marshal(cs.BankAccounts)
	if err != nil {
		return fmt.Errorf("encode bank accounts: %w", err)
	}
	if cs.UpdatedAt.IsZero() {
		cs.UpdatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO company_settings (id, name, address, city, phone, email, bank_accounts, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, address = excluded.address, city = excluded.city,
			phone = excluded.phone, email = excluded.email,
			bank_accounts = excluded.bank_accounts, updated_at = excluded.updated_at`,
		cs.ID, cs.Name, cs.Address, cs.City, cs.Phone, cs.Email,
		string(banks), formatTime(cs.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save company settings: %w", err)
	}
	return nil
}
