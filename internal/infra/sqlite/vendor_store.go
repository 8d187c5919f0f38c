package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// CreateVendor inserts a vendor.
func (s *Store) CreateVendor(ctx context.Context, v *domain.Vendor) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.UpdatedAt = v.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vendors (id, name, type, contact_person, phone, email, address,
			bank_name, bank_account, npwp, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Type, v.ContactPerson, v.Phone, v.Email, v.Address,
		v.BankName, v.BankAccount, v.NPWP,
		formatTime(v.CreatedAt), formatTime(v.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// GetVendor loads a vendor by ID.
func (s *Store) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	v, err := scanVendor(s.db.QueryRowContext(ctx, vendorSelect+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "vendor", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return v, nil
}

// ListVendors returns vendors, optionally filtered by type.
func (s *Store) ListVendors(ctx context.Context, vendorType string) ([]domain.Vendor, error) {
	query := vendorSelect
	var args []any
	if vendorType != "" {
		query += " WHERE type = ?"
		args = append(args, vendorType)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var out []domain.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// UpdateVendor rewrites a vendor's fields.
func (s *Store) UpdateVendor(ctx context.Context, v *domain.Vendor) error {
	v.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE vendors
		SET name = ?, type = ?, contact_person = ?, phone = ?, email = ?, address = ?,
			bank_name = ?, bank_account = ?, npwp = ?, updated_at = ?
		WHERE id = ?`,
		v.Name, v.Type, v.ContactPerson, v.Phone, v.Email, v.Address,
		v.BankName, v.BankAccount, v.NPWP, formatTime(v.UpdatedAt), v.ID,
	)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "vendor", ID: v.ID}
	}
	return nil
}

// DeleteVendor removes a vendor. Refused while open debts remain.
func (s *Store) DeleteVendor(ctx context.Context, id string) error {
	var open int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM accounts
		WHERE kind = ? AND owner_id = ? AND status != ?`,
		domain.AccountKindVendorDebt, id, domain.DebtStatusPaid,
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("count open debts: %w", err)
	}
	if open > 0 {
		return &domain.ErrConflict{Message: "vendor has unsettled debts"}
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM vendors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "vendor", ID: id}
	}
	return nil
}

const vendorSelect = `
	SELECT id, name, COALESCE(type, ''), COALESCE(contact_person, ''),
		COALESCE(phone, ''), COALESCE(email, ''), COALESCE(address, ''),
		COALESCE(bank_name, ''), COALESCE(bank_account, ''), COALESCE(npwp, ''),
		created_at, updated_at
	FROM vendors`

func scanVendor(row rowScanner) (*domain.Vendor, error) {
	var v domain.Vendor
	var createdAt, updatedAt string

	err := row.Scan(&v.ID, &v.Name, &v.Type, &v.ContactPerson, &v.Phone, &v.Email,
		&v.Address, &v.BankName, &v.BankAccount, &v.NPWP, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)
	return &v, nil
}
