package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// ============================================================
// Accounts
// ============================================================

// CreateAccount inserts a new balance account.
func (s *Store) CreateAccount(ctx context.Context, acc *domain.BalanceAccount) error {
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}
	acc.UpdatedAt = acc.CreatedAt
	if acc.Version == 0 {
		acc.Version = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, kind, owner_id, total_due, paid_amount, remaining_amount,
			status, cancelled, due_date, description, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acc.ID, acc.Kind, acc.OwnerID, int64(acc.TotalDue), int64(acc.PaidAmount),
		int64(acc.RemainingAmount), acc.Status, boolToInt(acc.Cancelled),
		acc.DueDate, acc.Description, acc.Version,
		formatTime(acc.CreatedAt), formatTime(acc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetAccount loads an account with its payments in insertion order.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*domain.BalanceAccount, error) {
	acc, err := s.scanAccount(s.db.QueryRowContext(ctx,
		accountSelect+" WHERE id = ?", accountID))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	payments, err := s.paymentsForAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	acc.Payments = payments
	return acc, nil
}

// GetAccountByOwner finds the account owned by a jamaah or vendor debt row.
func (s *Store) GetAccountByOwner(ctx context.Context, kind, ownerID string) (*domain.BalanceAccount, error) {
	acc, err := s.scanAccount(s.db.QueryRowContext(ctx,
		accountSelect+" WHERE kind = ? AND owner_id = ? ORDER BY created_at LIMIT 1", kind, ownerID))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "account", ID: ownerID}
	}
	if err != nil {
		return nil, fmt.Errorf("get account by owner: %w", err)
	}

	payments, err := s.paymentsForAccount(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	acc.Payments = payments
	return acc, nil
}

// ListDebtAccounts lists vendor-debt accounts, optionally for one vendor.
// Payments are not loaded; list views only need the derived fields.
func (s *Store) ListDebtAccounts(ctx context.Context, vendorID string) ([]domain.BalanceAccount, error) {
	query := accountSelect + " WHERE kind = ?"
	args := []any{domain.AccountKindVendorDebt}
	if vendorID != "" {
		query += " AND owner_id = ?"
		args = append(args, vendorID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list debt accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.BalanceAccount
	for rows.Next() {
		acc, err := s.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt account: %w", err)
		}
		out = append(out, *acc)
	}
	return out, rows.Err()
}

// UpdateAccountHeader re-persists the account's mutable and derived fields,
// guarded by the optimistic version check.
func (s *Store) UpdateAccountHeader(ctx context.Context, acc *domain.BalanceAccount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateAccountGuarded(ctx, tx, acc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	acc.Version++
	return nil
}

// ============================================================
// Payments
// ============================================================

// AppendPayment inserts the payment and the recomputed account state in a
// single transaction. The version check serializes concurrent mutations of
// the same account: the loser sees ErrConcurrentModification and retries.
// Package-linked expenses roll their gross amount into the package's actual
// cost inside the same transaction, so the ledger and the package never
// disagree.
func (s *Store) AppendPayment(ctx context.Context, acc *domain.BalanceAccount, p *domain.PaymentRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, account_id, direction, category, gross_amount, discount,
			net_amount, method, reference_number, description, occurred_on, receipt_url,
			package_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AccountID, p.Direction, p.Category, int64(p.GrossAmount), int64(p.Discount),
		int64(p.NetAmount), p.Method, p.ReferenceNumber, p.Description, p.OccurredOn,
		p.ReceiptURL, nullIfEmpty(p.PackageID), formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	if p.Direction == domain.DirectionExpense && p.PackageID != "" {
		if err := addPackageCost(ctx, tx, p.PackageID, p.GrossAmount); err != nil {
			return err
		}
	}

	if err := updateAccountGuarded(ctx, tx, acc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	acc.Version++
	return nil
}

// UpdatePayment rewrites an edited payment row together with the recomputed
// account state, under the same version guard as AppendPayment. When the
// edit changes the gross amount of a package-linked expense, the package's
// actual cost absorbs the difference in the same transaction.
func (s *Store) UpdatePayment(ctx context.Context, acc *domain.BalanceAccount, p *domain.PaymentRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldGross int64
	err = tx.QueryRowContext(ctx,
		"SELECT gross_amount FROM payments WHERE id = ? AND account_id = ?",
		p.ID, p.AccountID).Scan(&oldGross)
	if err == sql.ErrNoRows {
		return &domain.ErrNotFound{Resource: "payment", ID: p.ID}
	}
	if err != nil {
		return fmt.Errorf("load payment for update: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET category = ?, gross_amount = ?, discount = ?, net_amount = ?, method = ?,
			reference_number = ?, description = ?, occurred_on = ?
		WHERE id = ? AND account_id = ?`,
		p.Category, int64(p.GrossAmount), int64(p.Discount), int64(p.NetAmount), p.Method,
		p.ReferenceNumber, p.Description, p.OccurredOn, p.ID, p.AccountID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "payment", ID: p.ID}
	}

	if delta := p.GrossAmount - domain.Money(oldGross); delta != 0 &&
		p.Direction == domain.DirectionExpense && p.PackageID != "" {
		if err := addPackageCost(ctx, tx, p.PackageID, delta); err != nil {
			return err
		}
	}

	if err := updateAccountGuarded(ctx, tx, acc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	acc.Version++
	return nil
}

// DeletePayment removes a payment row and persists the recomputed account.
// A package-linked expense has its actual-cost contribution reversed in the
// same transaction.
func (s *Store) DeletePayment(ctx context.Context, acc *domain.BalanceAccount, paymentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var direction string
	var packageID sql.NullString
	var gross int64
	err = tx.QueryRowContext(ctx,
		"SELECT direction, package_id, gross_amount FROM payments WHERE id = ? AND account_id = ?",
		paymentID, acc.ID).Scan(&direction, &packageID, &gross)
	if err == sql.ErrNoRows {
		return &domain.ErrNotFound{Resource: "payment", ID: paymentID}
	}
	if err != nil {
		return fmt.Errorf("load payment for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM payments WHERE id = ? AND account_id = ?", paymentID, acc.ID); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}

	if direction == domain.DirectionExpense && packageID.Valid && packageID.String != "" {
		if err := addPackageCost(ctx, tx, packageID.String, -domain.Money(gross)); err != nil {
			return err
		}
	}

	if err := updateAccountGuarded(ctx, tx, acc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	acc.Version++
	return nil
}

// GetPayment loads a single payment by ID.
func (s *Store) GetPayment(ctx context.Context, paymentID string) (*domain.PaymentRecord, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx,
		paymentSelect+" WHERE id = ?", paymentID))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "payment", ID: paymentID}
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListPayments returns payments matching the filter, newest entry first.
func (s *Store) ListPayments(ctx context.Context, filter *domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	query := paymentSelect + " WHERE 1=1"
	var args []any

	if filter.Direction != "" {
		query += " AND direction = ?"
		args = append(args, filter.Direction)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, filter.AccountID)
	}
	if filter.PackageID != "" {
		query += " AND package_id = ?"
		args = append(args, filter.PackageID)
	}
	if filter.From != "" {
		query += " AND occurred_on >= ?"
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += " AND occurred_on <= ?"
		args = append(args, filter.To)
	}

	query += " ORDER BY occurred_on DESC, created_at DESC"
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// addPackageCost rolls an expense delta into a package's actual cost inside
// the caller's payment transaction.
func addPackageCost(ctx context.Context, tx *sql.Tx, packageID string, delta domain.Money) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE packages SET actual_cost = actual_cost + ?, updated_at = ? WHERE id = ?",
		int64(delta), formatTime(time.Now()), packageID)
	if err != nil {
		return fmt.Errorf("update package actual cost: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "package", ID: packageID}
	}
	return nil
}

// ============================================================
// Internal helpers
// ============================================================

const accountSelect = `
	SELECT id, kind, owner_id, total_due, paid_amount, remaining_amount, status,
		cancelled, COALESCE(due_date, ''), COALESCE(description, ''), version,
		created_at, updated_at
	FROM accounts`

const paymentSelect = `
	SELECT id, account_id, direction, category, gross_amount, discount, net_amount,
		method, COALESCE(reference_number, ''), COALESCE(description, ''), occurred_on,
		COALESCE(receipt_url, ''), COALESCE(package_id, ''), created_at
	FROM payments`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanAccount(row rowScanner) (*domain.BalanceAccount, error) {
	var acc domain.BalanceAccount
	var totalDue, paid, remaining int64
	var cancelled int
	var createdAt, updatedAt string

	err := row.Scan(&acc.ID, &acc.Kind, &acc.OwnerID, &totalDue, &paid, &remaining,
		&acc.Status, &cancelled, &acc.DueDate, &acc.Description, &acc.Version,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	acc.TotalDue = domain.Money(totalDue)
	acc.PaidAmount = domain.Money(paid)
	acc.RemainingAmount = domain.Money(remaining)
	acc.Cancelled = cancelled != 0
	acc.CreatedAt = parseTime(createdAt)
	acc.UpdatedAt = parseTime(updatedAt)
	return &acc, nil
}

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	var gross, discount, net int64
	var createdAt string

	err := row.Scan(&p.ID, &p.AccountID, &p.Direction, &p.Category, &gross, &discount,
		&net, &p.Method, &p.ReferenceNumber, &p.Description, &p.OccurredOn,
		&p.ReceiptURL, &p.PackageID, &createdAt)
	if err != nil {
		return nil, err
	}

	p.GrossAmount = domain.Money(gross)
	p.Discount = domain.Money(discount)
	p.NetAmount = domain.Money(net)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// paymentsForAccount loads an account's payments in entry order (rowid),
// which is the ledger's insertion order, not occurredOn order.
func (s *Store) paymentsForAccount(ctx context.Context, accountID string) ([]domain.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		paymentSelect+" WHERE account_id = ? ORDER BY rowid", accountID)
	if err != nil {
		return nil, fmt.Errorf("list account payments: %w", err)
	}
	defer rows.Close()

	var out []domain.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// updateAccountGuarded persists the account's derived state inside tx.
// Zero rows affected means someone else bumped the version first.
func updateAccountGuarded(ctx context.Context, tx *sql.Tx, acc *domain.BalanceAccount) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET total_due = ?, paid_amount = ?, remaining_amount = ?, status = ?,
			cancelled = ?, due_date = ?, description = ?, version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?`,
		int64(acc.TotalDue), int64(acc.PaidAmount), int64(acc.RemainingAmount), acc.Status,
		boolToInt(acc.Cancelled), acc.DueDate, acc.Description, formatTime(time.Now()),
		acc.ID, acc.Version,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrConcurrentModification{AccountID: acc.ID}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
