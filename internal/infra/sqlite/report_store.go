package sqlite

import (
	"context"
	"fmt"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// Report queries aggregate the payments and accounts tables directly.
// Income sums net amounts (discounts reduce what was actually received);
// expenses sum gross.

// TotalsByDirection returns income and expense totals for a date range.
// Empty from/to leave that side unbounded.
func (s *Store) TotalsByDirection(ctx context.Context, from, to string) (domain.Money, domain.Money, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN direction = ? THEN net_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = ? THEN gross_amount ELSE 0 END), 0)
		FROM payments WHERE 1=1`
	args := []any{domain.DirectionIncome, domain.DirectionExpense}
	query, args = appendDateRange(query, args, from, to)

	var income, expense int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&income, &expense); err != nil {
		return 0, 0, fmt.Errorf("totals by direction: %w", err)
	}
	return domain.Money(income), domain.Money(expense), nil
}

// OutstandingTotals returns unpaid jamaah balances and unpaid vendor debts.
// Cancelled jamaah accounts are excluded: a cancelled booking is not a receivable.
func (s *Store) OutstandingTotals(ctx context.Context) (domain.Money, domain.Money, error) {
	var receivables, debts int64

	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(remaining_amount), 0) FROM accounts
		WHERE kind = ? AND cancelled = 0`, domain.AccountKindJamaah,
	).Scan(&receivables)
	if err != nil {
		return 0, 0, fmt.Errorf("sum receivables: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(remaining_amount), 0) FROM accounts
		WHERE kind = ?`, domain.AccountKindVendorDebt,
	).Scan(&debts)
	if err != nil {
		return 0, 0, fmt.Errorf("sum debts: %w", err)
	}

	return domain.Money(receivables), domain.Money(debts), nil
}

// CountActiveJamaah counts non-cancelled pilgrims.
func (s *Store) CountActiveJamaah(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jamaah WHERE cancelled = 0").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active jamaah: %w", err)
	}
	return n, nil
}

// CountOpenPackages counts packages still selling seats.
func (s *Store) CountOpenPackages(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM packages WHERE status = ?", domain.PackageStatusOpen).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open packages: %w", err)
	}
	return n, nil
}

// CategoryBreakdown returns per-category totals for one direction.
func (s *Store) CategoryBreakdown(ctx context.Context, direction, from, to string) ([]domain.CategoryTotal, error) {
	amount := "net_amount"
	if direction == domain.DirectionExpense {
		amount = "gross_amount"
	}

	query := fmt.Sprintf(`
		SELECT category, COALESCE(SUM(%s), 0), COUNT(*)
		FROM payments WHERE direction = ?`, amount)
	args := []any{direction}
	query, args = appendDateRange(query, args, from, to)
	query += " GROUP BY category ORDER BY 2 DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	var out []domain.CategoryTotal
	for rows.Next() {
		var ct domain.CategoryTotal
		var total int64
		if err := rows.Scan(&ct.Category, &total, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.Total = domain.Money(total)
		out = append(out, ct)
	}
	return out, rows.Err()
}

// MonthlyTrend returns month-by-month income and expense totals.
func (s *Store) MonthlyTrend(ctx context.Context, from, to string) ([]domain.MonthlyTotal, error) {
	query := `
		SELECT substr(occurred_on, 1, 7) AS month,
			COALESCE(SUM(CASE WHEN direction = ? THEN net_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = ? THEN gross_amount ELSE 0 END), 0)
		FROM payments WHERE 1=1`
	args := []any{domain.DirectionIncome, domain.DirectionExpense}
	query, args = appendDateRange(query, args, from, to)
	query += " GROUP BY month ORDER BY month"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlyTotal
	for rows.Next() {
		var mt domain.MonthlyTotal
		var income, expense int64
		if err := rows.Scan(&mt.Month, &income, &expense); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		mt.Income = domain.Money(income)
		mt.Expense = domain.Money(expense)
		out = append(out, mt)
	}
	return out, rows.Err()
}

// PackageProfits returns income vs expense per package. Income comes from
// payments stamped with the jamaah's package at record time; expenses from
// payments linked directly to the package.
func (s *Store) PackageProfits(ctx context.Context) ([]domain.PackageProfit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.booked_seats,
			COALESCE((SELECT SUM(net_amount) FROM payments
				WHERE package_id = p.id AND direction = ?), 0),
			COALESCE((SELECT SUM(gross_amount) FROM payments
				WHERE package_id = p.id AND direction = ?), 0)
		FROM packages p
		ORDER BY p.created_at DESC`,
		domain.DirectionIncome, domain.DirectionExpense)
	if err != nil {
		return nil, fmt.Errorf("package profits: %w", err)
	}
	defer rows.Close()

	var out []domain.PackageProfit
	for rows.Next() {
		var pp domain.PackageProfit
		var income, expense int64
		if err := rows.Scan(&pp.PackageID, &pp.PackageName, &pp.BookedSeats, &income, &expense); err != nil {
			return nil, fmt.Errorf("scan package profit: %w", err)
		}
		pp.Income = domain.Money(income)
		pp.Expense = domain.Money(expense)
		pp.Profit = pp.Income.Sub(pp.Expense)
		out = append(out, pp)
	}
	return out, rows.Err()
}

func appendDateRange(query string, args []any, from, to string) (string, []any) {
	if from != "" {
		query += " AND occurred_on >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND occurred_on <= ?"
		args = append(args, to)
	}
	return query, args
}
