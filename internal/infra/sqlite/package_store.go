package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// CreatePackage inserts a travel package.
func (s *Store) CreatePackage(ctx context.Context, p *domain.Package) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	if p.Status == "" {
		p.Status = domain.PackageStatusOpen
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO packages (id, code, name, type, price_per_pax, seat_capacity,
			booked_seats, departure_date, return_date, hotel_makkah, hotel_madinah,
			airline, status, estimated_cost, actual_cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.Name, p.Type, int64(p.PricePerPax), p.SeatCapacity,
		p.BookedSeats, p.DepartureDate, p.ReturnDate, p.HotelMakkah, p.HotelMadinah,
		p.Airline, p.Status, int64(p.EstimatedCost), int64(p.ActualCost),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert package: %w", err)
	}
	return nil
}

// GetPackage loads a package by ID.
func (s *Store) GetPackage(ctx context.Context, id string) (*domain.Package, error) {
	p, err := scanPackage(s.db.QueryRowContext(ctx, packageSelect+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "package", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get package: %w", err)
	}
	return p, nil
}

// GetPackageByCode loads a package by its unique code.
func (s *Store) GetPackageByCode(ctx context.Context, code string) (*domain.Package, error) {
	p, err := scanPackage(s.db.QueryRowContext(ctx, packageSelect+" WHERE code = ?", code))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "package", ID: code}
	}
	if err != nil {
		return nil, fmt.Errorf("get package by code: %w", err)
	}
	return p, nil
}

// ListPackages returns packages, optionally filtered by status.
func (s *Store) ListPackages(ctx context.Context, status string) ([]domain.Package, error) {
	query := packageSelect
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var out []domain.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdatePackage rewrites a package's editable fields. Booked seats and
// actual cost are maintained by their own operations, not by edits.
func (s *Store) UpdatePackage(ctx context.Context, p *domain.Package) error {
	p.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE packages
		SET code = ?, name = ?, type = ?, price_per_pax = ?, seat_capacity = ?,
			departure_date = ?, return_date = ?, hotel_makkah = ?, hotel_madinah = ?,
			airline = ?, status = ?, estimated_cost = ?, updated_at = ?
		WHERE id = ?`,
		p.Code, p.Name, p.Type, int64(p.PricePerPax), p.SeatCapacity,
		p.DepartureDate, p.ReturnDate, p.HotelMakkah, p.HotelMadinah,
		p.Airline, p.Status, int64(p.EstimatedCost), formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "package", ID: p.ID}
	}
	return nil
}

// DeletePackage removes a package. Jamaah assigned to it keep their rows
// but lose the reference.
func (s *Store) DeletePackage(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE jamaah SET package_id = NULL WHERE package_id = ?", id); err != nil {
		return fmt.Errorf("detach jamaah from package: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM packages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "package", ID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AdjustBookedSeats changes booked_seats by delta. The guards in the WHERE
// clause keep the count inside [0, seat_capacity] without a read-modify-write.
func (s *Store) AdjustBookedSeats(ctx context.Context, id string, delta int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE packages
		SET booked_seats = booked_seats + ?, updated_at = ?
		WHERE id = ?
			AND booked_seats + ? >= 0
			AND booked_seats + ? <= seat_capacity`,
		delta, formatTime(time.Now()), id, delta, delta)
	if err != nil {
		return fmt.Errorf("adjust booked seats: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the package is unknown or the seat change is out of range.
		if _, err := s.GetPackage(ctx, id); err != nil {
			return err
		}
		return &domain.ErrValidation{Field: "packageId", Message: "no seats available"}
	}
	return nil
}

// ClosePackagesDepartingBy closes every open package whose departure date
// is on or before cutoff (YYYY-MM-DD, string comparison) and returns how
// many changed.
func (s *Store) ClosePackagesDepartingBy(ctx context.Context, cutoff string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE packages
		SET status = ?, updated_at = ?
		WHERE status = ?
			AND departure_date IS NOT NULL AND departure_date != ''
			AND departure_date <= ?`,
		domain.PackageStatusClosed, formatTime(time.Now()),
		domain.PackageStatusOpen, cutoff)
	if err != nil {
		return 0, fmt.Errorf("close departing packages: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// CompletePackagesReturnedBefore completes every closed or ongoing package
// whose return date is strictly before cutoff and returns how many changed.
func (s *Store) CompletePackagesReturnedBefore(ctx context.Context, cutoff string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE packages
		SET status = ?, updated_at = ?
		WHERE status IN (?, ?)
			AND return_date IS NOT NULL AND return_date != ''
			AND return_date < ?`,
		domain.PackageStatusCompleted, formatTime(time.Now()),
		domain.PackageStatusClosed, domain.PackageStatusOngoing, cutoff)
	if err != nil {
		return 0, fmt.Errorf("complete returned packages: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

const packageSelect = `
	SELECT id, code, name, type, price_per_pax, seat_capacity, booked_seats,
		COALESCE(departure_date, ''), COALESCE(return_date, ''),
		COALESCE(hotel_makkah, ''), COALESCE(hotel_madinah, ''), COALESCE(airline, ''),
		status, estimated_cost, actual_cost, created_at, updated_at
	FROM packages`

func scanPackage(row rowScanner) (*domain.Package, error) {
	var p domain.Package
	var price, estimated, actual int64
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Type, &price, &p.SeatCapacity,
		&p.BookedSeats, &p.DepartureDate, &p.ReturnDate, &p.HotelMakkah,
		&p.HotelMadinah, &p.Airline, &p.Status, &estimated, &actual,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.PricePerPax = domain.Money(price)
	p.EstimatedCost = domain.Money(estimated)
	p.ActualCost = domain.Money(actual)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}
