package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// CreateJamaah inserts a pilgrim row. The owning account is created
// separately by the service before this call.
func (s *Store) CreateJamaah(ctx context.Context, j *domain.Jamaah) error {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}
	j.UpdatedAt = j.CreatedAt

	docs, err := marshalDocs(j.DocumentURLs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jamaah (id, name, title, nik, passport_number, gender, marital_status,
			birth_place, birth_date, phone, email, address, province, regency, district,
			village, package_id, room_type, account_id, cancelled, cancel_reason,
			document_urls, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Name, j.Title, j.NIK, j.PassportNo, j.Gender, j.MaritalStatus,
		j.BirthPlace, j.BirthDate, j.Phone, j.Email, j.Address, j.Province, j.Regency,
		j.District, j.Village, nullIfEmpty(j.PackageID), j.RoomType, j.AccountID,
		boolToInt(j.Cancelled), j.CancelReason, docs,
		formatTime(j.CreatedAt), formatTime(j.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert jamaah: %w", err)
	}
	return nil
}

// GetJamaah loads a pilgrim by ID.
func (s *Store) GetJamaah(ctx context.Context, id string) (*domain.Jamaah, error) {
	j, err := scanJamaah(s.db.QueryRowContext(ctx, jamaahSelect+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "jamaah", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get jamaah: %w", err)
	}
	return j, nil
}

// ListJamaah returns pilgrims joined with their account's derived balance,
// so list views never recompute balances themselves.
func (s *Store) ListJamaah(ctx context.Context, filter *domain.JamaahFilter) ([]domain.JamaahWithBalance, error) {
	query := `
		SELECT j.id, j.name, COALESCE(j.title, ''), COALESCE(j.nik, ''),
			COALESCE(j.passport_number, ''), COALESCE(j.gender, ''),
			COALESCE(j.marital_status, ''), COALESCE(j.birth_place, ''),
			COALESCE(j.birth_date, ''), COALESCE(j.phone, ''), COALESCE(j.email, ''),
			COALESCE(j.address, ''), COALESCE(j.province, ''), COALESCE(j.regency, ''),
			COALESCE(j.district, ''), COALESCE(j.village, ''), COALESCE(j.package_id, ''),
			COALESCE(j.room_type, ''), j.account_id, j.cancelled,
			COALESCE(j.cancel_reason, ''), COALESCE(j.document_urls, ''),
			j.created_at, j.updated_at,
			a.total_due, a.paid_amount, a.remaining_amount, a.status
		FROM jamaah j
		JOIN accounts a ON a.id = j.account_id
		WHERE 1=1`
	var args []any

	if filter.PackageID != "" {
		query += " AND j.package_id = ?"
		args = append(args, filter.PackageID)
	}
	if filter.Status != "" {
		query += " AND a.status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		query += " AND (j.name LIKE ? OR j.nik LIKE ? OR j.passport_number LIKE ?)"
		like := "%" + filter.Search + "%"
		args = append(args, like, like, like)
	}

	query += " ORDER BY j.created_at DESC"
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
		return nil, fmt.Errorf("list jamaah: %w", err)
	}
	defer rows.Close()

	var out []domain.JamaahWithBalance
	for rows.Next() {
		var jb domain.JamaahWithBalance
		var cancelled int
		var docs, createdAt, updatedAt string
		var totalDue, paid, remaining int64

		err := rows.Scan(&jb.ID, &jb.Name, &jb.Title, &jb.NIK, &jb.PassportNo, &jb.Gender,
			&jb.MaritalStatus, &jb.BirthPlace, &jb.BirthDate, &jb.Phone, &jb.Email,
			&jb.Address, &jb.Province, &jb.Regency, &jb.District, &jb.Village,
			&jb.PackageID, &jb.RoomType, &jb.AccountID, &cancelled, &jb.CancelReason,
			&docs, &createdAt, &updatedAt,
			&totalDue, &paid, &remaining, &jb.PaymentStatus)
		if err != nil {
			return nil, fmt.Errorf("scan jamaah: %w", err)
		}

		jb.Cancelled = cancelled != 0
		jb.DocumentURLs = unmarshalDocs(docs)
		jb.CreatedAt = parseTime(createdAt)
		jb.UpdatedAt = parseTime(updatedAt)
		jb.TotalDue = domain.Money(totalDue)
		jb.PaidAmount = domain.Money(paid)
		jb.RemainingAmount = domain.Money(remaining)
		out = append(out, jb)
	}
	return out, rows.Err()
}

// UpdateJamaah rewrites a pilgrim's editable fields.
func (s *Store) UpdateJamaah(ctx context.Context, j *domain.Jamaah) error {
	j.UpdatedAt = time.Now()

	docs, err := marshalDocs(j.DocumentURLs)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE jamaah
		SET name = ?, title = ?, nik = ?, passport_number = ?, gender = ?,
			marital_status = ?, birth_place = ?, birth_date = ?, phone = ?, email = ?,
			address = ?, province = ?, regency = ?, district = ?, village = ?,
			package_id = ?, room_type = ?, cancelled = ?, cancel_reason = ?,
			document_urls = ?, updated_at = ?
		WHERE id = ?`,
		j.Name, j.Title, j.NIK, j.PassportNo, j.Gender, j.MaritalStatus, j.BirthPlace,
		j.BirthDate, j.Phone, j.Email, j.Address, j.Province, j.Regency, j.District,
		j.Village, nullIfEmpty(j.PackageID), j.RoomType, boolToInt(j.Cancelled),
		j.CancelReason, docs, formatTime(j.UpdatedAt), j.ID,
	)
	if err != nil {
		return fmt.Errorf("update jamaah: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.ErrNotFound{Resource: "jamaah", ID: j.ID}
	}
	return nil
}

// DeleteJamaah removes a pilgrim and its account (payments cascade).
func (s *Store) DeleteJamaah(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var accountID string
	err = tx.QueryRowContext(ctx, "SELECT account_id FROM jamaah WHERE id = ?", id).Scan(&accountID)
	if err == sql.ErrNoRows {
		return &domain.ErrNotFound{Resource: "jamaah", ID: id}
	}
	if err != nil {
		return fmt.Errorf("get jamaah account: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM jamaah WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete jamaah: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE account_id = ?", accountID); err != nil {
		return fmt.Errorf("delete jamaah payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", accountID); err != nil {
		return fmt.Errorf("delete jamaah account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ============================================================
// Internal helpers
// ============================================================

const jamaahSelect = `
	SELECT id, name, COALESCE(title, ''), COALESCE(nik, ''),
		COALESCE(passport_number, ''), COALESCE(gender, ''),
		COALESCE(marital_status, ''), COALESCE(birth_place, ''),
		COALESCE(birth_date, ''), COALESCE(phone, ''), COALESCE(email, ''),
		COALESCE(address, ''), COALESCE(province, ''), COALESCE(regency, ''),
		COALESCE(district, ''), COALESCE(village, ''), COALESCE(package_id, ''),
		COALESCE(room_type, ''), account_id, cancelled, COALESCE(cancel_reason, ''),
		COALESCE(document_urls, ''), created_at, updated_at
	FROM jamaah`

func scanJamaah(row rowScanner) (*domain.Jamaah, error) {
	var j domain.Jamaah
	var cancelled int
	var docs, createdAt, updatedAt string

	err := row.Scan(&j.ID, &j.Name, &j.Title, &j.NIK, &j.PassportNo, &j.Gender,
		&j.MaritalStatus, &j.BirthPlace, &j.BirthDate, &j.Phone, &j.Email, &j.Address,
		&j.Province, &j.Regency, &j.District, &j.Village, &j.PackageID, &j.RoomType,
		&j.AccountID, &cancelled, &j.CancelReason, &docs, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	j.Cancelled = cancelled != 0
	j.DocumentURLs = unmarshalDocs(docs)
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return &j, nil
}

func marshalDocs(urls []string) (string, error) {
	if len(urls) == 0 {
		return "", nil
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", fmt.Errorf("marshal document urls: %w", err)
	}
	return string(b), nil
}

func unmarshalDocs(s string) []string {
	if s == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(s), &urls); err != nil {
		return nil
	}
	return urls
}
