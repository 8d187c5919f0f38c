package sqlite

import (
	"context"
	"fmt"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

// AppendAudit records one ledger mutation.
func (s *Store) AppendAudit(ctx context.Context, e *domain.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, actor_id, action, entity, entity_id, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ActorID, e.Action, e.Entity, e.EntityID, int64(e.Amount), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAudit returns audit entries newest first, optionally filtered by entity.
func (s *Store) ListAudit(ctx context.Context, entity string, page, pageSize int) ([]domain.AuditEntry, error) {
	query := `
		SELECT id, actor_id, action, entity, entity_id, amount, created_at
		FROM audit_log`
	var args []any
	if entity != "" {
		query += " WHERE entity = ?"
		args = append(args, entity)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, pageSize, (page-1)*pageSize)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var amount int64
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &amount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Amount = domain.Money(amount)
		out = append(out, e)
	}
	return out, rows.Err()
}
