package postgres

import (
	"context"
	"encoding/json"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type auditRepository struct {
	q DBTX
}

func NewAuditRepository(q DBTX) repository.AuditRepository {
	return &auditRepository{q: q}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	metadata, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}
	query := `INSERT INTO audit_log (performed_by, action, target_type, target_id, metadata)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_on`
	return r.q.QueryRowContext(ctx, query, entry.PerformedBy, entry.Action, entry.TargetType,
		entry.TargetID, metadata).Scan(&entry.ID, &entry.CreatedOn)
}

func (r *auditRepository) ListByTarget(ctx context.Context, targetType string, targetID int32, page, pageSize int32) ([]domain.AuditEntry, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM audit_log WHERE target_type = $1 AND target_id = $2`
	if err := r.q.QueryRowContext(ctx, countQuery, targetType, targetID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, performed_by, action, target_type, target_id, metadata, created_on
	          FROM audit_log WHERE target_type = $1 AND target_id = $2
	          ORDER BY created_on DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.QueryContext(ctx, query, targetType, targetID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var metadata []byte
		if err := rows.Scan(&e.ID, &e.PerformedBy, &e.Action, &e.TargetType, &e.TargetID, &metadata, &e.CreatedOn); err != nil {
			return nil, 0, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, 0, err
			}
		}
		entries = append(entries, e)
	}
	return entries, count, rows.Err()
}
