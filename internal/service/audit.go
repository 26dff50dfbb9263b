package service

import (
	"context"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/logger"
	"gearbook-backend/internal/repository"
)

type auditService struct {
	store repository.Store
}

func NewAuditSink(store repository.Store) AuditService {
	return &auditService{store: store}
}

// Record appends the entry and swallows failures; the audit trail must never
// break the operation it describes.
func (s *auditService) Record(ctx context.Context, entry domain.AuditEntry) {
	if err := s.store.Audit().Create(ctx, &entry); err != nil {
		logger.WithService("audit").Warn("failed to write audit entry",
			"action", entry.Action, "target_type", entry.TargetType,
			"target_id", entry.TargetID, "error", err)
	}
}

var auditTargetTypes = map[string]bool{
	"reservation": true,
	"product":     true,
	"section":     true,
	"user":        true,
}

func (s *auditService) ListByTarget(ctx context.Context, targetType string, targetID, page, pageSize int32) ([]domain.AuditEntry, int32, error) {
	if !auditTargetTypes[targetType] {
		return nil, 0, domain.ValidationError("unknown audit target type %q", targetType)
	}
	return s.store.Audit().ListByTarget(ctx, targetType, targetID, page, pageSize)
}
