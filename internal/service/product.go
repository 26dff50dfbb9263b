package service

import (
	"context"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type productService struct {
	store repository.Store
	audit AuditSink
}

func NewProductService(store repository.Store, audit AuditSink) ProductService {
	return &productService{store: store, audit: audit}
}

func (s *productService) validate(ctx context.Context, product *domain.Product) error {
	if product.Name == "" {
		return domain.ValidationError("product name is required")
	}
	if product.PricePerPeriod < 0 {
		return domain.ValidationError("price per period cannot be negative")
	}
	if product.CreditPeriod != domain.CreditPeriodDay && product.CreditPeriod != domain.CreditPeriodWeek {
		return domain.ValidationError("unknown credit period %q", product.CreditPeriod)
	}
	if product.MinDuration < 0 || product.MaxDuration < 0 {
		return domain.ValidationError("durations cannot be negative")
	}
	if product.MaxDuration > 0 && product.MinDuration > product.MaxDuration {
		return domain.ValidationError("minimum duration %d exceeds maximum %d", product.MinDuration, product.MaxDuration)
	}
	if _, err := s.store.Sections().GetByID(ctx, product.SectionID); err != nil {
		return err
	}
	if product.SubsectionID != nil {
		sub, err := s.store.Sections().GetByID(ctx, *product.SubsectionID)
		if err != nil {
			return err
		}
		if sub.ParentID == nil || *sub.ParentID != product.SectionID {
			return domain.ValidationError("subsection %d does not belong to section %d", *product.SubsectionID, product.SectionID)
		}
	}
	return nil
}

func (s *productService) Create(ctx context.Context, actorID int32, product *domain.Product) error {
	if product.Status == "" {
		product.Status = domain.ProductStatusAvailable
	}
	if err := s.validate(ctx, product); err != nil {
		return err
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actorID,
		Action:      domain.AuditProductUpdate,
		TargetType:  "product",
		TargetID:    product.ID,
		Metadata:    map[string]string{"created": "true"},
	})
	return nil
}

func (s *productService) Get(ctx context.Context, id int32) (*domain.Product, error) {
	return s.store.Products().GetByID(ctx, id)
}

func (s *productService) Update(ctx context.Context, actorID int32, product *domain.Product) error {
	if _, err := s.store.Products().GetByID(ctx, product.ID); err != nil {
		return err
	}
	if err := s.validate(ctx, product); err != nil {
		return err
	}
	if err := s.store.Products().Update(ctx, product); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actorID,
		Action:      domain.AuditProductUpdate,
		TargetType:  "product",
		TargetID:    product.ID,
	})
	return nil
}

func (s *productService) SetStatus(ctx context.Context, actorID, id int32, status domain.ProductStatus) error {
	switch status {
	case domain.ProductStatusAvailable, domain.ProductStatusUnavailable,
		domain.ProductStatusMaintenance, domain.ProductStatusArchived:
	default:
		return domain.ValidationError("unknown product status %q", status)
	}
	if _, err := s.store.Products().GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Products().UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actorID,
		Action:      domain.AuditProductUpdate,
		TargetType:  "product",
		TargetID:    id,
		Metadata:    map[string]string{"status": string(status)},
	})
	return nil
}

func (s *productService) ListBySection(ctx context.Context, sectionID, page, pageSize int32) ([]domain.Product, int32, error) {
	return s.store.Products().ListBySection(ctx, sectionID, page, pageSize)
}
