package service

import (
	"context"
	"strconv"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
	"gearbook-backend/internal/utils"
)

type sectionService struct {
	store repository.Store
	audit AuditSink
}

func NewSectionService(store repository.Store, audit AuditSink) SectionService {
	return &sectionService{store: store, audit: audit}
}

func validateAllowedDays(days []int32) error {
	for _, d := range days {
		if d < 0 || d > 6 {
			return domain.ValidationError("allowed day %d out of range 0-6", d)
		}
	}
	return nil
}

func (s *sectionService) Create(ctx context.Context, section *domain.Section) error {
	if section.Name == "" {
		return domain.ValidationError("section name is required")
	}
	if err := validateAllowedDays(section.AllowedDaysOut); err != nil {
		return err
	}
	if err := validateAllowedDays(section.AllowedDaysIn); err != nil {
		return err
	}
	if section.ParentID != nil {
		parent, err := s.store.Sections().GetByID(ctx, *section.ParentID)
		if err != nil {
			return err
		}
		if parent.ParentID != nil {
			return domain.ValidationError("subsections cannot be nested")
		}
	}
	return s.store.Sections().Create(ctx, section)
}

func (s *sectionService) Get(ctx context.Context, id int32) (*domain.Section, error) {
	return s.store.Sections().GetByID(ctx, id)
}

func (s *sectionService) List(ctx context.Context) ([]domain.Section, error) {
	return s.store.Sections().List(ctx)
}

func (s *sectionService) Update(ctx context.Context, actorID int32, section *domain.Section) error {
	current, err := s.store.Sections().GetByID(ctx, section.ID)
	if err != nil {
		return err
	}
	if current.IsSystem {
		return domain.ForbiddenError("section %q is managed by the system and cannot be modified", current.Name)
	}
	if section.Name == "" {
		return domain.ValidationError("section name is required")
	}
	if err := validateAllowedDays(section.AllowedDaysOut); err != nil {
		return err
	}
	if err := validateAllowedDays(section.AllowedDaysIn); err != nil {
		return err
	}
	if err := s.store.Sections().Update(ctx, section); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actorID,
		Action:      domain.AuditSectionUpdate,
		TargetType:  "section",
		TargetID:    section.ID,
	})
	return nil
}

func (s *sectionService) Delete(ctx context.Context, actorID, id int32) error {
	current, err := s.store.Sections().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.IsSystem {
		return domain.ForbiddenError("section %q is managed by the system and cannot be deleted", current.Name)
	}
	if err := s.store.Sections().Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actorID,
		Action:      domain.AuditSectionUpdate,
		TargetType:  "section",
		TargetID:    id,
		Metadata:    map[string]string{"deleted": "true"},
	})
	return nil
}

func (s *sectionService) AddClosure(ctx context.Context, actorID int32, closure *domain.SectionClosure) error {
	closure.StartDate = utils.NormalizeDate(closure.StartDate)
	closure.EndDate = utils.NormalizeDate(closure.EndDate)
	if closure.EndDate.Before(closure.StartDate) {
		return domain.ValidationError("closure end date before start date")
	}
	if _, err := s.store.Sections().GetByID(ctx, closure.SectionID); err != nil {
		return err
	}
	if err := s.store.Sections().CreateClosure(ctx, closure); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actorID,
		Action:      domain.AuditSectionUpdate,
		TargetType:  "section",
		TargetID:    closure.SectionID,
		Metadata: map[string]string{
			"closure_id": strconv.FormatInt(int64(closure.ID), 10),
			"from":       closure.StartDate.Format("2006-01-02"),
			"to":         closure.EndDate.Format("2006-01-02"),
		},
	})
	return nil
}

func (s *sectionService) RemoveClosure(ctx context.Context, actorID, sectionID, closureID int32) error {
	if _, err := s.store.Sections().GetByID(ctx, sectionID); err != nil {
		return err
	}
	if err := s.store.Sections().DeleteClosure(ctx, closureID); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.AuditEntry{
		PerformedBy: actorID,
		Action:      domain.AuditSectionUpdate,
		TargetType:  "section",
		TargetID:    sectionID,
		Metadata:    map[string]string{"closure_removed": strconv.FormatInt(int64(closureID), 10)},
	})
	return nil
}
