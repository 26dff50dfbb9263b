package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gearbook-backend/internal/cache"
	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/logger"
	"gearbook-backend/internal/repository"
	"gearbook-backend/internal/utils"
)

type availabilityService struct {
	store repository.Store
	cache *cache.AvailabilityCache
}

func NewAvailabilityService(store repository.Store, calendarCache *cache.AvailabilityCache) AvailabilityService {
	return &availabilityService{store: store, cache: calendarCache}
}

func (s *availabilityService) Check(ctx context.Context, productID int32, start, end time.Time, excludeReservationID *int32) (*AvailabilityResult, error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.CheckTx(ctx, s.store, product, start, end, excludeReservationID)
}

func (s *availabilityService) CheckTx(ctx context.Context, st repository.Store, product *domain.Product, start, end time.Time, excludeReservationID *int32) (*AvailabilityResult, error) {
	start = utils.NormalizeDate(start)
	end = utils.NormalizeDate(end)
	if end.Before(start) {
		return nil, domain.ValidationError("end date %s before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	conflicts, err := st.Reservations().FindOverlapping(ctx, product.ID, start, end, excludeReservationID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping reservations: %w", err)
	}

	closures, err := st.Sections().ClosuresInRange(ctx, product.SectionID, start, end)
	if err != nil {
		return nil, fmt.Errorf("find section closures: %w", err)
	}

	result := &AvailabilityResult{
		Conflicts: conflicts,
		Closures:  closures,
	}

	section, err := st.Sections().GetByID(ctx, product.SectionID)
	if err != nil {
		return nil, err
	}
	if !section.AllowsCheckoutOn(start.Weekday()) {
		result.DayRuleViolation = fmt.Sprintf("section does not allow checkout on %s", start.Weekday())
	} else if !section.AllowsReturnOn(end.Weekday()) {
		result.DayRuleViolation = fmt.Sprintf("section does not allow return on %s", end.Weekday())
	}

	result.Available = len(conflicts) == 0 && len(closures) == 0 && result.DayRuleViolation == ""
	return result, nil
}

func (s *availabilityService) MonthlyCalendar(ctx context.Context, productID int32, year int, month time.Month) ([]DayAvailability, error) {
	if payload, ok := s.cache.Get(ctx, productID, year, month); ok {
		var days []DayAvailability
		if err := json.Unmarshal(payload, &days); err == nil {
			return days, nil
		}
		logger.Warn("discarding malformed cached calendar", "product_id", productID)
	}

	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	reservations, err := s.store.Reservations().FindBlockingInMonth(ctx, productID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	closures, err := s.store.Sections().ClosuresInRange(ctx, product.SectionID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	days := make([]DayAvailability, 0, monthEnd.Day())
	for d := monthStart; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
		day := DayAvailability{Date: d.Format("2006-01-02")}
		for i := range reservations {
			r := &reservations[i]
			if !d.Before(r.StartDate) && !d.After(r.EndDate) {
				day.Reserved = true
				break
			}
		}
		for i := range closures {
			if closures[i].Covers(d) {
				day.Closed = true
				break
			}
		}
		day.Available = !day.Reserved && !day.Closed
		days = append(days, day)
	}

	if payload, err := json.Marshal(days); err == nil {
		s.cache.Set(ctx, productID, year, month, payload)
	}
	return days, nil
}
