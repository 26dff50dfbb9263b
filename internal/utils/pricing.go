package utils

import (
	"fmt"
	"time"

	"gearbook-backend/internal/domain"
)

// NormalizeDate truncates a timestamp to its UTC calendar date.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate converts a yyyy-mm-dd formatted string into a UTC date.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", dateStr)
	}
	return t.UTC(), nil
}

// DurationDays counts the days a reservation spans, including both the start
// and the end date: start == end is one day.
func DurationDays(start, end time.Time) int32 {
	return int32(NormalizeDate(end).Sub(NormalizeDate(start)).Hours()/24) + 1
}

// ReservationCost converts a date range into credits using the product's
// billing period: ceil(days / periodDays) * pricePerPeriod.
func ReservationCost(product *domain.Product, start, end time.Time) (int32, error) {
	days := DurationDays(start, end)
	if days < 1 {
		return 0, fmt.Errorf("end date %s before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return periodsFor(days, product.CreditPeriod) * product.PricePerPeriod, nil
}

// ExtensionCost charges the days strictly after the current end date, since
// the end day itself was already billed at creation.
func ExtensionCost(product *domain.Product, currentEnd, newEnd time.Time) (int32, error) {
	extraDays := int32(NormalizeDate(newEnd).Sub(NormalizeDate(currentEnd)).Hours() / 24)
	if extraDays < 1 {
		return 0, fmt.Errorf("new end date %s not after current end date %s",
			newEnd.Format("2006-01-02"), currentEnd.Format("2006-01-02"))
	}
	return periodsFor(extraDays, product.CreditPeriod) * product.PricePerPeriod, nil
}

func periodsFor(days int32, period domain.CreditPeriod) int32 {
	periodDays := period.Days()
	periods := days / periodDays
	if days%periodDays > 0 {
		periods++
	}
	return periods
}
