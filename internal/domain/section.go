package domain

import "time"

// Section groups products and carries the pickup/return rules that the
// availability calculator enforces.
type Section struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *int32 `json:"parent_id,omitempty"` // set for subsections
	// AllowedDaysOut / AllowedDaysIn hold the weekdays (0 = Sunday .. 6 =
	// Saturday) on which checkout respectively return may occur. An empty
	// list allows every day.
	AllowedDaysOut      []int32   `json:"allowed_days_out"`
	AllowedDaysIn       []int32   `json:"allowed_days_in"`
	RefundDeadlineHours int32     `json:"refund_deadline_hours"`
	IsSystem            bool      `json:"is_system"` // protected, rejects mutation
	CreatedOn           time.Time `json:"created_on"`
	UpdatedOn           time.Time `json:"updated_on"`
}

// AllowsCheckoutOn reports whether pickup may happen on the given weekday.
func (s *Section) AllowsCheckoutOn(day time.Weekday) bool {
	return allowsDay(s.AllowedDaysOut, day)
}

// AllowsReturnOn reports whether return may happen on the given weekday.
func (s *Section) AllowsReturnOn(day time.Weekday) bool {
	return allowsDay(s.AllowedDaysIn, day)
}

func allowsDay(days []int32, day time.Weekday) bool {
	if len(days) == 0 {
		return true
	}
	for _, d := range days {
		if d == int32(day) {
			return true
		}
	}
	return false
}

// SectionClosure is an admin-defined date range during which a section's
// products cannot be reserved, picked up or returned.
type SectionClosure struct {
	ID        int32     `json:"id"`
	SectionID int32     `json:"section_id"`
	StartDate time.Time `json:"start_date"` // date, inclusive
	EndDate   time.Time `json:"end_date"`   // date, inclusive
	Reason    string    `json:"reason"`
	CreatedOn time.Time `json:"created_on"`
}

// Covers reports whether the closure covers the given date.
func (c *SectionClosure) Covers(date time.Time) bool {
	return !date.Before(c.StartDate) && !date.After(c.EndDate)
}
