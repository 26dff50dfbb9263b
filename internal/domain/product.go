package domain

import "time"

type ProductStatus string

const (
	ProductStatusAvailable   ProductStatus = "AVAILABLE"
	ProductStatusUnavailable ProductStatus = "UNAVAILABLE"
	ProductStatusMaintenance ProductStatus = "MAINTENANCE"
	ProductStatusArchived    ProductStatus = "ARCHIVED"
)

type CreditPeriod string

const (
	CreditPeriodDay  CreditPeriod = "DAY"
	CreditPeriodWeek CreditPeriod = "WEEK"
)

// Days returns the number of days one billing period covers.
func (p CreditPeriod) Days() int32 {
	if p == CreditPeriodWeek {
		return 7
	}
	return 1
}

type Product struct {
	ID             int32             `json:"id"`
	Name           string            `json:"name"`
	Reference      string            `json:"reference"`
	Description    string            `json:"description"`
	SectionID      int32             `json:"section_id"`
	SubsectionID   *int32            `json:"subsection_id,omitempty"`
	PricePerPeriod int32             `json:"price_per_period"` // credits
	CreditPeriod   CreditPeriod      `json:"credit_period"`
	MinDuration    int32             `json:"min_duration"` // days
	MaxDuration    int32             `json:"max_duration"` // days, 0 = unlimited
	Status         ProductStatus     `json:"status"`
	LastCondition  ProductCondition  `json:"last_condition"`
	LastMovementAt *time.Time        `json:"last_movement_at,omitempty"`
	CreatedOn      time.Time         `json:"created_on"`
	UpdatedOn      time.Time         `json:"updated_on"`
}

// AcceptsReservations reports whether new reservations may be created for
// the product. UNAVAILABLE is an operator display status and does not block.
func (p *Product) AcceptsReservations() bool {
	return p.Status != ProductStatusMaintenance && p.Status != ProductStatusArchived
}
