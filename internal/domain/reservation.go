package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusConfirmed  ReservationStatus = "CONFIRMED"
	ReservationStatusCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationStatusReturned   ReservationStatus = "RETURNED"
	ReservationStatusCancelled  ReservationStatus = "CANCELLED"
)

// BlockingStatuses are the statuses that occupy a product's calendar and
// prevent other overlapping reservations.
var BlockingStatuses = []ReservationStatus{
	ReservationStatusConfirmed,
	ReservationStatusCheckedOut,
}

func (s ReservationStatus) Blocking() bool {
	return s == ReservationStatusConfirmed || s == ReservationStatusCheckedOut
}

type Reservation struct {
	ID                 int32             `json:"id"`
	UserID             int32             `json:"user_id"`
	ProductID          int32             `json:"product_id"`
	StartDate          time.Time         `json:"start_date"` // date, UTC midnight
	EndDate            time.Time         `json:"end_date"`   // date, UTC midnight, inclusive
	Status             ReservationStatus `json:"status"`
	CreditsCharged     int32             `json:"credits_charged"`
	ExtensionCount     int32             `json:"extension_count"`
	TotalExtensionCost int32             `json:"total_extension_cost"`
	// Refunded marks a credit-only reversal; it does not affect the
	// physical lifecycle and can coexist with any status.
	Refunded       bool      `json:"refunded"`
	RefundedAmount int32     `json:"refunded_amount"`
	Notes          string    `json:"notes"`
	AdminNotes     string    `json:"admin_notes"`
	CreatedOn      time.Time `json:"created_on"`
	UpdatedOn      time.Time `json:"updated_on"`
}

// TotalCharged is the full amount the user paid for the reservation,
// including extension charges.
func (r *Reservation) TotalCharged() int32 {
	return r.CreditsCharged + r.TotalExtensionCost
}
