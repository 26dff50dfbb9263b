package domain

import "time"

// Notification categories used for per-user opt-out.
const (
	NotificationCategoryReservation = "RESERVATION"
	NotificationCategoryCredit      = "CREDIT"
	NotificationCategoryReminder    = "REMINDER"
)

const (
	NotificationReservationConfirmed = "RESERVATION_CONFIRMED"
	NotificationReservationCancelled = "RESERVATION_CANCELLED"
	NotificationReservationCheckedOut = "RESERVATION_CHECKED_OUT"
	NotificationReservationReturned  = "RESERVATION_RETURNED"
	NotificationReservationExtended  = "RESERVATION_EXTENDED"
	NotificationReservationRefunded  = "RESERVATION_REFUNDED"
	NotificationPenaltyApplied       = "PENALTY_APPLIED"
	NotificationReturnReminder       = "RETURN_REMINDER"
)

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedOn  time.Time         `json:"created_on"`
}

// Category maps a notification type to its opt-out category.
func (n *Notification) Category() string {
	switch n.Type {
	case NotificationReturnReminder:
		return NotificationCategoryReminder
	case NotificationReservationRefunded, NotificationPenaltyApplied:
		return NotificationCategoryCredit
	default:
		return NotificationCategoryReservation
	}
}
