package domain

import "time"

// Audit actions recorded by the reservation lifecycle.
const (
	AuditReservationCreate   = "RESERVATION_CREATE"
	AuditReservationCancel   = "RESERVATION_CANCEL"
	AuditReservationCheckout = "RESERVATION_CHECKOUT"
	AuditReservationReturn   = "RESERVATION_RETURN"
	AuditReservationExtend   = "RESERVATION_EXTEND"
	AuditReservationRefund   = "RESERVATION_REFUND"
	AuditReservationPenalty  = "RESERVATION_PENALTY"
	AuditReservationNotes    = "RESERVATION_NOTES"
	AuditCreditAdjustment    = "CREDIT_ADJUSTMENT"
	AuditSectionUpdate       = "SECTION_UPDATE"
	AuditProductUpdate       = "PRODUCT_UPDATE"
)

// AuditEntry is an append-only record of an administrative or lifecycle
// action. Writing audit entries is best-effort and never fails the primary
// operation.
type AuditEntry struct {
	ID          int32             `json:"id"`
	PerformedBy int32             `json:"performed_by"`
	Action      string            `json:"action"`
	TargetType  string            `json:"target_type"`
	TargetID    int32             `json:"target_id"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedOn   time.Time         `json:"created_on"`
}
