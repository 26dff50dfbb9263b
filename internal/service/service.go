package service

import (
	"context"
	"time"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

// AvailabilityResult reports why a date range is or is not bookable.
// Available is true only when there are no conflicts, no closures and no
// allowed-day violation.
type AvailabilityResult struct {
	Available        bool                    `json:"available"`
	Conflicts        []domain.Reservation    `json:"conflicts,omitempty"`
	Closures         []domain.SectionClosure `json:"closures,omitempty"`
	DayRuleViolation string                  `json:"day_rule_violation,omitempty"`
}

// DayAvailability is one cell of the monthly calendar.
type DayAvailability struct {
	Date      string `json:"date"` // yyyy-mm-dd
	Available bool   `json:"available"`
	Reserved  bool   `json:"reserved"`
	Closed    bool   `json:"closed"`
}

type AvailabilityService interface {
	// Check validates the range against blocking reservations, section
	// closures and the section's allowed checkout/return weekdays.
	// excludeReservationID removes one reservation from the conflict set,
	// used by the extension engine.
	Check(ctx context.Context, productID int32, start, end time.Time, excludeReservationID *int32) (*AvailabilityResult, error)
	// CheckTx is Check running against the caller's transaction-scoped
	// store, with the product already loaded.
	CheckTx(ctx context.Context, st repository.Store, product *domain.Product, start, end time.Time, excludeReservationID *int32) (*AvailabilityResult, error)
	MonthlyCalendar(ctx context.Context, productID int32, year int, month time.Month) ([]DayAvailability, error)
}

// AdjustParams qualifies a balance adjustment. AllowNegative is the explicit
// escape hatch for penalties; every other path keeps the balance at or above
// zero.
type AdjustParams struct {
	Type          domain.TransactionType
	Reason        string
	PerformedBy   int32
	Metadata      map[string]string
	AllowNegative bool
}

type CreditLedger interface {
	// Adjust applies amount to the user's balance and appends the ledger
	// row in one transaction.
	Adjust(ctx context.Context, userID, amount int32, p AdjustParams) (*domain.CreditTransaction, error)
	// AdjustTx composes the same adjustment into the caller's open
	// transaction.
	AdjustTx(ctx context.Context, st repository.Store, userID, amount int32, p AdjustParams) (*domain.CreditTransaction, error)
	GetBalance(ctx context.Context, userID int32) (int32, error)
	GetTransactions(ctx context.Context, userID, page, pageSize int32) ([]domain.CreditTransaction, int32, error)
	GetSummary(ctx context.Context, userID int32) (*domain.LedgerSummary, error)
}

type CreateMovementParams struct {
	ProductID     int32
	ReservationID *int32 // nil for out-of-band movements
	Type          domain.MovementType
	Condition     domain.ProductCondition // empty defaults to OK
	Notes         string
	Photos        []domain.MovementPhoto
	PerformedBy   int32
}

// MovementRecorder writes physical checkout/return events and keeps the
// product's last-known condition in sync. It does not validate reservation
// status; the reservation service does that before calling in.
type MovementRecorder interface {
	Record(ctx context.Context, p CreateMovementParams) (*domain.ProductMovement, error)
	RecordTx(ctx context.Context, st repository.Store, p CreateMovementParams) (*domain.ProductMovement, error)
	ListByReservation(ctx context.Context, reservationID int32) ([]domain.ProductMovement, error)
	ListByProduct(ctx context.Context, productID int32, page, pageSize int32) ([]domain.ProductMovement, int32, error)
}

type CreateReservationParams struct {
	UserID    int32
	ProductID int32
	StartDate time.Time
	EndDate   time.Time
	Notes     string
	// PerformedBy is the acting user; differs from UserID for admin-created
	// reservations.
	PerformedBy int32
}

type ReturnParams struct {
	ReservationID int32
	AdminID       int32
	Condition     domain.ProductCondition
	Notes         string
	Photos        []domain.MovementPhoto
}

type RefundParams struct {
	ReservationID int32
	Amount        int32 // 0 = full amount charged so far
	Reason        string
	PerformedBy   int32
}

type PenaltyParams struct {
	ReservationID int32
	Amount        int32
	Reason        string
	PerformedBy   int32
}

// ExtensionCheck reports whether a reservation can be extended and, when it
// cannot, which reservation blocks it and the latest end date that would
// still fit.
type ExtensionCheck struct {
	Possible            bool                `json:"possible"`
	AdditionalCost      int32               `json:"additional_cost,omitempty"`
	BlockingReservation *domain.Reservation `json:"blocking_reservation,omitempty"`
	LatestPossibleEnd   *time.Time          `json:"latest_possible_end,omitempty"`
}

type ReservationService interface {
	Create(ctx context.Context, p CreateReservationParams) (*domain.Reservation, error)
	Cancel(ctx context.Context, reservationID, actorID int32, reason string) (*domain.Reservation, error)
	Checkout(ctx context.Context, reservationID, adminID int32, notes string) (*domain.Reservation, error)
	Return(ctx context.Context, p ReturnParams) (*domain.Reservation, error)
	Refund(ctx context.Context, p RefundParams) (*domain.Reservation, error)
	Penalty(ctx context.Context, p PenaltyParams) (*domain.Reservation, error)

	CheckExtension(ctx context.Context, reservationID int32, newEnd time.Time) (*ExtensionCheck, error)
	Extend(ctx context.Context, reservationID, userID int32, newEnd time.Time) (*domain.Reservation, error)

	Get(ctx context.Context, reservationID int32) (*domain.Reservation, error)
	// GetForUser filters by owner so cross-user access is structurally
	// impossible on self-service endpoints.
	GetForUser(ctx context.Context, reservationID, userID int32) (*domain.Reservation, error)
	ListForUser(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
	ListForProduct(ctx context.Context, productID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error)

	QRCodePayload(ctx context.Context, reservationID int32) (string, error)
	ResolveQRCode(ctx context.Context, payload string) (*domain.Reservation, error)

	// SetAdminNotes replaces the desk-staff notes on a reservation without
	// touching its lifecycle state.
	SetAdminNotes(ctx context.Context, reservationID, adminID int32, notes string) (*domain.Reservation, error)
}

type ProductService interface {
	Create(ctx context.Context, actorID int32, product *domain.Product) error
	Get(ctx context.Context, id int32) (*domain.Product, error)
	Update(ctx context.Context, actorID int32, product *domain.Product) error
	// SetStatus flips display/maintenance state; existing reservations are
	// untouched.
	SetStatus(ctx context.Context, actorID, id int32, status domain.ProductStatus) error
	ListBySection(ctx context.Context, sectionID, page, pageSize int32) ([]domain.Product, int32, error)
}

type SectionService interface {
	Create(ctx context.Context, section *domain.Section) error
	Get(ctx context.Context, id int32) (*domain.Section, error)
	List(ctx context.Context) ([]domain.Section, error)
	Update(ctx context.Context, actorID int32, section *domain.Section) error
	Delete(ctx context.Context, actorID, id int32) error
	AddClosure(ctx context.Context, actorID int32, closure *domain.SectionClosure) error
	RemoveClosure(ctx context.Context, actorID, sectionID, closureID int32) error
}

// AuditSink is a fire-and-forget append-only log; failures are logged and
// swallowed, never propagated into the primary operation.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}

// AuditService adds the admin-facing query side to the sink.
type AuditService interface {
	AuditSink
	ListByTarget(ctx context.Context, targetType string, targetID, page, pageSize int32) ([]domain.AuditEntry, int32, error)
}

// NotificationSink delivers best-effort user notifications; it silently
// no-ops when the user disabled the notification's category.
type NotificationSink interface {
	Notify(ctx context.Context, userID int32, notifType, title, message string, attrs map[string]string)
}

type NotificationService interface {
	NotificationSink
	GetNotifications(ctx context.Context, userID, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	// Send delivers a plain-text email. Lifecycle notifications reuse their
	// in-app title and message as subject and body.
	Send(ctx context.Context, email, subject, body string) error
	SendReturnReminder(ctx context.Context, email, name, productName string, endDate time.Time) error
}
