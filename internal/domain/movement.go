package domain

import "time"

type MovementType string

const (
	MovementTypeCheckout MovementType = "CHECKOUT"
	MovementTypeReturn   MovementType = "RETURN"
)

type ProductCondition string

const (
	ConditionOK           ProductCondition = "OK"
	ConditionMinorDamage  ProductCondition = "MINOR_DAMAGE"
	ConditionMajorDamage  ProductCondition = "MAJOR_DAMAGE"
	ConditionMissingParts ProductCondition = "MISSING_PARTS"
	ConditionBroken       ProductCondition = "BROKEN"
)

// Valid reports whether the condition is one of the known values.
func (c ProductCondition) Valid() bool {
	switch c {
	case ConditionOK, ConditionMinorDamage, ConditionMajorDamage, ConditionMissingParts, ConditionBroken:
		return true
	}
	return false
}

// Damaged reports whether the condition indicates damage. Damage on return
// is recorded but never charges a penalty by itself; penalties are explicit
// admin actions.
func (c ProductCondition) Damaged() bool {
	switch c {
	case ConditionMinorDamage, ConditionMajorDamage, ConditionMissingParts, ConditionBroken:
		return true
	}
	return false
}

// ProductMovement is an append-only record of a physical checkout or return.
type ProductMovement struct {
	ID            int32            `json:"id"`
	ProductID     int32            `json:"product_id"`
	ReservationID *int32           `json:"reservation_id,omitempty"` // nil for out-of-band movements
	Type          MovementType     `json:"type"`
	Condition     ProductCondition `json:"condition"`
	Notes         string           `json:"notes"`
	Photos        []MovementPhoto  `json:"photos,omitempty"`
	PerformedBy   int32            `json:"performed_by"`
	PerformedAt   time.Time        `json:"performed_at"`
}

type MovementPhoto struct {
	ID         int32  `json:"id"`
	MovementID int32  `json:"movement_id"`
	Key        string `json:"key"` // blob store key
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	SortOrder  int32  `json:"sort_order"`
}
