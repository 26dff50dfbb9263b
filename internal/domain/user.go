package domain

import "time"

type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleManager UserRole = "MANAGER"
	UserRoleMember  UserRole = "MEMBER"
)

type User struct {
	ID            int32      `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          UserRole   `json:"role"`
	CreditBalance int32      `json:"credit_balance"` // denormalized sum of ledger transactions
	Active        bool       `json:"active"`
	// NotificationPrefs maps a notification category to an opt-in flag.
	// A missing category counts as enabled.
	NotificationPrefs map[string]bool `json:"notification_prefs,omitempty"`
	LastLoginAt       *time.Time      `json:"last_login_at,omitempty"`
	CreatedOn         time.Time       `json:"created_on"`
	UpdatedOn         time.Time       `json:"updated_on"`
}

// WantsNotification reports whether the user receives in-app notifications
// for the given category.
func (u *User) WantsNotification(category string) bool {
	if u.NotificationPrefs == nil {
		return true
	}
	enabled, ok := u.NotificationPrefs[category]
	return !ok || enabled
}
