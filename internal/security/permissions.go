package security

import (
	"context"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

// Permission keys gating admin operations.
const (
	PermReservationManage = "reservation.manage" // checkout, return, admin-create
	PermCreditManage      = "credit.manage"      // adjustments, refunds, penalties
	PermInventoryManage   = "inventory.manage"   // products, movements
	PermSectionManage     = "section.manage"     // sections, closures
	PermAuditView         = "audit.view"         // audit log queries
)

// PermissionChecker answers whether a user may perform a gated operation,
// optionally scoped to a section. The lifecycle services trust that the API
// layer consulted it before calling in.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID int32, permission string, sectionID *int32) (bool, error)
}

var rolePermissions = map[domain.UserRole]map[string]bool{
	domain.UserRoleAdmin: {
		PermReservationManage: true,
		PermCreditManage:      true,
		PermInventoryManage:   true,
		PermSectionManage:     true,
		PermAuditView:         true,
	},
	domain.UserRoleManager: {
		PermReservationManage: true,
		PermInventoryManage:   true,
	},
	domain.UserRoleMember: {},
}

type rolePermissionChecker struct {
	store repository.Store
}

func NewPermissionChecker(store repository.Store) PermissionChecker {
	return &rolePermissionChecker{store: store}
}

func (c *rolePermissionChecker) HasPermission(ctx context.Context, userID int32, permission string, sectionID *int32) (bool, error) {
	user, err := c.store.Users().GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.Active {
		return false, nil
	}
	return rolePermissions[user.Role][permission], nil
}
