package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	// Admin permissions
	PermissionReadAdmin  = "admin:read"
	PermissionWriteAdmin = "admin:write"

	// Investor permissions
	PermissionListingRead  = "listing:read"
	PermissionMatchRead    = "match:read"
	PermissionProfileWrite = "profile:write"
	PermissionPledgeRead   = "pledge:read"
	PermissionPledgeWrite  = "pledge:write"

	// Business permissions
	PermissionListingWrite   = "listing:write"
	PermissionPledgeDecide   = "pledge:decide"
	PermissionChangePassword = "user:change-password"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionListingRead,
			PermissionListingWrite,
			PermissionMatchRead,
			PermissionProfileWrite,
			PermissionPledgeRead,
			PermissionPledgeWrite,
			PermissionPledgeDecide,
			PermissionChangePassword,
			PermissionReadAdmin,
			PermissionWriteAdmin,
		}
	case RoleBusiness:
		return []string{
			PermissionListingRead,
			PermissionListingWrite,
			PermissionPledgeRead,
			PermissionPledgeDecide,
			PermissionChangePassword,
		}
	case RoleInvestor:
		return []string{
			PermissionListingRead,
			PermissionMatchRead,
			PermissionProfileWrite,
			PermissionPledgeRead,
			PermissionPledgeWrite,
			PermissionChangePassword,
		}
	default:
		return []string{}
	}
}
