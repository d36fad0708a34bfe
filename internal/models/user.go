package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleInvestor = "investor"
	RoleBusiness = "business"
	RoleAdmin    = "admin"
)

// ValidRole reports whether role is one of the marketplace roles.
func ValidRole(role string) bool {
	return role == RoleInvestor || role == RoleBusiness || role == RoleAdmin
}

type User struct {
	gorm.Model
	Email               string `gorm:"uniqueIndex;not null"`
	Password            string `gorm:"not null"`
	Name                string `gorm:"not null"`
	Country             string
	Role                string `gorm:"default:'investor'"`
	Status              string `gorm:"default:'active'"`
	LastLoginAt         time.Time
	FailedLoginAttempts int `gorm:"default:0"`
	TokenVersion        int `gorm:"default:1"`
}

// CreateUserInput carries the fields accepted at registration.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Country  string `json:"country"`
	Role     string `json:"role"`
}
