package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole represents user roles in the system
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleSeller   UserRole = "seller"
	UserRoleAdmin    UserRole = "admin"
)

// ParseUserRole converts a raw role string into one of the known roles.
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case UserRoleCustomer:
		return UserRoleCustomer, nil
	case UserRoleSeller:
		return UserRoleSeller, nil
	case UserRoleAdmin:
		return UserRoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsValid reports whether r is one of the declared roles
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleCustomer, UserRoleSeller, UserRoleAdmin:
		return true
	}
	return false
}

// User represents an account in the marketplace
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserRegistration represents user registration data
type UserRegistration struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// UserLogin represents user login data
type UserLogin struct {
	Email    string `json:"email" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// UserAdminUpdate is the set of fields an admin may change on an account
type UserAdminUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}
