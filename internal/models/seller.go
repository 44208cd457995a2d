package models

import "time"

// Seller is the business profile attached one-to-one to a user account
type Seller struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"userId" db:"user_id"`
	BusinessName    string     `json:"businessName" db:"business_name"`
	Phone           string     `json:"phone" db:"phone"`
	Email           string     `json:"email" db:"email"`
	IsApproved      bool       `json:"isApproved" db:"is_approved"`
	ApprovalDate    *time.Time `json:"approvalDate,omitempty" db:"approval_date"`
	ApprovedBy      *string    `json:"approvedBy,omitempty" db:"approved_by"`
	RejectionReason *string    `json:"rejectionReason,omitempty" db:"rejection_reason"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	User *UserSummary `json:"user,omitempty"`
}

// UserSummary is the public slice of a user embedded in other records
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SellerRegistration represents data for opening a seller profile
type SellerRegistration struct {
	BusinessName string `json:"businessName" binding:"required,max=200"`
	Phone        string `json:"phone" binding:"required,max=30"`
	Email        string `json:"email" binding:"required,email,max=100"`
}

// SellerSummary is the public slice of a seller embedded in listings and products
type SellerSummary struct {
	ID           string `json:"id"`
	BusinessName string `json:"businessName"`
}
