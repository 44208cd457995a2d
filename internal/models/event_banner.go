package models

import "time"

// EventBanner is the single promotional banner shown on the storefront
type EventBanner struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	EndDate     *time.Time `json:"endDate,omitempty" db:"end_date"`
	ProductID   *string    `json:"productId,omitempty" db:"product_id"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	Product *Product `json:"product,omitempty"`
}

// EventBannerInput is the admin payload for creating or replacing the banner
type EventBannerInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	EndDate     *time.Time `json:"endDate"`
	ProductID   *string    `json:"product"`
}
