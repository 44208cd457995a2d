package models

import "time"

// SellerProduct is a seller's resale offer of a catalog product at their own price
type SellerProduct struct {
	ID            string    `json:"id" db:"id"`
	SellerID      string    `json:"sellerId" db:"seller_id"`
	ProductID     string    `json:"productId" db:"product_id"`
	SellerPrice   float64   `json:"sellerPrice" db:"seller_price"`
	IsListed      bool      `json:"isListed" db:"is_listed"`
	IsFeatured    bool      `json:"isFeatured" db:"is_featured"`
	IsDiscover    bool      `json:"isDiscover" db:"is_discover"`
	IsRecommended bool      `json:"isRecommended" db:"is_recommended"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	Product *ListingProduct `json:"product,omitempty"`
	Seller  *SellerSummary  `json:"seller,omitempty"`
}

// ListingProduct is the product slice embedded in a listing
type ListingProduct struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Price  float64        `json:"price"`
	Images []ProductImage `json:"images"`
}

// ListingCreation represents a seller listing a product
type ListingCreation struct {
	ProductID   string  `json:"productId" binding:"required"`
	SellerPrice float64 `json:"sellerPrice" binding:"required,gt=0"`
}

// ListingPriceUpdate changes the price of one of the seller's listings
type ListingPriceUpdate struct {
	SellerProductID string  `json:"sellerProductId" binding:"required"`
	SellerPrice     float64 `json:"sellerPrice" binding:"required,gt=0"`
}

// ListingReference points at one of the seller's listings
type ListingReference struct {
	SellerProductID string `json:"sellerProductId" binding:"required"`
}
