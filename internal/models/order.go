package models

import "time"

// OrderStatus represents order status
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
)

// OrderItem is one listing bought within an order, with its price at purchase time
type OrderItem struct {
	ID        string  `json:"id" db:"id"`
	OrderID   string  `json:"orderId" db:"order_id"`
	ListingID string  `json:"listingId" db:"listing_id"`
	ProductID string  `json:"productId" db:"product_id"`
	SellerID  string  `json:"sellerId" db:"seller_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	Price     float64 `json:"price" db:"price"`
}

// Order represents a customer purchase across one or more listings
type Order struct {
	ID         string      `json:"id" db:"id"`
	UserID     string      `json:"userId" db:"user_id"`
	TotalPrice float64     `json:"totalPrice" db:"total_price"`
	Status     OrderStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time   `json:"updatedAt" db:"updated_at"`
	Items      []OrderItem `json:"items"`

	// Joined data (populated when needed)
	User *UserSummary `json:"user,omitempty"`
}

// OrderItemRequest is one line of an order placement
type OrderItemRequest struct {
	ListingID string `json:"listingId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
}

// OrderCreation represents data for placing an order
type OrderCreation struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// Analytics is the admin dashboard aggregate
type Analytics struct {
	TotalUsers     int     `json:"totalUsers"`
	TotalProducts  int     `json:"totalProducts"`
	TotalOrders    int     `json:"totalOrders"`
	TotalVendors   int     `json:"totalVendors"`
	PendingVendors int     `json:"pendingVendors"`
	TotalSales     float64 `json:"totalSales"`
}
