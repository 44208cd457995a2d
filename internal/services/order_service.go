package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/utils"
)

// OrderService handles order placement and history
type OrderService struct {
	db *sql.DB
}

// NewOrderService creates a new order service
func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

// PlaceOrder snapshots the current seller price of every listed item and stores the
// order with its items in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, creation *models.OrderCreation) (*models.Order, error) {
	if len(creation.Items) == 0 {
		return nil, BadRequest("Order must contain at least one item")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := utils.Now()
	order := &models.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    models.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     make([]models.OrderItem, 0, len(creation.Items)),
	}

	for _, req := range creation.Items {
		if req.Quantity < 1 {
			return nil, BadRequest("Quantity must be at least 1")
		}

		var item models.OrderItem
		var isListed bool
		err := tx.QueryRowContext(ctx,
			"SELECT product_id, seller_id, seller_price, is_listed FROM seller_products WHERE id = ?",
			req.ListingID,
		).Scan(&item.ProductID, &item.SellerID, &item.Price, &isListed)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound(MsgListingNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load listing: %w", err)
		}
		if !isListed {
			return nil, BadRequest("Listing is no longer available")
		}

		item.ID = uuid.New().String()
		item.OrderID = order.ID
		item.ListingID = req.ListingID
		item.Quantity = req.Quantity
		order.Items = append(order.Items, item)
		order.TotalPrice += item.Price * float64(item.Quantity)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, order.ID, order.UserID, order.TotalPrice, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, listing_id, product_id, seller_id, quantity, price)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, item.ID, item.OrderID, item.ListingID, item.ProductID, item.SellerID, item.Quantity, item.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			"UPDATE products SET sold_count = sold_count + ? WHERE id = ?",
			item.Quantity, item.ProductID,
		); err != nil {
			return nil, fmt.Errorf("failed to update sold count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	log.Printf("🛒 Order %s placed by %s (%d item(s), total %.2f)", order.ID, userID, len(order.Items), order.TotalPrice)
	return order, nil
}

// ListForUser returns the caller's orders, newest first
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*models.Order, error) {
	return s.listOrders(ctx, "WHERE o.user_id = ?", userID)
}

// ListAll returns every order with the buyer summary
func (s *OrderService) ListAll(ctx context.Context) ([]*models.Order, error) {
	return s.listOrders(ctx, "")
}

func (s *OrderService) listOrders(ctx context.Context, where string, args ...interface{}) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.total_price, o.status, o.created_at, o.updated_at, u.name, u.email
		FROM orders o LEFT JOIN users u ON u.id = o.user_id
		` + where + `
		ORDER BY o.created_at DESC, o.rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := []*models.Order{}
	byID := map[string]*models.Order{}
	for rows.Next() {
		var o models.Order
		var name, email sql.NullString
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt, &name, &email); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if name.Valid {
			o.User = &models.UserSummary{ID: o.UserID, Name: name.String, Email: email.String}
		}
		o.Items = []models.OrderItem{}
		orders = append(orders, &o)
		byID[o.ID] = &o
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	// items are fetched after the order cursor is closed so a single connection suffices
	itemQuery := `
		SELECT oi.id, oi.order_id, oi.listing_id, oi.product_id, oi.seller_id, oi.quantity, oi.price
		FROM order_items oi JOIN orders o ON o.id = oi.order_id
		` + where + ` ORDER BY oi.rowid`
	itemRows, err := s.db.QueryContext(ctx, itemQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ListingID, &item.ProductID, &item.SellerID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return orders, itemRows.Err()
}
