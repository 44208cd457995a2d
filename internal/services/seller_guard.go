package services

import (
	"context"
	"database/sql"

	"marketplace-backend/internal/models"
)

// SellerGuard resolves the calling seller and checks, in order, that the seller
// profile exists, that it is approved, and that it owns the product being changed.
type SellerGuard struct {
	db *sql.DB
}

// NewSellerGuard creates a new seller guard
func NewSellerGuard(db *sql.DB) *SellerGuard {
	return &SellerGuard{db: db}
}

// ResolveSeller returns the caller's seller profile regardless of approval
func (g *SellerGuard) ResolveSeller(ctx context.Context, userID string) (*models.Seller, error) {
	return getSellerByUserID(ctx, g.db, userID)
}

// ResolveApproved returns the caller's seller profile when it has been approved
func (g *SellerGuard) ResolveApproved(ctx context.Context, userID string) (*models.Seller, error) {
	seller, err := getSellerByUserID(ctx, g.db, userID)
	if err != nil {
		return nil, err
	}
	if !seller.IsApproved {
		return nil, Forbidden(MsgSellerNotApproved)
	}
	return seller, nil
}

// AuthorizeProduct runs the full check chain against an already loaded product
func (g *SellerGuard) AuthorizeProduct(ctx context.Context, userID string, product *models.Product) (*models.Seller, error) {
	seller, err := g.ResolveApproved(ctx, userID)
	if err != nil {
		return nil, err
	}
	if product.SellerID == nil || *product.SellerID != seller.ID {
		return nil, Forbidden(MsgNotProductOwner)
	}
	return seller, nil
}

// LoadOwnedProduct loads a product and authorizes the caller to modify it
func (g *SellerGuard) LoadOwnedProduct(ctx context.Context, userID, productID string) (*models.Product, *models.Seller, error) {
	product, err := getProduct(ctx, g.db, productID)
	if err != nil {
		return nil, nil, err
	}
	seller, err := g.AuthorizeProduct(ctx, userID, product)
	if err != nil {
		return nil, nil, err
	}
	return product, seller, nil
}
