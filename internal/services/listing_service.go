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

// ListingService manages seller listings of catalog products
type ListingService struct {
	db    *sql.DB
	guard *SellerGuard
}

// NewListingService creates a new listing service
func NewListingService(db *sql.DB, guard *SellerGuard) *ListingService {
	return &ListingService{db: db, guard: guard}
}

const listingColumns = `
	sp.id, sp.seller_id, sp.product_id, sp.seller_price, sp.is_listed, sp.is_featured,
	sp.is_discover, sp.is_recommended, sp.created_at, sp.updated_at,
	p.id, p.name, p.price, p.images, s.business_name`

const listingFrom = `
	FROM seller_products sp
	LEFT JOIN products p ON p.id = sp.product_id
	LEFT JOIN sellers s ON s.id = sp.seller_id`

func scanListing(row rowScanner) (*models.SellerProduct, error) {
	var l models.SellerProduct
	var productID, productName, images, businessName sql.NullString
	var productPrice sql.NullFloat64

	err := row.Scan(
		&l.ID, &l.SellerID, &l.ProductID, &l.SellerPrice, &l.IsListed, &l.IsFeatured,
		&l.IsDiscover, &l.IsRecommended, &l.CreatedAt, &l.UpdatedAt,
		&productID, &productName, &productPrice, &images, &businessName,
	)
	if err != nil {
		return nil, err
	}

	if productID.Valid {
		lp := &models.ListingProduct{ID: productID.String, Name: productName.String, Price: productPrice.Float64}
		var p models.Product
		if err := p.SetFromJSONColumns(&models.ProductJSONColumns{Images: images.String}); err != nil {
			return nil, fmt.Errorf("failed to decode listing product: %w", err)
		}
		lp.Images = p.Images
		l.Product = lp
	}
	if businessName.Valid {
		l.Seller = &models.SellerSummary{ID: l.SellerID, BusinessName: businessName.String}
	}
	return &l, nil
}

func queryListings(ctx context.Context, q querier, where string, args ...interface{}) ([]*models.SellerProduct, error) {
	query := "SELECT " + listingColumns + " " + listingFrom
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY sp.updated_at DESC, sp.rowid DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := []*models.SellerProduct{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func getListing(ctx context.Context, q querier, id string) (*models.SellerProduct, error) {
	query := "SELECT " + listingColumns + " " + listingFrom + " WHERE sp.id = ?"
	l, err := scanListing(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound(MsgListingNotFound)
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return l, nil
}

// getOwnedListing loads a listing and hides it unless it belongs to the seller
func getOwnedListing(ctx context.Context, q querier, id, sellerID string) (*models.SellerProduct, error) {
	l, err := getListing(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if l.SellerID != sellerID {
		return nil, NotFound(MsgListingNotFound)
	}
	return l, nil
}

// Create lists a product for the caller. An unlisted pair is reactivated with the
// new price; an active pair is a conflict.
func (s *ListingService) Create(ctx context.Context, userID string, input *models.ListingCreation) (*models.SellerProduct, bool, error) {
	seller, err := s.guard.ResolveApproved(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if input.SellerPrice <= 0 {
		return nil, false, BadRequest("Seller price must be greater than 0")
	}
	if _, err := getProduct(ctx, s.db, input.ProductID); err != nil {
		return nil, false, err
	}

	var existingID string
	var isListed bool
	err = s.db.QueryRowContext(ctx,
		"SELECT id, is_listed FROM seller_products WHERE seller_id = ? AND product_id = ?",
		seller.ID, input.ProductID,
	).Scan(&existingID, &isListed)

	now := utils.Now()
	switch {
	case err == nil && isListed:
		return nil, false, Conflict(MsgAlreadyListed)
	case err == nil:
		_, err = s.db.ExecContext(ctx,
			"UPDATE seller_products SET is_listed = TRUE, seller_price = ?, updated_at = ? WHERE id = ?",
			input.SellerPrice, now, existingID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("failed to relist product: %w", err)
		}
		log.Printf("🔁 Seller %s relisted product %s", seller.ID, input.ProductID)
		l, err := getListing(ctx, s.db, existingID)
		return l, false, err
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, fmt.Errorf("failed to check listing: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO seller_products (id, seller_id, product_id, seller_price, is_listed, created_at, updated_at)
		VALUES (?, ?, ?, ?, TRUE, ?, ?)
	`, id, seller.ID, input.ProductID, input.SellerPrice, now, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create listing: %w", err)
	}

	log.Printf("🏷️ Seller %s listed product %s", seller.ID, input.ProductID)
	l, err := getListing(ctx, s.db, id)
	return l, true, err
}

// UpdatePrice changes the price of one of the caller's listings
func (s *ListingService) UpdatePrice(ctx context.Context, userID string, input *models.ListingPriceUpdate) (*models.SellerProduct, error) {
	seller, err := s.guard.ResolveApproved(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.SellerPrice <= 0 {
		return nil, BadRequest("Seller price must be greater than 0")
	}
	if _, err := getOwnedListing(ctx, s.db, input.SellerProductID, seller.ID); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE seller_products SET seller_price = ?, updated_at = ? WHERE id = ?",
		input.SellerPrice, utils.Now(), input.SellerProductID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing price: %w", err)
	}
	return getListing(ctx, s.db, input.SellerProductID)
}

// Unlist withdraws one of the caller's listings without deleting it
func (s *ListingService) Unlist(ctx context.Context, userID string, input *models.ListingReference) (*models.SellerProduct, error) {
	seller, err := s.guard.ResolveApproved(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := getOwnedListing(ctx, s.db, input.SellerProductID, seller.ID); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE seller_products SET is_listed = FALSE, updated_at = ? WHERE id = ?",
		utils.Now(), input.SellerProductID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to unlist product: %w", err)
	}
	return getListing(ctx, s.db, input.SellerProductID)
}

// ListMine returns the caller's listings; an unapproved seller may still read them
func (s *ListingService) ListMine(ctx context.Context, userID string) ([]*models.SellerProduct, error) {
	seller, err := s.guard.ResolveSeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	return queryListings(ctx, s.db, "sp.seller_id = ?", seller.ID)
}

// ListActive returns every listed offer for the storefront
func (s *ListingService) ListActive(ctx context.Context) ([]*models.SellerProduct, error) {
	return queryListings(ctx, s.db, "sp.is_listed = TRUE AND p.id IS NOT NULL")
}

// ListAll returns every listing for moderation
func (s *ListingService) ListAll(ctx context.Context) ([]*models.SellerProduct, error) {
	return queryListings(ctx, s.db, "")
}

// SetFlag sets or clears a promotional flag on a listing
func (s *ListingService) SetFlag(ctx context.Context, listingID string, feed Feed, value bool) (*models.SellerProduct, error) {
	var column string
	switch feed {
	case FeedFeatured:
		column = "is_featured"
	case FeedDiscover:
		column = "is_discover"
	case FeedRecommended:
		column = "is_recommended"
	default:
		return nil, BadRequest("Unknown flag: " + string(feed))
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE seller_products SET "+column+" = ?, updated_at = ? WHERE id = ?",
		value, utils.Now(), listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing flag: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, NotFound(MsgListingNotFound)
	}
	return getListing(ctx, s.db, listingID)
}
