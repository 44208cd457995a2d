package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/utils"
)

// ProductService handles public catalog reads and seller product creation
type ProductService struct {
	db    *sql.DB
	guard *SellerGuard
}

// NewProductService creates a new product service
func NewProductService(db *sql.DB, guard *SellerGuard) *ProductService {
	return &ProductService{db: db, guard: guard}
}

// ListPublic returns every seller-owned product, newest first
func (s *ProductService) ListPublic(ctx context.Context) ([]*models.Product, error) {
	pq := &productQuery{}
	return listProducts(ctx, s.db, pq.filter(publicProductClause))
}

// ListByCategory returns public products whose category or sub-category matches
func (s *ProductService) ListByCategory(ctx context.Context, categoryID string) ([]*models.Product, error) {
	pq := &productQuery{}
	pq.filter(publicProductClause).
		filter("(p.category_id = ? OR p.sub_category_id = ?)", categoryID, categoryID)
	return listProducts(ctx, s.db, pq)
}

// ListFeed returns up to eight products of a promotional feed, most recently updated first
func (s *ProductService) ListFeed(ctx context.Context, feed Feed) ([]*models.Product, error) {
	pq, err := feedQuery(feed)
	if err != nil {
		return nil, err
	}
	return listProducts(ctx, s.db, pq)
}

// Search matches the query case-insensitively against name and description.
// A blank query returns no results rather than the whole catalog.
func (s *ProductService) Search(ctx context.Context, query string) ([]models.ProductSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.ProductSearchResult{}, nil
	}

	pattern := "%" + utils.EscapeLike(strings.ToLower(query)) + "%"
	pq := &productQuery{orderBy: "p.num_reviews DESC, p.rowid DESC", limit: feedLimit}
	pq.filter(publicProductClause).
		filter(`(ulower(p.name) LIKE ? ESCAPE '\' OR ulower(p.description) LIKE ? ESCAPE '\')`, pattern, pattern)

	products, err := listProducts(ctx, s.db, pq)
	if err != nil {
		return nil, err
	}

	results := make([]models.ProductSearchResult, 0, len(products))
	for _, p := range products {
		results = append(results, p.SearchResult())
	}
	return results, nil
}

// ListTemplates returns the admin-seeded products that no seller owns
func (s *ProductService) ListTemplates(ctx context.Context) ([]*models.Product, error) {
	pq := &productQuery{}
	return listProducts(ctx, s.db, pq.filter("p.seller_id IS NULL"))
}

// GetProduct loads a product without visibility checks
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return getProduct(ctx, s.db, productID)
}

// GetDetail loads a product page for a caller. Templates are reported as missing to
// anyone who is not a seller or an admin.
func (s *ProductService) GetDetail(ctx context.Context, productID string, role models.UserRole) (*models.ProductDetail, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if !CanViewProduct(product, role) {
		return nil, NotFound(MsgProductNotFound)
	}
	return product.Detail(), nil
}

// CreateSellerProduct opens a new unapproved product owned by the calling seller
func (s *ProductService) CreateSellerProduct(ctx context.Context, userID string, creation *models.SellerProductCreation) (*models.Product, error) {
	seller, err := s.guard.ResolveApproved(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := utils.SanitizeString(creation.Name)
	if name == "" {
		return nil, BadRequest("Product name is required")
	}
	if creation.Price <= 0 {
		return nil, BadRequest("Price must be greater than 0")
	}
	if !utils.ValidateUUID(creation.CategoryID) || !utils.ValidateUUID(creation.SubCategoryID) {
		return nil, BadRequest("Category and sub-category must be valid ids")
	}

	now := utils.Now()
	sellerID := seller.ID
	product := &models.Product{
		ID:             uuid.New().String(),
		Name:           name,
		Price:          creation.Price,
		Description:    "Default description",
		SKU:            fmt.Sprintf("SKU-%d", now.UnixNano()/int64(time.Millisecond)),
		CategoryID:     creation.CategoryID,
		SubCategoryID:  creation.SubCategoryID,
		Stock:          10,
		Brand:          "No Brand",
		Images:         []models.ProductImage{},
		Features:       []string{},
		Specifications: []models.Specification{},
		Tags:           []string{},
		Variants:       []models.Variant{},
		Reviews:        []models.Review{},
		SellerID:       &sellerID,
		IsApproved:     false,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
		Seller:         &models.SellerSummary{ID: seller.ID, BusinessName: seller.BusinessName},
	}

	if err := insertProduct(ctx, s.db, product); err != nil {
		return nil, err
	}

	log.Printf("📦 Seller %s created product %s (pending approval)", seller.ID, product.ID)
	return product, nil
}
