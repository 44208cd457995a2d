package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/utils"
)

// AdminService handles catalog moderation and the admin dashboard
type AdminService struct {
	db           *sql.DB
	uploader     ImageUploader
	defaultImage string
}

// NewAdminService creates a new admin service
func NewAdminService(db *sql.DB, uploader ImageUploader, defaultImage string) *AdminService {
	return &AdminService{db: db, uploader: uploader, defaultImage: defaultImage}
}

// ValidateProductCreation checks the admin form before any image is uploaded
func ValidateProductCreation(c *models.ProductCreation) error {
	c.Name = utils.SanitizeString(c.Name)
	c.Description = utils.SanitizeString(c.Description)
	c.ProductDescription = strings.TrimSpace(c.ProductDescription)
	c.SKU = strings.TrimSpace(c.SKU)
	c.Brand = utils.SanitizeString(c.Brand)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", c.Name},
		{"description", c.Description},
		{"productDescription", c.ProductDescription},
		{"sku", c.SKU},
		{"category", c.CategoryID},
		{"subCategory", c.SubCategoryID},
		{"brand", c.Brand},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return BadRequest("Missing required fields: " + strings.Join(missing, ", "))
	}
	if c.Price <= 0 {
		return BadRequest("Price must be greater than 0")
	}
	if c.ComparePrice != nil && *c.ComparePrice < 0 {
		return BadRequest("Compare price cannot be negative")
	}
	if c.Stock < 0 {
		return BadRequest("Stock cannot be negative")
	}
	if !utils.ValidateUUID(c.CategoryID) || !utils.ValidateUUID(c.SubCategoryID) {
		return BadRequest("Category and sub-category must be valid ids")
	}
	return nil
}

// CreateProduct uploads the images and stores a new catalog template. Uploads run
// first; if any fails nothing is stored and the images already uploaded are removed.
func (s *AdminService) CreateProduct(ctx context.Context, adminID string, creation *models.ProductCreation, files []io.Reader) (*models.Product, error) {
	if err := ValidateProductCreation(creation); err != nil {
		return nil, err
	}

	images := []models.ProductImage{}
	if len(files) == 0 {
		images = append(images, models.ProductImage{URL: s.defaultImage, Alt: creation.Name, IsPrimary: true})
	} else {
		uploaded, err := uploadAll(ctx, s.uploader, files, AdminProductFolder, AdminProductTransform)
		if err != nil {
			return nil, err
		}
		for i, img := range uploaded {
			images = append(images, models.ProductImage{
				URL:       img.URL,
				Alt:       creation.Name,
				IsPrimary: i == 0,
				PublicID:  img.PublicID,
			})
		}
	}

	now := utils.Now()
	product := &models.Product{
		ID:                 uuid.New().String(),
		Name:               creation.Name,
		Price:              creation.Price,
		ComparePrice:       creation.ComparePrice,
		Description:        creation.Description,
		ShortDescription:   creation.Description,
		ProductDescription: creation.ProductDescription,
		SKU:                creation.SKU,
		CategoryID:         creation.CategoryID,
		SubCategoryID:      creation.SubCategoryID,
		Stock:              creation.Stock,
		Brand:              creation.Brand,
		Images:             images,
		Features:           nonNilStrings(creation.Features),
		Specifications:     creation.Specifications,
		Tags:               nonNilStrings(creation.Tags),
		Variants:           []models.Variant{},
		Reviews:            []models.Review{},
		IsApproved:         true,
		ApprovalDate:       &now,
		ApprovedBy:         &adminID,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if product.Specifications == nil {
		product.Specifications = []models.Specification{}
	}

	if err := insertProduct(ctx, s.db, product); err != nil {
		discardUploads(s.uploader, uploadedFrom(images))
		return nil, err
	}

	log.Printf("📦 Admin %s created catalog product %s with %d image(s)", adminID, product.ID, len(images))
	return product, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func uploadedFrom(images []models.ProductImage) []*UploadedImage {
	out := make([]*UploadedImage, 0, len(images))
	for _, img := range images {
		if img.PublicID != "" {
			out = append(out, &UploadedImage{URL: img.URL, PublicID: img.PublicID})
		}
	}
	return out
}

// ListProducts returns every product, templates included, with the seller business name
func (s *AdminService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return listProducts(ctx, s.db, &productQuery{})
}

// ApproveProduct stamps admin approval on a product
func (s *AdminService) ApproveProduct(ctx context.Context, productID, adminID string) (*models.Product, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	now := utils.Now()
	product.IsApproved = true
	product.ApprovalDate = &now
	product.ApprovedBy = &adminID
	product.RejectionReason = nil

	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	log.Printf("✅ Product %s approved by %s", productID, adminID)
	return product, nil
}

// RejectProduct withdraws approval with a reason
func (s *AdminService) RejectProduct(ctx context.Context, productID, adminID, reason string) (*models.Product, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = MsgDefaultRejectReason
	}
	product.IsApproved = false
	product.RejectionReason = &reason
	product.ApprovalDate = nil
	product.ApprovedBy = &adminID

	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	log.Printf("🚫 Product %s rejected by %s: %s", productID, adminID, reason)
	return product, nil
}

// ApplyProductUpdate copies the present fields of an admin edit onto the product
func ApplyProductUpdate(p *models.Product, upd *models.ProductUpdate) error {
	if upd.Name != nil {
		name := utils.SanitizeString(*upd.Name)
		if name == "" {
			return BadRequest("Product name cannot be empty")
		}
		p.Name = name
	}
	if upd.Price != nil {
		if *upd.Price <= 0 {
			return BadRequest("Price must be greater than 0")
		}
		p.Price = *upd.Price
	}
	if upd.ComparePrice != nil {
		p.ComparePrice = upd.ComparePrice
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.ShortDescription != nil {
		p.ShortDescription = *upd.ShortDescription
	}
	if upd.ProductDescription != nil {
		p.ProductDescription = *upd.ProductDescription
	}
	if upd.SKU != nil {
		p.SKU = strings.TrimSpace(*upd.SKU)
	}
	if upd.CategoryID != nil {
		if !utils.ValidateUUID(*upd.CategoryID) {
			return BadRequest("Category must be a valid id")
		}
		p.CategoryID = *upd.CategoryID
	}
	if upd.SubCategoryID != nil {
		if !utils.ValidateUUID(*upd.SubCategoryID) {
			return BadRequest("Sub-category must be a valid id")
		}
		p.SubCategoryID = *upd.SubCategoryID
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return BadRequest("Stock cannot be negative")
		}
		p.Stock = *upd.Stock
	}
	if upd.Brand != nil {
		p.Brand = *upd.Brand
	}
	if upd.Features != nil {
		p.Features = nonNilStrings(*upd.Features)
	}
	if upd.Specifications != nil {
		p.Specifications = *upd.Specifications
		if p.Specifications == nil {
			p.Specifications = []models.Specification{}
		}
	}
	if upd.Tags != nil {
		p.Tags = nonNilStrings(*upd.Tags)
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	return nil
}

// EditProduct applies an allow-listed partial update
func (s *AdminService) EditProduct(ctx context.Context, productID string, upd *models.ProductUpdate) (*models.Product, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if err := ApplyProductUpdate(product, upd); err != nil {
		return nil, err
	}
	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product and every listing of it in one transaction
func (s *AdminService) DeleteProduct(ctx context.Context, productID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := getProduct(ctx, tx, productID); err != nil {
		return err
	}

	listings, err := tx.ExecContext(ctx, "DELETE FROM seller_products WHERE product_id = ?", productID)
	if err != nil {
		return fmt.Errorf("failed to delete listings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE event_banners SET product_id = NULL WHERE product_id = ?", productID); err != nil {
		return fmt.Errorf("failed to detach event banner: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = ?", productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product delete: %w", err)
	}

	removed, _ := listings.RowsAffected()
	log.Printf("🗑️ Product %s deleted with %d listing(s)", productID, removed)
	return nil
}

// Product placements an admin can toggle
const (
	PlacementFeatured    = "featured"
	PlacementDiscover    = "discover"
	PlacementRecommended = "recommended"
	PlacementEvent       = "event"
)

// SetProductPlacement sets or clears a promotional flag on a product
func (s *AdminService) SetProductPlacement(ctx context.Context, productID, placement string, value bool) (*models.Product, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	switch placement {
	case PlacementFeatured:
		product.IsFeatured = value
	case PlacementDiscover:
		product.IsDiscover = value
	case PlacementRecommended:
		product.IsRecommended = value
	case PlacementEvent:
		product.IsEventProduct = value
	default:
		return nil, BadRequest("Unknown placement: " + placement)
	}

	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Analytics aggregates the dashboard counters
func (s *AdminService) Analytics(ctx context.Context) (*models.Analytics, error) {
	var a models.Analytics
	counters := []struct {
		query string
		dest  interface{}
	}{
		{"SELECT COUNT(*) FROM users", &a.TotalUsers},
		{"SELECT COUNT(*) FROM products", &a.TotalProducts},
		{"SELECT COUNT(*) FROM orders", &a.TotalOrders},
		{"SELECT COUNT(*) FROM sellers", &a.TotalVendors},
		{"SELECT COUNT(*) FROM sellers WHERE is_approved = FALSE", &a.PendingVendors},
		{"SELECT COALESCE(SUM(total_price), 0) FROM orders", &a.TotalSales},
	}

	for _, c := range counters {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to compute analytics: %w", err)
		}
	}
	return &a, nil
}
