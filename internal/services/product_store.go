package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/utils"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const productColumns = `
	p.id, p.name, p.price, p.compare_price, p.description, p.short_description,
	p.product_description, p.sku, p.category_id, p.sub_category_id, p.stock, p.brand,
	p.images, p.features, p.specifications, p.tags, p.variants, p.reviews,
	p.rating, p.num_reviews, p.sold_count, p.seller_id, p.is_approved, p.approval_date,
	p.approved_by, p.rejection_reason, p.is_featured, p.is_discover, p.is_recommended,
	p.is_event_product, p.is_active, p.created_at, p.updated_at,
	s.business_name`

const productFrom = `FROM products p LEFT JOIN sellers s ON s.id = p.seller_id`

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var cols models.ProductJSONColumns
	var comparePrice sql.NullFloat64
	var sellerID, approvedBy, rejectionReason, businessName sql.NullString
	var approvalDate sql.NullTime

	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &comparePrice, &p.Description, &p.ShortDescription,
		&p.ProductDescription, &p.SKU, &p.CategoryID, &p.SubCategoryID, &p.Stock, &p.Brand,
		&cols.Images, &cols.Features, &cols.Specifications, &cols.Tags, &cols.Variants, &cols.Reviews,
		&p.Rating, &p.NumReviews, &p.SoldCount, &sellerID, &p.IsApproved, &approvalDate,
		&approvedBy, &rejectionReason, &p.IsFeatured, &p.IsDiscover, &p.IsRecommended,
		&p.IsEventProduct, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&businessName,
	)
	if err != nil {
		return nil, err
	}

	if comparePrice.Valid {
		p.ComparePrice = &comparePrice.Float64
	}
	if sellerID.Valid {
		p.SellerID = &sellerID.String
		p.Seller = &models.SellerSummary{ID: sellerID.String, BusinessName: businessName.String}
	}
	if approvalDate.Valid {
		p.ApprovalDate = &approvalDate.Time
	}
	if approvedBy.Valid {
		p.ApprovedBy = &approvedBy.String
	}
	if rejectionReason.Valid {
		p.RejectionReason = &rejectionReason.String
	}

	if err := p.SetFromJSONColumns(&cols); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", p.ID, err)
	}

	return &p, nil
}

// getProduct loads one product; a missing row is reported as NotFound
func getProduct(ctx context.Context, q querier, id string) (*models.Product, error) {
	query := "SELECT " + productColumns + " " + productFrom + " WHERE p.id = ?"
	p, err := scanProduct(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound(MsgProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// productQuery describes a filtered product read
type productQuery struct {
	where   []string
	args    []interface{}
	orderBy string
	limit   int
}

func (pq *productQuery) filter(clause string, args ...interface{}) *productQuery {
	pq.where = append(pq.where, clause)
	pq.args = append(pq.args, args...)
	return pq
}

func (pq *productQuery) build() (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT " + productColumns + " " + productFrom)
	if len(pq.where) > 0 {
		b.WriteString(" WHERE " + strings.Join(pq.where, " AND "))
	}
	orderBy := pq.orderBy
	if orderBy == "" {
		orderBy = "p.created_at DESC, p.rowid DESC"
	}
	b.WriteString(" ORDER BY " + orderBy)
	args := pq.args
	if pq.limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, pq.limit)
	}
	return b.String(), args
}

func listProducts(ctx context.Context, q querier, pq *productQuery) ([]*models.Product, error) {
	query, args := pq.build()
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func insertProduct(ctx context.Context, q querier, p *models.Product) error {
	cols, err := p.GetJSONColumns()
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}

	query := `
		INSERT INTO products (
			id, name, price, compare_price, description, short_description, product_description,
			sku, category_id, sub_category_id, stock, brand, images, features, specifications,
			tags, variants, reviews, rating, num_reviews, sold_count, seller_id, is_approved,
			approval_date, approved_by, rejection_reason, is_featured, is_discover, is_recommended,
			is_event_product, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		p.ID, p.Name, p.Price, p.ComparePrice, p.Description, p.ShortDescription, p.ProductDescription,
		p.SKU, p.CategoryID, p.SubCategoryID, p.Stock, p.Brand, cols.Images, cols.Features, cols.Specifications,
		cols.Tags, cols.Variants, cols.Reviews, p.Rating, p.NumReviews, p.SoldCount, p.SellerID, p.IsApproved,
		p.ApprovalDate, p.ApprovedBy, p.RejectionReason, p.IsFeatured, p.IsDiscover, p.IsRecommended,
		p.IsEventProduct, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// saveProduct writes the whole mutable row back; concurrent saves are last-writer-wins
func saveProduct(ctx context.Context, q querier, p *models.Product) error {
	cols, err := p.GetJSONColumns()
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	p.UpdatedAt = utils.Now()

	query := `
		UPDATE products SET
			name = ?, price = ?, compare_price = ?, description = ?, short_description = ?,
			product_description = ?, sku = ?, category_id = ?, sub_category_id = ?, stock = ?,
			brand = ?, images = ?, features = ?, specifications = ?, tags = ?, variants = ?,
			reviews = ?, rating = ?, num_reviews = ?, sold_count = ?, seller_id = ?,
			is_approved = ?, approval_date = ?, approved_by = ?, rejection_reason = ?,
			is_featured = ?, is_discover = ?, is_recommended = ?, is_event_product = ?,
			is_active = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		p.Name, p.Price, p.ComparePrice, p.Description, p.ShortDescription,
		p.ProductDescription, p.SKU, p.CategoryID, p.SubCategoryID, p.Stock,
		p.Brand, cols.Images, cols.Features, cols.Specifications, cols.Tags, cols.Variants,
		cols.Reviews, p.Rating, p.NumReviews, p.SoldCount, p.SellerID,
		p.IsApproved, p.ApprovalDate, p.ApprovedBy, p.RejectionReason,
		p.IsFeatured, p.IsDiscover, p.IsRecommended, p.IsEventProduct,
		p.IsActive, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	if affected == 0 {
		return NotFound(MsgProductNotFound)
	}
	return nil
}
