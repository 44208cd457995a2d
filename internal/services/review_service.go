package services

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/utils"
)

// ReviewInput is the payload for adding a review
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewUpdate changes the caller's review; absent fields are kept
type ReviewUpdate struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// VendorReview is a review annotated with the product it was left on
type VendorReview struct {
	models.Review
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

// ReviewService manages the reviews embedded in products
type ReviewService struct {
	db                      *sql.DB
	recomputeOnDeleteRating bool
}

// NewReviewService creates a new review service
func NewReviewService(db *sql.DB, recomputeOnDelete bool) *ReviewService {
	return &ReviewService{db: db, recomputeOnDeleteRating: recomputeOnDelete}
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

func findReview(reviews []models.Review, userID string) int {
	for i, r := range reviews {
		if r.User == userID {
			return i
		}
	}
	return -1
}

// AddReview records the caller's single review of a product
func (s *ReviewService) AddReview(ctx context.Context, userID, userName, productID string, input *ReviewInput) (*models.Product, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	if findReview(product.Reviews, userID) >= 0 {
		return nil, Conflict(MsgAlreadyReviewed)
	}

	comment := utils.SanitizeString(input.Comment)
	if input.Rating == 0 || comment == "" {
		return nil, BadRequest("Rating and comment are required")
	}
	if !validRating(input.Rating) {
		return nil, BadRequest("Rating must be between 1 and 5")
	}

	product.Reviews = append(product.Reviews, models.Review{
		User:       userID,
		Name:       userName,
		Rating:     input.Rating,
		Comment:    comment,
		IsVerified: false,
		CreatedAt:  utils.Now(),
	})
	product.RecomputeReviewStats()

	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}

	log.Printf("⭐ User %s reviewed product %s (%d)", userID, productID, input.Rating)
	return product, nil
}

// UpdateReview edits the caller's review and recomputes the aggregates
func (s *ReviewService) UpdateReview(ctx context.Context, userID, productID string, update *ReviewUpdate) (*models.Product, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	idx := findReview(product.Reviews, userID)
	if idx < 0 {
		return nil, NotFound(MsgReviewNotFound)
	}
	// reviews are looked up by their author, so only the author can reach this point
	review := &product.Reviews[idx]

	if update.Rating != nil {
		if !validRating(*update.Rating) {
			return nil, BadRequest("Rating must be between 1 and 5")
		}
		review.Rating = *update.Rating
	}
	if update.Comment != nil {
		comment := utils.SanitizeString(*update.Comment)
		if comment == "" {
			return nil, BadRequest("Comment cannot be empty")
		}
		review.Comment = comment
	}
	product.RecomputeReviewStats()

	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteReview removes the caller's review. The stored aggregates are left as they
// were unless the service was built to recompute them.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, productID string) (*models.Product, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}

	idx := findReview(product.Reviews, userID)
	if idx < 0 {
		return nil, NotFound(MsgReviewNotFound)
	}

	product.Reviews = append(product.Reviews[:idx], product.Reviews[idx+1:]...)
	if s.recomputeOnDeleteRating {
		product.RecomputeReviewStats()
	}

	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProductReviews returns the reviews embedded in one product
func (s *ReviewService) ListProductReviews(ctx context.Context, productID string) ([]models.Review, error) {
	product, err := getProduct(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	return product.Reviews, nil
}

// ListVendorReviews gathers the reviews of every product a seller owns
func (s *ReviewService) ListVendorReviews(ctx context.Context, sellerID string) ([]VendorReview, error) {
	sellerID = strings.TrimSpace(sellerID)
	pq := &productQuery{}
	products, err := listProducts(ctx, s.db, pq.filter("p.seller_id = ?", sellerID))
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, NotFound("No products found for this vendor")
	}

	reviews := []VendorReview{}
	for _, p := range products {
		for _, r := range p.Reviews {
			reviews = append(reviews, VendorReview{Review: r, ProductID: p.ID, ProductName: p.Name})
		}
	}
	return reviews, nil
}
