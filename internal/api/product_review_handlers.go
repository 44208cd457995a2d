package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/services"
)

// ReviewHandlers handles product review endpoints
type ReviewHandlers struct {
	reviewService *services.ReviewService
}

// NewReviewHandlers creates new review handlers
func NewReviewHandlers(reviewService *services.ReviewService) *ReviewHandlers {
	return &ReviewHandlers{reviewService: reviewService}
}

// AddReview handles POST /products/:id/reviews
func (h *ReviewHandlers) AddReview(c *gin.Context) {
	var req services.ReviewInput
	if !bindJSON(c, &req) {
		return
	}

	userName := c.GetString(middleware.ContextUserName)
	product, err := h.reviewService.AddReview(c.Request.Context(), currentUserID(c), userName, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Review added",
		"reviews":    product.Reviews,
		"numReviews": product.NumReviews,
		"ratings":    product.Rating,
	})
}

// UpdateReview handles PUT /products/:id/reviews
func (h *ReviewHandlers) UpdateReview(c *gin.Context) {
	var req services.ReviewUpdate
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.reviewService.UpdateReview(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Review updated",
		"reviews":    product.Reviews,
		"numReviews": product.NumReviews,
		"ratings":    product.Rating,
	})
}

// DeleteReview handles DELETE /products/:id/reviews
func (h *ReviewHandlers) DeleteReview(c *gin.Context) {
	product, err := h.reviewService.DeleteReview(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Review deleted",
		"reviews":    product.Reviews,
		"numReviews": product.NumReviews,
		"ratings":    product.Rating,
	})
}

// ListProductReviews handles GET /products/:id/reviews
func (h *ReviewHandlers) ListProductReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListProductReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// ListVendorReviews handles GET /products/vendor/:vendorId/reviews
func (h *ReviewHandlers) ListVendorReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListVendorReviews(c.Request.Context(), c.Param("vendorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
