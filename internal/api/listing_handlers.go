package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

// ListingHandlers handles seller listings
type ListingHandlers struct {
	listingService *services.ListingService
}

// NewListingHandlers creates new listing handlers
func NewListingHandlers(listingService *services.ListingService) *ListingHandlers {
	return &ListingHandlers{listingService: listingService}
}

// CreateListing handles POST /products/seller/listings
func (h *ListingHandlers) CreateListing(c *gin.Context) {
	var req models.ListingCreation
	if !bindJSON(c, &req) {
		return
	}

	listing, created, err := h.listingService.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, listing)
}

// UpdatePrice handles PUT /products/seller/listings/price
func (h *ListingHandlers) UpdatePrice(c *gin.Context) {
	var req models.ListingPriceUpdate
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.listingService.UpdatePrice(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Unlist handles PUT /products/seller/listings/unlist
func (h *ListingHandlers) Unlist(c *gin.Context) {
	var req models.ListingReference
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.listingService.Unlist(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// ListMine handles GET /products/seller/listings
func (h *ListingHandlers) ListMine(c *gin.Context) {
	listings, err := h.listingService.ListMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// ListActive handles GET /products/listings
func (h *ListingHandlers) ListActive(c *gin.Context) {
	listings, err := h.listingService.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}
