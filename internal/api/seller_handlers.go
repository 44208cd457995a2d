package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

// SellerHandlers handles seller onboarding
type SellerHandlers struct {
	sellerService *services.SellerService
}

// NewSellerHandlers creates new seller handlers
func NewSellerHandlers(sellerService *services.SellerService) *SellerHandlers {
	return &SellerHandlers{sellerService: sellerService}
}

// Register handles POST /sellers/register
func (h *SellerHandlers) Register(c *gin.Context) {
	var req models.SellerRegistration
	if !bindJSON(c, &req) {
		return
	}

	seller, err := h.sellerService.Register(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, seller)
}

// GetMine handles GET /sellers/me
func (h *SellerHandlers) GetMine(c *gin.Context) {
	seller, err := h.sellerService.GetMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seller)
}
