package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

// ProductHandlers serves the public catalog and seller product creation
type ProductHandlers struct {
	productService *services.ProductService
	bannerService  *services.EventBannerService
}

// NewProductHandlers creates new product handlers
func NewProductHandlers(productService *services.ProductService, bannerService *services.EventBannerService) *ProductHandlers {
	return &ProductHandlers{productService: productService, bannerService: bannerService}
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c *gin.Context) {
	products, err := h.productService.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// ListByCategory handles GET /products/category/:categoryId
func (h *ProductHandlers) ListByCategory(c *gin.Context) {
	products, err := h.productService.ListByCategory(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// ListFeed returns a handler for one promotional feed
func (h *ProductHandlers) ListFeed(feed services.Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := h.productService.ListFeed(c.Request.Context(), feed)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// Search handles GET /products/search?query=
func (h *ProductHandlers) Search(c *gin.Context) {
	results, err := h.productService.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ListTemplates handles GET /products/admin-templates
func (h *ProductHandlers) ListTemplates(c *gin.Context) {
	products, err := h.productService.ListTemplates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c *gin.Context) {
	detail, err := h.productService.GetDetail(c.Request.Context(), c.Param("id"), middleware.RoleFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetEventBanner handles GET /products/event-banner; no active banner answers null
func (h *ProductHandlers) GetEventBanner(c *gin.Context) {
	banner, err := h.bannerService.GetActive(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banner)
}

// CreateSellerProduct handles POST /products/seller
func (h *ProductHandlers) CreateSellerProduct(c *gin.Context) {
	var req models.SellerProductCreation
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateSellerProduct(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}
