package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/services"
)

// VariantHandlers exposes the guarded variant mutations
type VariantHandlers struct {
	variantService *services.VariantService
}

// NewVariantHandlers creates new variant handlers
func NewVariantHandlers(variantService *services.VariantService) *VariantHandlers {
	return &VariantHandlers{variantService: variantService}
}

// AddVariant handles POST /products/:id/variants
func (h *VariantHandlers) AddVariant(c *gin.Context) {
	var req services.AddVariantRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.variantService.AddVariant(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateOption handles PUT /products/:id/variants/option
func (h *VariantHandlers) UpdateOption(c *gin.Context) {
	var req services.UpdateVariantOptionRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.variantService.UpdateOption(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteOption handles DELETE /products/:id/variants/option
func (h *VariantHandlers) DeleteOption(c *gin.Context) {
	var req services.DeleteVariantOptionRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.variantService.DeleteOption(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// UploadOptionImage handles POST /products/:id/variants/option/image (multipart field "image")
func (h *VariantHandlers) UploadOptionImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "Image file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		badRequest(c, "Failed to read image: "+err.Error())
		return
	}
	defer file.Close()

	url, err := h.variantService.UploadOptionImage(c.Request.Context(), currentUserID(c), c.Param("id"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
