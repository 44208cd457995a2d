package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
	"marketplace-backend/internal/utils"
)

// AdminHandlers serves the moderation and dashboard endpoints
type AdminHandlers struct {
	userService    *services.UserService
	sellerService  *services.SellerService
	adminService   *services.AdminService
	listingService *services.ListingService
	orderService   *services.OrderService
	bannerService  *services.EventBannerService
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(
	userService *services.UserService,
	sellerService *services.SellerService,
	adminService *services.AdminService,
	listingService *services.ListingService,
	orderService *services.OrderService,
	bannerService *services.EventBannerService,
) *AdminHandlers {
	return &AdminHandlers{
		userService:    userService,
		sellerService:  sellerService,
		adminService:   adminService,
		listingService: listingService,
		orderService:   orderService,
		bannerService:  bannerService,
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// rejectionReason reads an optional {reason} body; an empty body is allowed
func rejectionReason(c *gin.Context) (string, bool) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request data: "+err.Error())
		return "", false
	}
	return req.Reason, true
}

// Users

// ListUsers handles GET /admin/users
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser handles PUT /admin/users/:id
func (h *AdminHandlers) UpdateUser(c *gin.Context) {
	var req models.UserAdminUpdate
	if !bindStrictJSON(c, &req) {
		return
	}

	user, err := h.userService.AdminUpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/users/:id
func (h *AdminHandlers) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// Sellers

// ListSellers handles GET /admin/sellers
func (h *AdminHandlers) ListSellers(c *gin.Context) {
	sellers, err := h.sellerService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sellers)
}

// ApproveSeller handles PUT /admin/sellers/:id/approve
func (h *AdminHandlers) ApproveSeller(c *gin.Context) {
	seller, err := h.sellerService.Approve(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seller)
}

// RejectSeller handles PUT /admin/sellers/:id/reject
func (h *AdminHandlers) RejectSeller(c *gin.Context) {
	reason, ok := rejectionReason(c)
	if !ok {
		return
	}

	seller, err := h.sellerService.Reject(c.Request.Context(), c.Param("id"), currentUserID(c), reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seller)
}

// Products

// ListProducts handles GET /admin/products
func (h *AdminHandlers) ListProducts(c *gin.Context) {
	products, err := h.adminService.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// parseProductForm reads the admin product form fields
func parseProductForm(c *gin.Context) (*models.ProductCreation, error) {
	creation := &models.ProductCreation{
		Name:               c.PostForm("name"),
		Description:        c.PostForm("description"),
		ProductDescription: c.PostForm("productDescription"),
		SKU:                c.PostForm("sku"),
		CategoryID:         strings.TrimSpace(c.PostForm("category")),
		SubCategoryID:      strings.TrimSpace(c.PostForm("subCategory")),
		Brand:              c.PostForm("brand"),
		Features:           utils.ParseStringList(c.PostForm("features")),
		Tags:               utils.ParseStringList(c.PostForm("tags")),
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(c.PostForm("price")), 64)
	if err != nil {
		return nil, services.BadRequest("Price must be a number")
	}
	creation.Price = price

	if raw := strings.TrimSpace(c.PostForm("comparePrice")); raw != "" {
		comparePrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, services.BadRequest("Compare price must be a number")
		}
		creation.ComparePrice = &comparePrice
	}

	stock, err := strconv.Atoi(strings.TrimSpace(c.PostForm("stock")))
	if err != nil {
		return nil, services.BadRequest("Stock must be a whole number")
	}
	creation.Stock = stock

	if raw := strings.TrimSpace(c.PostForm("specifications")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &creation.Specifications); err != nil {
			return nil, services.BadRequest("Specifications must be an array")
		}
	}

	return creation, nil
}

// openUploads opens every file of the images field; the returned closer releases them
func openUploads(c *gin.Context) ([]io.Reader, func(), error) {
	var headers []*multipart.FileHeader
	if c.Request.MultipartForm != nil {
		headers = c.Request.MultipartForm.File["images"]
	}

	files := make([]io.Reader, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, nil, services.BadRequest("Failed to read image: " + header.Filename)
		}
		opened = append(opened, f)
		files = append(files, f)
	}
	return files, closeAll, nil
}

// CreateProduct handles POST /admin/create-product (multipart)
func (h *AdminHandlers) CreateProduct(c *gin.Context) {
	creation, err := parseProductForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	files, closeAll, err := openUploads(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeAll()

	product, err := h.adminService.CreateProduct(c.Request.Context(), currentUserID(c), creation, files)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// ApproveProduct handles PUT /admin/products/:id/approve
func (h *AdminHandlers) ApproveProduct(c *gin.Context) {
	product, err := h.adminService.ApproveProduct(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// RejectProduct handles PUT /admin/products/:id/reject
func (h *AdminHandlers) RejectProduct(c *gin.Context) {
	reason, ok := rejectionReason(c)
	if !ok {
		return
	}

	product, err := h.adminService.RejectProduct(c.Request.Context(), c.Param("id"), currentUserID(c), reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// EditProduct handles PUT /admin/products/:id
func (h *AdminHandlers) EditProduct(c *gin.Context) {
	var req models.ProductUpdate
	if !bindStrictJSON(c, &req) {
		return
	}

	product, err := h.adminService.EditProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *AdminHandlers) DeleteProduct(c *gin.Context) {
	if err := h.adminService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product and related listings deleted"})
}

// SetProductPlacement returns a handler that sets or clears one product placement
func (h *AdminHandlers) SetProductPlacement(placement string, value bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := h.adminService.SetProductPlacement(c.Request.Context(), c.Param("id"), placement, value)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// Listings

// ListListings handles GET /admin/listings
func (h *AdminHandlers) ListListings(c *gin.Context) {
	listings, err := h.listingService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// SetListingFlag returns a handler that sets or clears one listing flag
func (h *AdminHandlers) SetListingFlag(feed services.Feed, value bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		listing, err := h.listingService.SetFlag(c.Request.Context(), c.Param("id"), feed, value)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}

// Orders and analytics

// ListOrders handles GET /admin/orders
func (h *AdminHandlers) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Analytics handles GET /admin/analytics
func (h *AdminHandlers) Analytics(c *gin.Context) {
	analytics, err := h.adminService.Analytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// Event banner

// SaveEventBanner handles POST /admin/event-banner
func (h *AdminHandlers) SaveEventBanner(c *gin.Context) {
	var req models.EventBannerInput
	if !bindJSON(c, &req) {
		return
	}

	banner, err := h.bannerService.Upsert(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banner)
}

// DeleteEventBanner handles DELETE /admin/event-banner
func (h *AdminHandlers) DeleteEventBanner(c *gin.Context) {
	if err := h.bannerService.Delete(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event banner deleted"})
}
