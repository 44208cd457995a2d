package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"marketplace-backend/config"
	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

const slowRequestThreshold = 5 * time.Second

// SetupRouter wires services, middleware and every route of the API
func SetupRouter(db *sql.DB, cfg *config.Config, authService *services.AuthService, uploader services.ImageUploader) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.RateLimitRequests = cfg.RateLimitRequests
	securityConfig.RateLimitWindow = cfg.RateLimitWindow
	securityConfig.RequestTimeout = cfg.RequestTimeout

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger(slowRequestThreshold))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(securityConfig))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Initialize services
	guard := services.NewSellerGuard(db)
	userService := services.NewUserService(db)
	sellerService := services.NewSellerService(db)
	productService := services.NewProductService(db, guard)
	variantService := services.NewVariantService(db, guard, uploader, cfg.StrictVariantSKU)
	reviewService := services.NewReviewService(db, cfg.RecomputeRatingOnReviewDelete)
	listingService := services.NewListingService(db, guard)
	orderService := services.NewOrderService(db)
	bannerService := services.NewEventBannerService(db)
	adminService := services.NewAdminService(db, uploader, cfg.DefaultProductImage)

	// Initialize handlers
	authHandlers := NewAuthHandlers(userService, authService)
	sellerHandlers := NewSellerHandlers(sellerService)
	productHandlers := NewProductHandlers(productService, bannerService)
	variantHandlers := NewVariantHandlers(variantService)
	reviewHandlers := NewReviewHandlers(reviewService)
	listingHandlers := NewListingHandlers(listingService)
	orderHandlers := NewOrderHandlers(orderService)
	adminHandlers := NewAdminHandlers(userService, sellerService, adminService, listingService, orderService, bannerService)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	requireAuth := authMiddleware.AuthRequired()
	requireAdmin := authMiddleware.RequireRole(models.UserRoleAdmin)

	productImages := middleware.ImageUploadMiddleware(middleware.ImageUploadConfig{
		Field:       "images",
		MaxFiles:    cfg.MaxUploadFiles,
		MaxFileSize: cfg.MaxFileSize,
	})
	variantImage := middleware.ImageUploadMiddleware(middleware.ImageUploadConfig{
		Field:       "image",
		MaxFiles:    1,
		MaxFileSize: cfg.MaxFileSize,
	})

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.RateLimitMiddleware(securityConfig))
	apiGroup.Use(middleware.TimeoutMiddleware(securityConfig.RequestTimeout))
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "healthy",
				"message":   "Marketplace API is running",
				"timestamp": time.Now().Unix(),
			})
		})

		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", authHandlers.Register)
			auth.POST("/login", authHandlers.Login)
			auth.GET("/me", requireAuth, authHandlers.Me)
			auth.POST("/logout", requireAuth, authHandlers.Logout)
		}

		sellers := apiGroup.Group("/sellers", requireAuth)
		{
			sellers.POST("/register", sellerHandlers.Register)
			sellers.GET("/me", sellerHandlers.GetMine)
		}

		products := apiGroup.Group("/products")
		{
			// Public catalog; static paths are registered ahead of /:id
			products.GET("", productHandlers.ListProducts)
			products.GET("/featured", productHandlers.ListFeed(services.FeedFeatured))
			products.GET("/discover", productHandlers.ListFeed(services.FeedDiscover))
			products.GET("/recommended", productHandlers.ListFeed(services.FeedRecommended))
			products.GET("/search", productHandlers.Search)
			products.GET("/category/:categoryId", productHandlers.ListByCategory)
			products.GET("/event-banner", productHandlers.GetEventBanner)
			products.GET("/listings", listingHandlers.ListActive)
			products.GET("/vendor/:vendorId/reviews", reviewHandlers.ListVendorReviews)
			products.GET("/admin-templates", requireAuth,
				authMiddleware.RequireRoles(models.UserRoleSeller, models.UserRoleAdmin),
				productHandlers.ListTemplates)

			// Seller routes; the seller guard checks profile and approval
			seller := products.Group("/seller", requireAuth)
			{
				seller.POST("", productHandlers.CreateSellerProduct)
				seller.POST("/listings", listingHandlers.CreateListing)
				seller.GET("/listings", listingHandlers.ListMine)
				seller.PUT("/listings/price", listingHandlers.UpdatePrice)
				seller.PUT("/listings/unlist", listingHandlers.Unlist)
			}

			products.GET("/:id", authMiddleware.OptionalAuth(), productHandlers.GetProduct)
			products.GET("/:id/reviews", reviewHandlers.ListProductReviews)
			products.POST("/:id/reviews", requireAuth, reviewHandlers.AddReview)
			products.PUT("/:id/reviews", requireAuth, reviewHandlers.UpdateReview)
			products.DELETE("/:id/reviews", requireAuth, reviewHandlers.DeleteReview)

			products.POST("/:id/variants", requireAuth, variantHandlers.AddVariant)
			products.PUT("/:id/variants/option", requireAuth, variantHandlers.UpdateOption)
			products.DELETE("/:id/variants/option", requireAuth, variantHandlers.DeleteOption)
			products.POST("/:id/variants/option/image", requireAuth, variantImage, variantHandlers.UploadOptionImage)
		}

		orders := apiGroup.Group("/orders", requireAuth)
		{
			orders.POST("", orderHandlers.PlaceOrder)
			orders.GET("/my", orderHandlers.ListMine)
		}

		admin := apiGroup.Group("/admin", requireAuth, requireAdmin)
		{
			admin.GET("/users", adminHandlers.ListUsers)
			admin.PUT("/users/:id", adminHandlers.UpdateUser)
			admin.DELETE("/users/:id", adminHandlers.DeleteUser)

			admin.GET("/sellers", adminHandlers.ListSellers)
			admin.PUT("/sellers/:id/approve", adminHandlers.ApproveSeller)
			admin.PUT("/sellers/:id/reject", adminHandlers.RejectSeller)

			admin.GET("/products", adminHandlers.ListProducts)
			admin.POST("/create-product", productImages, adminHandlers.CreateProduct)
			admin.PUT("/products/:id", adminHandlers.EditProduct)
			admin.DELETE("/products/:id", adminHandlers.DeleteProduct)
			admin.PUT("/products/:id/approve", adminHandlers.ApproveProduct)
			admin.PUT("/products/:id/reject", adminHandlers.RejectProduct)
			for _, placement := range []string{
				services.PlacementFeatured,
				services.PlacementDiscover,
				services.PlacementRecommended,
				services.PlacementEvent,
			} {
				admin.PUT("/products/:id/"+placement, adminHandlers.SetProductPlacement(placement, true))
				admin.DELETE("/products/:id/"+placement, adminHandlers.SetProductPlacement(placement, false))
			}

			admin.GET("/listings", adminHandlers.ListListings)
			for _, feed := range []services.Feed{services.FeedFeatured, services.FeedDiscover, services.FeedRecommended} {
				admin.PUT("/listings/:id/"+string(feed), adminHandlers.SetListingFlag(feed, true))
				admin.DELETE("/listings/:id/"+string(feed), adminHandlers.SetListingFlag(feed, false))
			}

			admin.GET("/orders", adminHandlers.ListOrders)
			admin.GET("/analytics", adminHandlers.Analytics)

			admin.POST("/event-banner", adminHandlers.SaveEventBanner)
			admin.DELETE("/event-banner", adminHandlers.DeleteEventBanner)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Route not found",
			"route":   c.Request.URL.Path,
		})
	})

	return router
}
