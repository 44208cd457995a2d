package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/testhelpers"
)

const testDefaultImage = "https://example.com/default.png"

func validCreation() *models.ProductCreation {
	return &models.ProductCreation{
		Name:               "Office Chair",
		Price:              4500,
		Description:        "Ergonomic chair",
		ProductDescription: "<p>Adjustable height</p>",
		SKU:                "CHAIR-01",
		CategoryID:         uuid.New().String(),
		SubCategoryID:      uuid.New().String(),
		Stock:              12,
		Brand:              "Sitwell",
	}
}

func imageFiles(n int) []io.Reader {
	files := make([]io.Reader, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, bytes.NewReader([]byte{byte(i)}))
	}
	return files
}

func TestValidateProductCreation(t *testing.T) {
	c := validCreation()
	c.Name = "   "
	c.Brand = ""
	err := ValidateProductCreation(c)
	assert.Equal(t, KindBadRequest, KindOf(err))
	assert.Equal(t, "Missing required fields: name, brand", MessageOf(err))

	c = validCreation()
	c.Price = 0
	assert.Equal(t, "Price must be greater than 0", MessageOf(ValidateProductCreation(c)))

	c = validCreation()
	c.CategoryID = "chairs"
	assert.Equal(t, KindBadRequest, KindOf(ValidateProductCreation(c)))

	assert.NoError(t, ValidateProductCreation(validCreation()))
}

func TestAdminCreateProduct(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()

	t.Run("without images uses the default image", func(t *testing.T) {
		db := testhelpers.NewTestDB(t)
		uploader := &fakeUploader{}
		service := NewAdminService(db, uploader, testDefaultImage)

		product, err := service.CreateProduct(ctx, adminID, validCreation(), nil)
		require.NoError(t, err)
		require.Len(t, product.Images, 1)
		assert.Equal(t, testDefaultImage, product.Images[0].URL)
		assert.True(t, product.Images[0].IsPrimary)
		assert.Zero(t, uploader.calls)

		assert.Nil(t, product.SellerID)
		assert.Equal(t, validCreation().Description, product.ShortDescription)
		assert.True(t, product.IsApproved)
		assert.Equal(t, adminID, *product.ApprovedBy)
	})

	t.Run("uploads every image in order", func(t *testing.T) {
		db := testhelpers.NewTestDB(t)
		uploader := &fakeUploader{}
		service := NewAdminService(db, uploader, testDefaultImage)

		product, err := service.CreateProduct(ctx, adminID, validCreation(), imageFiles(3))
		require.NoError(t, err)
		require.Len(t, product.Images, 3)
		assert.True(t, product.Images[0].IsPrimary)
		assert.False(t, product.Images[2].IsPrimary)
		assert.Equal(t, "Office Chair", product.Images[1].Alt)
		assert.Equal(t, []string{AdminProductFolder, AdminProductFolder, AdminProductFolder}, uploader.folders)

		stored, err := getProduct(ctx, db, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.Images, stored.Images)
	})

	t.Run("a failed upload stores nothing and removes earlier images", func(t *testing.T) {
		db := testhelpers.NewTestDB(t)
		uploader := &fakeUploader{failOn: 2}
		service := NewAdminService(db, uploader, testDefaultImage)

		_, err := service.CreateProduct(ctx, adminID, validCreation(), imageFiles(3))
		assert.Equal(t, KindUpstream, KindOf(err))
		assert.Equal(t, MsgImageUploadFailed, MessageOf(err))

		assert.Equal(t, 2, uploader.calls)
		assert.Equal(t, []string{AdminProductFolder + "/img-1"}, uploader.destroyed)
		assert.Equal(t, 0, testhelpers.CountRows(t, db, "products", ""))
	})

	t.Run("invalid form uploads nothing", func(t *testing.T) {
		db := testhelpers.NewTestDB(t)
		uploader := &fakeUploader{}
		service := NewAdminService(db, uploader, testDefaultImage)

		c := validCreation()
		c.SKU = ""
		_, err := service.CreateProduct(ctx, adminID, c, imageFiles(2))
		assert.Equal(t, KindBadRequest, KindOf(err))
		assert.Zero(t, uploader.calls)
	})
}

func TestAdminModeration(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	service := NewAdminService(db, &fakeUploader{}, testDefaultImage)
	adminID := testhelpers.CreateUser(t, db, testhelpers.UserFixture{Role: "admin"})

	_, sellerID := testhelpers.CreateSellerUser(t, db, true)
	productID := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{SellerID: sellerID, Name: "Stool"})

	t.Run("approve and reject", func(t *testing.T) {
		product, err := service.ApproveProduct(ctx, productID, adminID)
		require.NoError(t, err)
		assert.True(t, product.IsApproved)
		assert.NotNil(t, product.ApprovalDate)

		product, err = service.RejectProduct(ctx, productID, adminID, "")
		require.NoError(t, err)
		assert.False(t, product.IsApproved)
		assert.Nil(t, product.ApprovalDate)
		assert.Equal(t, MsgDefaultRejectReason, *product.RejectionReason)

		stored, err := getProduct(ctx, db, productID)
		require.NoError(t, err)
		assert.False(t, stored.IsApproved)
		assert.Equal(t, MsgDefaultRejectReason, *stored.RejectionReason)

		_, err = service.ApproveProduct(ctx, "missing", adminID)
		assert.Equal(t, MsgProductNotFound, MessageOf(err))
	})

	t.Run("edit applies present fields only", func(t *testing.T) {
		name := "Bar Stool"
		stock := 7
		product, err := service.EditProduct(ctx, productID, &models.ProductUpdate{Name: &name, Stock: &stock})
		require.NoError(t, err)
		assert.Equal(t, "Bar Stool", product.Name)
		assert.Equal(t, 7, product.Stock)
		assert.Equal(t, 100.0, product.Price)

		price := -1.0
		_, err = service.EditProduct(ctx, productID, &models.ProductUpdate{Price: &price})
		assert.Equal(t, KindBadRequest, KindOf(err))
	})

	t.Run("placements", func(t *testing.T) {
		for _, placement := range []string{PlacementFeatured, PlacementDiscover, PlacementRecommended, PlacementEvent} {
			_, err := service.SetProductPlacement(ctx, productID, placement, true)
			require.NoError(t, err, placement)
		}
		stored, err := getProduct(ctx, db, productID)
		require.NoError(t, err)
		assert.True(t, stored.IsFeatured)
		assert.True(t, stored.IsDiscover)
		assert.True(t, stored.IsRecommended)
		assert.True(t, stored.IsEventProduct)

		product, err := service.SetProductPlacement(ctx, productID, PlacementFeatured, false)
		require.NoError(t, err)
		assert.False(t, product.IsFeatured)

		_, err = service.SetProductPlacement(ctx, productID, "banner", true)
		assert.Equal(t, KindBadRequest, KindOf(err))
	})

	t.Run("list includes templates", func(t *testing.T) {
		testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{})
		products, err := service.ListProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})
}

func TestAdminDeleteProductCascades(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	service := NewAdminService(db, &fakeUploader{}, testDefaultImage)
	banners := NewEventBannerService(db)

	_, sellerA := testhelpers.CreateSellerUser(t, db, true)
	_, sellerB := testhelpers.CreateSellerUser(t, db, true)
	productID := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{})
	otherID := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{})

	testhelpers.CreateListing(t, db, sellerA, productID, 90, true)
	testhelpers.CreateListing(t, db, sellerB, productID, 95, false)
	kept := testhelpers.CreateListing(t, db, sellerA, otherID, 50, true)

	_, err := banners.Upsert(ctx, &models.EventBannerInput{Title: "Sale", ProductID: &productID})
	require.NoError(t, err)

	require.NoError(t, service.DeleteProduct(ctx, productID))

	assert.Equal(t, 0, testhelpers.CountRows(t, db, "products", "id = ?", productID))
	assert.Equal(t, 0, testhelpers.CountRows(t, db, "seller_products", "product_id = ?", productID))
	assert.Equal(t, 1, testhelpers.CountRows(t, db, "seller_products", "id = ?", kept))
	assert.Equal(t, 1, testhelpers.CountRows(t, db, "event_banners", "product_id IS NULL"))

	err = service.DeleteProduct(ctx, productID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAdminAnalytics(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	service := NewAdminService(db, &fakeUploader{}, testDefaultImage)
	orders := NewOrderService(db)

	buyer := testhelpers.CreateUser(t, db, testhelpers.UserFixture{})
	_, approved := testhelpers.CreateSellerUser(t, db, true)
	testhelpers.CreateSellerUser(t, db, false)
	testhelpers.CreateSellerUser(t, db, false)
	productID := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{SellerID: approved})
	listing := testhelpers.CreateListing(t, db, approved, productID, 25, true)

	_, err := orders.PlaceOrder(ctx, buyer, &models.OrderCreation{Items: []models.OrderItemRequest{{ListingID: listing, Quantity: 4}}})
	require.NoError(t, err)

	a, err := service.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, a.TotalUsers)
	assert.Equal(t, 1, a.TotalProducts)
	assert.Equal(t, 1, a.TotalOrders)
	assert.Equal(t, 3, a.TotalVendors)
	assert.Equal(t, 2, a.PendingVendors)
	assert.InDelta(t, 100.0, a.TotalSales, 0.001)
}
