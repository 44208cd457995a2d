package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/testhelpers"
)

func TestListingService(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	service := NewListingService(db, NewSellerGuard(db))

	sellerUser, sellerID := testhelpers.CreateSellerUser(t, db, true)
	otherUser, _ := testhelpers.CreateSellerUser(t, db, true)
	pendingUser, _ := testhelpers.CreateSellerUser(t, db, false)
	productID := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{Name: "Blender"})

	var listingID string

	t.Run("create", func(t *testing.T) {
		listing, created, err := service.Create(ctx, sellerUser, &models.ListingCreation{ProductID: productID, SellerPrice: 120})
		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, listing.IsListed)
		assert.Equal(t, sellerID, listing.SellerID)
		require.NotNil(t, listing.Product)
		assert.Equal(t, "Blender", listing.Product.Name)
		listingID = listing.ID
	})

	t.Run("active pair conflicts", func(t *testing.T) {
		_, _, err := service.Create(ctx, sellerUser, &models.ListingCreation{ProductID: productID, SellerPrice: 130})
		assert.Equal(t, KindConflict, KindOf(err))
		assert.Equal(t, MsgAlreadyListed, MessageOf(err))
	})

	t.Run("missing product", func(t *testing.T) {
		_, _, err := service.Create(ctx, sellerUser, &models.ListingCreation{ProductID: "missing", SellerPrice: 10})
		assert.Equal(t, MsgProductNotFound, MessageOf(err))
	})

	t.Run("non-owner cannot touch the listing", func(t *testing.T) {
		_, err := service.UpdatePrice(ctx, otherUser, &models.ListingPriceUpdate{SellerProductID: listingID, SellerPrice: 1})
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Equal(t, MsgListingNotFound, MessageOf(err))

		_, err = service.Unlist(ctx, otherUser, &models.ListingReference{SellerProductID: listingID})
		assert.Equal(t, MsgListingNotFound, MessageOf(err))
	})

	t.Run("unapproved seller is forbidden", func(t *testing.T) {
		_, _, err := service.Create(ctx, pendingUser, &models.ListingCreation{ProductID: productID, SellerPrice: 10})
		assert.Equal(t, KindForbidden, KindOf(err))

		_, err = service.UpdatePrice(ctx, pendingUser, &models.ListingPriceUpdate{SellerProductID: listingID, SellerPrice: 1})
		assert.Equal(t, KindForbidden, KindOf(err))

		_, err = service.Unlist(ctx, pendingUser, &models.ListingReference{SellerProductID: listingID})
		assert.Equal(t, KindForbidden, KindOf(err))

		mine, err := service.ListMine(ctx, pendingUser)
		require.NoError(t, err)
		assert.Empty(t, mine)
	})

	t.Run("price update", func(t *testing.T) {
		listing, err := service.UpdatePrice(ctx, sellerUser, &models.ListingPriceUpdate{SellerProductID: listingID, SellerPrice: 99.5})
		require.NoError(t, err)
		assert.Equal(t, 99.5, listing.SellerPrice)
	})

	t.Run("unlist hides from the storefront", func(t *testing.T) {
		listing, err := service.Unlist(ctx, sellerUser, &models.ListingReference{SellerProductID: listingID})
		require.NoError(t, err)
		assert.False(t, listing.IsListed)

		active, err := service.ListActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := service.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("relisting reactivates with the new price", func(t *testing.T) {
		listing, created, err := service.Create(ctx, sellerUser, &models.ListingCreation{ProductID: productID, SellerPrice: 140})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, listingID, listing.ID)
		assert.True(t, listing.IsListed)
		assert.Equal(t, 140.0, listing.SellerPrice)
		assert.Equal(t, 1, testhelpers.CountRows(t, db, "seller_products", ""))
	})

	t.Run("flags", func(t *testing.T) {
		listing, err := service.SetFlag(ctx, listingID, FeedFeatured, true)
		require.NoError(t, err)
		assert.True(t, listing.IsFeatured)

		_, err = service.SetFlag(ctx, "missing", FeedDiscover, true)
		assert.Equal(t, KindNotFound, KindOf(err))

		_, err = service.SetFlag(ctx, listingID, Feed("trending"), true)
		assert.Equal(t, KindBadRequest, KindOf(err))
	})

	t.Run("list mine", func(t *testing.T) {
		mine, err := service.ListMine(ctx, sellerUser)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.NotNil(t, mine[0].Seller)

		customer := testhelpers.CreateUser(t, db, testhelpers.UserFixture{})
		_, err = service.ListMine(ctx, customer)
		assert.Equal(t, MsgSellerNotFound, MessageOf(err))
	})
}
