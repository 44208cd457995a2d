package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/testhelpers"
)

func TestOrderService(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	service := NewOrderService(db)

	buyer := testhelpers.CreateUser(t, db, testhelpers.UserFixture{Name: "Wanjiru"})
	other := testhelpers.CreateUser(t, db, testhelpers.UserFixture{})
	_, sellerID := testhelpers.CreateSellerUser(t, db, true)

	kettle := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{SellerID: sellerID})
	toaster := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{SellerID: sellerID})
	kettleListing := testhelpers.CreateListing(t, db, sellerID, kettle, 30, true)
	toasterListing := testhelpers.CreateListing(t, db, sellerID, toaster, 45.5, true)
	withdrawn := testhelpers.CreateListing(t, db, sellerID, toaster, 10, false)

	t.Run("snapshots seller prices", func(t *testing.T) {
		order, err := service.PlaceOrder(ctx, buyer, &models.OrderCreation{Items: []models.OrderItemRequest{
			{ListingID: kettleListing, Quantity: 2},
			{ListingID: toasterListing, Quantity: 1},
		}})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.InDelta(t, 105.5, order.TotalPrice, 0.001)
		require.Len(t, order.Items, 2)
		assert.Equal(t, sellerID, order.Items[0].SellerID)
		assert.Equal(t, 30.0, order.Items[0].Price)

		stored, err := getProduct(ctx, db, kettle)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.SoldCount)
	})

	t.Run("rejected orders store nothing", func(t *testing.T) {
		_, err := service.PlaceOrder(ctx, buyer, &models.OrderCreation{Items: []models.OrderItemRequest{
			{ListingID: kettleListing, Quantity: 1},
			{ListingID: withdrawn, Quantity: 1},
		}})
		assert.Equal(t, KindBadRequest, KindOf(err))
		assert.Equal(t, "Listing is no longer available", MessageOf(err))

		_, err = service.PlaceOrder(ctx, buyer, &models.OrderCreation{Items: []models.OrderItemRequest{{ListingID: "missing", Quantity: 1}}})
		assert.Equal(t, MsgListingNotFound, MessageOf(err))

		_, err = service.PlaceOrder(ctx, buyer, &models.OrderCreation{Items: []models.OrderItemRequest{{ListingID: kettleListing}}})
		assert.Equal(t, KindBadRequest, KindOf(err))

		_, err = service.PlaceOrder(ctx, buyer, &models.OrderCreation{})
		assert.Equal(t, KindBadRequest, KindOf(err))

		assert.Equal(t, 1, testhelpers.CountRows(t, db, "orders", ""))
	})

	t.Run("history", func(t *testing.T) {
		_, err := service.PlaceOrder(ctx, other, &models.OrderCreation{Items: []models.OrderItemRequest{{ListingID: kettleListing, Quantity: 1}}})
		require.NoError(t, err)

		mine, err := service.ListForUser(ctx, buyer)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Len(t, mine[0].Items, 2)
		assert.Equal(t, "Wanjiru", mine[0].User.Name)

		all, err := service.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		none, err := service.ListForUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
