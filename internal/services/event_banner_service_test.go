package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/testhelpers"
)

func isEventProduct(t *testing.T, ctx context.Context, service *EventBannerService, id string) bool {
	t.Helper()
	p, err := getProduct(ctx, service.db, id)
	require.NoError(t, err)
	return p.IsEventProduct
}

func TestEventBannerService(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewTestDB(t)
	service := NewEventBannerService(db)

	_, sellerID := testhelpers.CreateSellerUser(t, db, true)
	first := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{SellerID: sellerID, Name: "Grill"})
	second := testhelpers.CreateProduct(t, db, testhelpers.ProductFixture{SellerID: sellerID, Name: "Tent"})

	t.Run("nothing active before a banner exists", func(t *testing.T) {
		banner, err := service.GetActive(ctx, time.Now())
		require.NoError(t, err)
		assert.Nil(t, banner)

		assert.Equal(t, KindNotFound, KindOf(service.Delete(ctx)))
	})

	t.Run("title is required", func(t *testing.T) {
		_, err := service.Upsert(ctx, &models.EventBannerInput{Title: " "})
		assert.Equal(t, KindBadRequest, KindOf(err))
	})

	t.Run("unknown product", func(t *testing.T) {
		missing := "missing"
		_, err := service.Upsert(ctx, &models.EventBannerInput{Title: "Sale", ProductID: &missing})
		assert.Equal(t, MsgProductNotFound, MessageOf(err))
		assert.Equal(t, 0, testhelpers.CountRows(t, db, "event_banners", ""))
	})

	t.Run("create flags the product", func(t *testing.T) {
		banner, err := service.Upsert(ctx, &models.EventBannerInput{Title: "Summer Sale", ProductID: &first})
		require.NoError(t, err)
		assert.True(t, banner.IsActive)
		assert.Equal(t, first, *banner.ProductID)
		assert.True(t, isEventProduct(t, ctx, service, first))
	})

	t.Run("replace keeps a single banner and releases the old product", func(t *testing.T) {
		end := time.Now().Add(48 * time.Hour).UTC()
		banner, err := service.Upsert(ctx, &models.EventBannerInput{Title: "Camping Week", EndDate: &end, ProductID: &second})
		require.NoError(t, err)
		assert.Equal(t, "Camping Week", banner.Title)

		assert.Equal(t, 1, testhelpers.CountRows(t, db, "event_banners", ""))
		assert.False(t, isEventProduct(t, ctx, service, first))
		assert.True(t, isEventProduct(t, ctx, service, second))

		active, err := service.GetActive(ctx, time.Now())
		require.NoError(t, err)
		require.NotNil(t, active)
		require.NotNil(t, active.Product)
		assert.Equal(t, "Tent", active.Product.Name)
	})

	t.Run("expired banner is not active", func(t *testing.T) {
		active, err := service.GetActive(ctx, time.Now().Add(72*time.Hour))
		require.NoError(t, err)
		assert.Nil(t, active)
	})

	t.Run("delete releases the product", func(t *testing.T) {
		require.NoError(t, service.Delete(ctx))
		assert.False(t, isEventProduct(t, ctx, service, second))
		assert.Equal(t, 0, testhelpers.CountRows(t, db, "event_banners", ""))
	})
}
