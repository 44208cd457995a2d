package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleVariants() []Variant {
	return []Variant{
		{Name: "Color", Options: []VariantOption{
			{Value: "Red", Price: 12, SKU: "C-R", Stock: intPtr(3)},
			{Value: "Blue", Price: 9, SKU: "C-B", Stock: intPtr(0)},
		}},
		{Name: "Size", Options: []VariantOption{
			{Value: "L", Price: 15, SKU: "S-L", Stock: intPtr(0)},
		}},
	}
}

func TestProductTemplate(t *testing.T) {
	p := &Product{}
	assert.True(t, p.IsTemplate())

	seller := "seller-1"
	p.SellerID = &seller
	assert.False(t, p.IsTemplate())
}

func TestProductTotalStock(t *testing.T) {
	t.Run("sums tracked option stock", func(t *testing.T) {
		p := &Product{Stock: 50, Variants: sampleVariants()}
		assert.Equal(t, 3, p.TotalStock())
	})

	t.Run("falls back to product stock", func(t *testing.T) {
		p := &Product{Stock: 7, Variants: []Variant{
			{Name: "Color", Options: []VariantOption{{Value: "Red", Price: 1, SKU: "A"}}},
		}}
		assert.Equal(t, 7, p.TotalStock())
	})
}

func TestProductPriceRange(t *testing.T) {
	p := &Product{Price: 20}
	assert.Equal(t, PriceRange{Min: 20, Max: 20}, p.GetPriceRange())

	p.Variants = sampleVariants()
	assert.Equal(t, PriceRange{Min: 9, Max: 15}, p.GetPriceRange())
}

func TestProductAvailableVariants(t *testing.T) {
	p := &Product{Variants: sampleVariants()}

	available := p.AvailableVariants()
	require.Len(t, available, 1)
	assert.Equal(t, "Color", available[0].Name)
	require.Len(t, available[0].Options, 1)
	assert.Equal(t, "Red", available[0].Options[0].Value)

	// untracked options always count as available
	p.Variants[1].Options[0].Stock = nil
	assert.Len(t, p.AvailableVariants(), 2)
}

func TestProductRecomputeReviewStats(t *testing.T) {
	p := &Product{Reviews: []Review{{User: "a", Rating: 5}, {User: "b", Rating: 2}}}
	p.RecomputeReviewStats()
	assert.Equal(t, 2, p.NumReviews)
	assert.InDelta(t, 3.5, p.Rating, 0.0001)

	p.Reviews = nil
	p.RecomputeReviewStats()
	assert.Equal(t, 0, p.NumReviews)
	assert.Zero(t, p.Rating)
}

func TestProductFindVariantAndOption(t *testing.T) {
	p := &Product{Variants: sampleVariants()}

	assert.Equal(t, 1, p.FindVariant("Size"))
	assert.Equal(t, -1, p.FindVariant("Material"))
	assert.Equal(t, 1, p.Variants[0].FindOption("Blue"))
	assert.Equal(t, -1, p.Variants[0].FindOption("Green"))
}

func TestProductJSONColumns(t *testing.T) {
	p := &Product{Variants: sampleVariants()}

	cols, err := p.GetJSONColumns()
	require.NoError(t, err)
	assert.Equal(t, "[]", cols.Images)
	assert.Equal(t, "[]", cols.Reviews)

	var restored Product
	require.NoError(t, restored.SetFromJSONColumns(cols))
	assert.Equal(t, p.Variants, restored.Variants)
	assert.NotNil(t, restored.Images)
	assert.Empty(t, restored.Tags)
}

func TestProductDetail(t *testing.T) {
	p := &Product{Price: 10, Stock: 4}
	detail := p.Detail()

	assert.Same(t, p, detail.Product)
	assert.Equal(t, 4, detail.TotalStock)
	assert.Equal(t, PriceRange{Min: 10, Max: 10}, detail.PriceRange)
	assert.NotNil(t, detail.AvailableVariants)
}
