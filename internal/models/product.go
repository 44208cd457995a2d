package models

import (
	"encoding/json"
	"time"
)

// ProductImage is one picture of a product; exactly one is primary
type ProductImage struct {
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	IsPrimary bool   `json:"isPrimary"`
	PublicID  string `json:"publicId,omitempty"`
}

// Specification is a name/value pair shown on the product page
type Specification struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VariantOption is a purchasable choice inside a variant group
type VariantOption struct {
	Value          string          `json:"value"`
	Price          float64         `json:"price"`
	SKU            string          `json:"sku"`
	Stock          *int            `json:"stock,omitempty"`
	Images         []string        `json:"images"`
	Specifications []Specification `json:"specifications"`
}

// Variant is a named group of options, e.g. "Color"
type Variant struct {
	Name    string          `json:"name"`
	Options []VariantOption `json:"options"`
}

// Review is a customer review embedded in its product
type Review struct {
	User       string    `json:"user"`
	Name       string    `json:"name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Product represents a catalog entry. A nil SellerID marks an admin template.
type Product struct {
	ID                 string          `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Price              float64         `json:"price" db:"price"`
	ComparePrice       *float64        `json:"comparePrice,omitempty" db:"compare_price"`
	Description        string          `json:"description" db:"description"`
	ShortDescription   string          `json:"shortDescription" db:"short_description"`
	ProductDescription string          `json:"productDescription" db:"product_description"`
	SKU                string          `json:"sku" db:"sku"`
	CategoryID         string          `json:"category" db:"category_id"`
	SubCategoryID      string          `json:"subCategory" db:"sub_category_id"`
	Stock              int             `json:"stock" db:"stock"`
	Brand              string          `json:"brand" db:"brand"`
	Images             []ProductImage  `json:"images" db:"images"`
	Features           []string        `json:"features" db:"features"`
	Specifications     []Specification `json:"specifications" db:"specifications"`
	Tags               []string        `json:"tags" db:"tags"`
	Variants           []Variant       `json:"variants" db:"variants"`
	Reviews            []Review        `json:"reviews" db:"reviews"`
	Rating             float64         `json:"ratings" db:"rating"`
	NumReviews         int             `json:"numReviews" db:"num_reviews"`
	SoldCount          int             `json:"soldCount" db:"sold_count"`
	SellerID           *string         `json:"sellerId" db:"seller_id"`
	IsApproved         bool            `json:"isApproved" db:"is_approved"`
	ApprovalDate       *time.Time      `json:"approvalDate,omitempty" db:"approval_date"`
	ApprovedBy         *string         `json:"approvedBy,omitempty" db:"approved_by"`
	RejectionReason    *string         `json:"rejectionReason,omitempty" db:"rejection_reason"`
	IsFeatured         bool            `json:"isFeatured" db:"is_featured"`
	IsDiscover         bool            `json:"isDiscover" db:"is_discover"`
	IsRecommended      bool            `json:"isRecommended" db:"is_recommended"`
	IsEventProduct     bool            `json:"isEventProduct" db:"is_event_product"`
	IsActive           bool            `json:"isActive" db:"is_active"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`

	// Joined data (populated when needed)
	Seller *SellerSummary `json:"seller,omitempty"`
}

// ProductSearchResult is the projection returned by search
type ProductSearchResult struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Price      float64        `json:"price"`
	Images     []ProductImage `json:"images"`
	NumReviews int            `json:"numReviews"`
}

// PriceRange is the cheapest and most expensive purchasable price
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ProductDetail is a product plus the derived variant information shown on its page
type ProductDetail struct {
	*Product
	TotalStock        int        `json:"totalStock"`
	PriceRange        PriceRange `json:"priceRange"`
	AvailableVariants []Variant  `json:"availableVariants"`
}

// ProductCreation represents the admin form for a new catalog template
type ProductCreation struct {
	Name               string
	Price              float64
	ComparePrice       *float64
	Description        string
	ProductDescription string
	SKU                string
	CategoryID         string
	SubCategoryID      string
	Stock              int
	Brand              string
	Features           []string
	Specifications     []Specification
	Tags               []string
}

// SellerProductCreation is the minimal payload a seller uses to open a product
type SellerProductCreation struct {
	Name          string  `json:"name" binding:"required"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	CategoryID    string  `json:"category" binding:"required"`
	SubCategoryID string  `json:"subCategory" binding:"required"`
}

// ProductUpdate enumerates the fields an admin may edit; anything else is rejected
type ProductUpdate struct {
	Name               *string          `json:"name,omitempty"`
	Price              *float64         `json:"price,omitempty"`
	ComparePrice       *float64         `json:"comparePrice,omitempty"`
	Description        *string          `json:"description,omitempty"`
	ShortDescription   *string          `json:"shortDescription,omitempty"`
	ProductDescription *string          `json:"productDescription,omitempty"`
	SKU                *string          `json:"sku,omitempty"`
	CategoryID         *string          `json:"category,omitempty"`
	SubCategoryID      *string          `json:"subCategory,omitempty"`
	Stock              *int             `json:"stock,omitempty"`
	Brand              *string          `json:"brand,omitempty"`
	Features           *[]string        `json:"features,omitempty"`
	Specifications     *[]Specification `json:"specifications,omitempty"`
	Tags               *[]string        `json:"tags,omitempty"`
	IsActive           *bool            `json:"isActive,omitempty"`
}

// IsTemplate reports whether the product is an admin-seeded catalog entry
func (p *Product) IsTemplate() bool {
	return p.SellerID == nil
}

// FindVariant returns the index of the named variant group, or -1
func (p *Product) FindVariant(name string) int {
	for i, v := range p.Variants {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// FindOption returns the index of the option with the given value, or -1
func (v *Variant) FindOption(value string) int {
	for i, o := range v.Options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// RecomputeReviewStats recalculates the review count and mean rating from scratch
func (p *Product) RecomputeReviewStats() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}
	total := 0
	for _, r := range p.Reviews {
		total += r.Rating
	}
	p.Rating = float64(total) / float64(p.NumReviews)
}

// TotalStock sums the tracked stock of every option, falling back to the product stock
func (p *Product) TotalStock() int {
	total, tracked := 0, false
	for _, v := range p.Variants {
		for _, o := range v.Options {
			if o.Stock != nil {
				tracked = true
				total += *o.Stock
			}
		}
	}
	if !tracked {
		return p.Stock
	}
	return total
}

// GetPriceRange returns the min and max option price, or the base price without variants
func (p *Product) GetPriceRange() PriceRange {
	r := PriceRange{Min: p.Price, Max: p.Price}
	first := true
	for _, v := range p.Variants {
		for _, o := range v.Options {
			if first {
				r = PriceRange{Min: o.Price, Max: o.Price}
				first = false
				continue
			}
			if o.Price < r.Min {
				r.Min = o.Price
			}
			if o.Price > r.Max {
				r.Max = o.Price
			}
		}
	}
	return r
}

// AvailableVariants keeps only options that are in stock (or untracked) and drops empty groups
func (p *Product) AvailableVariants() []Variant {
	out := []Variant{}
	for _, v := range p.Variants {
		group := Variant{Name: v.Name}
		for _, o := range v.Options {
			if o.Stock == nil || *o.Stock > 0 {
				group.Options = append(group.Options, o)
			}
		}
		if len(group.Options) > 0 {
			out = append(out, group)
		}
	}
	return out
}

// Detail wraps the product with its derived variant information
func (p *Product) Detail() *ProductDetail {
	return &ProductDetail{
		Product:           p,
		TotalStock:        p.TotalStock(),
		PriceRange:        p.GetPriceRange(),
		AvailableVariants: p.AvailableVariants(),
	}
}

// SearchResult projects the product onto the fields search exposes
func (p *Product) SearchResult() ProductSearchResult {
	return ProductSearchResult{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Images:     p.Images,
		NumReviews: p.NumReviews,
	}
}

// marshalJSONColumn serializes a slice column, storing nil as an empty array
func marshalJSONColumn(v interface{}, isNil bool) (string, error) {
	if isNil {
		return "[]", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalJSONColumn(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

// ProductJSONColumns holds the serialized embedded collections of a product row
type ProductJSONColumns struct {
	Images         string
	Features       string
	Specifications string
	Tags           string
	Variants       string
	Reviews        string
}

// GetJSONColumns serializes the embedded collections for storage
func (p *Product) GetJSONColumns() (*ProductJSONColumns, error) {
	var cols ProductJSONColumns
	var err error
	if cols.Images, err = marshalJSONColumn(p.Images, p.Images == nil); err != nil {
		return nil, err
	}
	if cols.Features, err = marshalJSONColumn(p.Features, p.Features == nil); err != nil {
		return nil, err
	}
	if cols.Specifications, err = marshalJSONColumn(p.Specifications, p.Specifications == nil); err != nil {
		return nil, err
	}
	if cols.Tags, err = marshalJSONColumn(p.Tags, p.Tags == nil); err != nil {
		return nil, err
	}
	if cols.Variants, err = marshalJSONColumn(p.Variants, p.Variants == nil); err != nil {
		return nil, err
	}
	if cols.Reviews, err = marshalJSONColumn(p.Reviews, p.Reviews == nil); err != nil {
		return nil, err
	}
	return &cols, nil
}

// SetFromJSONColumns restores the embedded collections from storage
func (p *Product) SetFromJSONColumns(cols *ProductJSONColumns) error {
	p.Images, p.Features, p.Specifications = []ProductImage{}, []string{}, []Specification{}
	p.Tags, p.Variants, p.Reviews = []string{}, []Variant{}, []Review{}

	if err := unmarshalJSONColumn(cols.Images, &p.Images); err != nil {
		return err
	}
	if err := unmarshalJSONColumn(cols.Features, &p.Features); err != nil {
		return err
	}
	if err := unmarshalJSONColumn(cols.Specifications, &p.Specifications); err != nil {
		return err
	}
	if err := unmarshalJSONColumn(cols.Tags, &p.Tags); err != nil {
		return err
	}
	if err := unmarshalJSONColumn(cols.Variants, &p.Variants); err != nil {
		return err
	}
	return unmarshalJSONColumn(cols.Reviews, &p.Reviews)
}
