package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"strings"

	"marketplace-backend/internal/models"
)

// VariantOptionInput is one option submitted when adding a variant group.
// Images and specifications stay raw so a non-array value can be reported precisely.
type VariantOptionInput struct {
	Value          string          `json:"value"`
	Price          *float64        `json:"price"`
	SKU            string          `json:"sku"`
	Stock          *int            `json:"stock"`
	Images         json.RawMessage `json:"images"`
	Specifications json.RawMessage `json:"specifications"`
}

// AddVariantRequest adds a named group of options to a product
type AddVariantRequest struct {
	VariantName string               `json:"variantName"`
	Options     []VariantOptionInput `json:"options"`
}

// VariantOptionUpdate lists the option fields that may be changed. Absent fields are kept.
type VariantOptionUpdate struct {
	Value          *string         `json:"value"`
	Price          *float64        `json:"price"`
	SKU            *string         `json:"sku"`
	Stock          *int            `json:"stock"`
	Images         json.RawMessage `json:"images"`
	Specifications json.RawMessage `json:"specifications"`
}

// UpdateVariantOptionRequest targets one option by group name and value
type UpdateVariantOptionRequest struct {
	VariantName string          `json:"variantName"`
	OptionValue string          `json:"optionValue"`
	Updates     json.RawMessage `json:"updates"`
}

// DeleteVariantOptionRequest targets one option by group name and value
type DeleteVariantOptionRequest struct {
	VariantName string `json:"variantName"`
	OptionValue string `json:"optionValue"`
}

// ParseVariantOptionUpdate decodes an updates object, rejecting keys outside the allow-list
func ParseVariantOptionUpdate(raw json.RawMessage) (*VariantOptionUpdate, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, BadRequest("Updates are required")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var upd VariantOptionUpdate
	if err := dec.Decode(&upd); err != nil {
		return nil, BadRequest("Invalid updates: " + err.Error())
	}
	return &upd, nil
}

// decodeArray fills dst from a JSON array. Absent or null leaves dst empty.
func decodeArray(raw json.RawMessage, dst interface{}, message string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '[' {
		return BadRequest(message)
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return BadRequest(message)
	}
	return nil
}

func buildOption(in VariantOptionInput) (models.VariantOption, error) {
	opt := models.VariantOption{
		Value:          strings.TrimSpace(in.Value),
		SKU:            strings.TrimSpace(in.SKU),
		Stock:          in.Stock,
		Images:         []string{},
		Specifications: []models.Specification{},
	}
	if opt.Value == "" || in.Price == nil || opt.SKU == "" {
		return opt, BadRequest("Each option must have value, price and sku")
	}
	if *in.Price <= 0 {
		return opt, BadRequest("Option price must be greater than 0")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return opt, BadRequest("Option stock cannot be negative")
	}
	opt.Price = *in.Price

	if err := decodeArray(in.Images, &opt.Images, "Images must be an array"); err != nil {
		return opt, err
	}
	if err := decodeArray(in.Specifications, &opt.Specifications, "Specifications must be an array"); err != nil {
		return opt, err
	}
	return opt, nil
}

func cloneVariants(variants []models.Variant) []models.Variant {
	out := make([]models.Variant, len(variants))
	for i, v := range variants {
		out[i] = models.Variant{Name: v.Name, Options: append([]models.VariantOption(nil), v.Options...)}
	}
	return out
}

// skuTaken reports whether sku is used by any option other than the one at (group, option).
// Outside strict mode only the options of the same group are considered.
func skuTaken(variants []models.Variant, sku string, group, option int, strict bool) bool {
	for gi, v := range variants {
		if gi != group && !strict {
			continue
		}
		for oi, o := range v.Options {
			if gi == group && oi == option {
				continue
			}
			if o.SKU == sku {
				return true
			}
		}
	}
	return false
}

// AddVariantGroup validates the request and returns a new variant list with the group appended.
// The input slice is never modified.
func AddVariantGroup(variants []models.Variant, req *AddVariantRequest, strict bool) ([]models.Variant, error) {
	name := strings.TrimSpace(req.VariantName)
	if name == "" || len(req.Options) == 0 {
		return nil, BadRequest("Variant name and options array are required")
	}
	for _, v := range variants {
		if v.Name == name {
			return nil, BadRequest("Variant already exists: " + name)
		}
	}

	group := models.Variant{Name: name, Options: make([]models.VariantOption, 0, len(req.Options))}
	for _, in := range req.Options {
		opt, err := buildOption(in)
		if err != nil {
			return nil, err
		}
		group.Options = append(group.Options, opt)
	}

	// SKUs are checked only once every option is well formed
	seen := make(map[string]bool, len(group.Options))
	for _, opt := range group.Options {
		if seen[opt.SKU] || (strict && skuTaken(variants, opt.SKU, -1, -1, true)) {
			return nil, BadRequest("Duplicate SKU found: " + opt.SKU)
		}
		seen[opt.SKU] = true
	}

	return append(cloneVariants(variants), group), nil
}

// ApplyOptionUpdate returns a new variant list with the addressed option changed
func ApplyOptionUpdate(variants []models.Variant, variantName, optionValue string, upd *VariantOptionUpdate, strict bool) ([]models.Variant, *models.VariantOption, error) {
	out := cloneVariants(variants)

	p := models.Product{Variants: out}
	gi := p.FindVariant(variantName)
	if gi < 0 {
		return nil, nil, NotFound(MsgVariantNotFound)
	}
	group := &out[gi]
	oi := group.FindOption(optionValue)
	if oi < 0 {
		return nil, nil, NotFound(MsgOptionNotFound)
	}
	opt := group.Options[oi]

	if upd.Value != nil {
		value := strings.TrimSpace(*upd.Value)
		if value == "" {
			return nil, nil, BadRequest("Option value cannot be empty")
		}
		if idx := group.FindOption(value); idx >= 0 && idx != oi {
			return nil, nil, BadRequest("Option value already exists: " + value)
		}
		opt.Value = value
	}
	if upd.Price != nil {
		if *upd.Price <= 0 {
			return nil, nil, BadRequest("Option price must be greater than 0")
		}
		opt.Price = *upd.Price
	}
	if upd.SKU != nil {
		sku := strings.TrimSpace(*upd.SKU)
		if sku == "" {
			return nil, nil, BadRequest("Option sku cannot be empty")
		}
		if skuTaken(out, sku, gi, oi, strict) {
			return nil, nil, BadRequest("Duplicate SKU found: " + sku)
		}
		opt.SKU = sku
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return nil, nil, BadRequest("Option stock cannot be negative")
		}
		stock := *upd.Stock
		opt.Stock = &stock
	}
	if len(upd.Images) > 0 {
		images := []string{}
		if err := decodeArray(upd.Images, &images, "Images must be an array"); err != nil {
			return nil, nil, err
		}
		opt.Images = images
	}
	if len(upd.Specifications) > 0 {
		specs := []models.Specification{}
		if err := decodeArray(upd.Specifications, &specs, "Specifications must be an array"); err != nil {
			return nil, nil, err
		}
		opt.Specifications = specs
	}

	group.Options[oi] = opt
	return out, &opt, nil
}

// RemoveOption returns a new variant list without the addressed option; an emptied group is dropped
func RemoveOption(variants []models.Variant, variantName, optionValue string) ([]models.Variant, error) {
	out := cloneVariants(variants)

	p := models.Product{Variants: out}
	gi := p.FindVariant(variantName)
	if gi < 0 {
		return nil, NotFound(MsgVariantNotFound)
	}
	oi := out[gi].FindOption(optionValue)
	if oi < 0 {
		return nil, NotFound(MsgOptionNotFound)
	}

	out[gi].Options = append(out[gi].Options[:oi], out[gi].Options[oi+1:]...)
	if len(out[gi].Options) == 0 {
		out = append(out[:gi], out[gi+1:]...)
	}
	return out, nil
}

// VariantService applies guarded variant mutations to seller products
type VariantService struct {
	db        *sql.DB
	guard     *SellerGuard
	uploader  ImageUploader
	strictSKU bool
}

// NewVariantService creates a new variant service
func NewVariantService(db *sql.DB, guard *SellerGuard, uploader ImageUploader, strictSKU bool) *VariantService {
	return &VariantService{db: db, guard: guard, uploader: uploader, strictSKU: strictSKU}
}

// AddVariant appends a variant group to a product the caller owns
func (s *VariantService) AddVariant(ctx context.Context, userID, productID string, req *AddVariantRequest) (*models.Product, error) {
	product, _, err := s.guard.LoadOwnedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	variants, err := AddVariantGroup(product.Variants, req, s.strictSKU)
	if err != nil {
		return nil, err
	}

	product.Variants = variants
	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateOption changes one option of a product the caller owns
func (s *VariantService) UpdateOption(ctx context.Context, userID, productID string, req *UpdateVariantOptionRequest) (*models.Product, error) {
	product, _, err := s.guard.LoadOwnedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.VariantName) == "" || strings.TrimSpace(req.OptionValue) == "" {
		return nil, BadRequest("Variant name and option value are required")
	}
	upd, err := ParseVariantOptionUpdate(req.Updates)
	if err != nil {
		return nil, err
	}

	variants, _, err := ApplyOptionUpdate(product.Variants, req.VariantName, req.OptionValue, upd, s.strictSKU)
	if err != nil {
		return nil, err
	}

	product.Variants = variants
	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteOption removes one option of a product the caller owns
func (s *VariantService) DeleteOption(ctx context.Context, userID, productID string, req *DeleteVariantOptionRequest) (*models.Product, error) {
	product, _, err := s.guard.LoadOwnedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.VariantName) == "" || strings.TrimSpace(req.OptionValue) == "" {
		return nil, BadRequest("Variant name and option value are required")
	}

	variants, err := RemoveOption(product.Variants, req.VariantName, req.OptionValue)
	if err != nil {
		return nil, err
	}

	product.Variants = variants
	if err := saveProduct(ctx, s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UploadOptionImage stores a variant image for a product the caller owns and returns its URL
func (s *VariantService) UploadOptionImage(ctx context.Context, userID, productID string, file io.Reader) (string, error) {
	if _, _, err := s.guard.LoadOwnedProduct(ctx, userID, productID); err != nil {
		return "", err
	}

	img, err := s.uploader.Upload(ctx, file, VariantImageFolder, variantImageTransform)
	if err != nil {
		log.Printf("❌ Variant image upload failed for product %s: %v", productID, err)
		return "", Upstream(MsgImageUploadFailed, err)
	}

	log.Printf("🖼️ Variant image uploaded for product %s: %s", productID, img.PublicID)
	return img.URL, nil
}

