package services

import "marketplace-backend/internal/models"

// feedLimit caps every promotional feed and search
const feedLimit = 8

// publicProductClause restricts reads to products owned by a seller
const publicProductClause = "p.seller_id IS NOT NULL"

// IsPubliclyVisible reports whether a product may appear in public browse results.
// Admin templates have no seller and stay hidden until a seller claims one.
func IsPubliclyVisible(p *models.Product) bool {
	return p.SellerID != nil
}

// CanViewProduct decides whether a caller with the given role may open a product page.
// An empty role is an anonymous caller.
func CanViewProduct(p *models.Product, role models.UserRole) bool {
	if IsPubliclyVisible(p) {
		return true
	}
	switch role {
	case models.UserRoleAdmin, models.UserRoleSeller:
		return true
	case models.UserRoleCustomer:
		return false
	default:
		return false
	}
}

// Feed names a promotional product placement
type Feed string

const (
	FeedFeatured    Feed = "featured"
	FeedDiscover    Feed = "discover"
	FeedRecommended Feed = "recommended"
)

// feedQuery builds the public read for a promotional feed. Discover and
// recommended additionally require admin approval; featured does not.
func feedQuery(feed Feed) (*productQuery, error) {
	pq := &productQuery{orderBy: "p.updated_at DESC, p.rowid DESC", limit: feedLimit}
	pq.filter(publicProductClause)

	switch feed {
	case FeedFeatured:
		pq.filter("p.is_featured = TRUE")
	case FeedDiscover:
		pq.filter("p.is_discover = TRUE").filter("p.is_approved = TRUE")
	case FeedRecommended:
		pq.filter("p.is_recommended = TRUE").filter("p.is_approved = TRUE")
	default:
		return nil, BadRequest("Unknown feed: " + string(feed))
	}
	return pq, nil
}
