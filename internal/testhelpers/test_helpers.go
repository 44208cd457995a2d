// Package testhelpers builds migrated in-memory databases, fixtures and tokens for tests.
package testhelpers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"marketplace-backend/config"
	"marketplace-backend/database"
)

// JWTSecret signs every token minted by the helpers
const JWTSecret = "test-jwt-secret-key-12345678901234567890"

// DefaultPassword is the plain-text password of every fixture user
const DefaultPassword = "password123"

// NewTestConfig returns a configuration suited to handler tests
func NewTestConfig() *config.Config {
	return &config.Config{
		Environment:         "test",
		Port:                "0",
		DatabaseURL:         ":memory:",
		JWTSecret:           JWTSecret,
		JWTExpiration:       3600,
		DefaultProductImage: "https://example.com/default.png",
		MaxUploadFiles:      5,
		MaxFileSize:         5 * 1024 * 1024,
		RateLimitRequests:   10000,
		RateLimitWindow:     15 * time.Minute,
		RequestTimeout:      15 * time.Second,
	}
}

// NewTestDB opens a migrated in-memory database that is closed with the test
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Initialize(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { db.Close() })
	return db
}

// UserFixture describes a user row
type UserFixture struct {
	Name     string
	Email    string
	Role     string
	Inactive bool
}

// CreateUser inserts a user and returns its id
func CreateUser(t *testing.T, db *sql.DB, u UserFixture) string {
	t.Helper()

	id := uuid.New().String()
	if u.Name == "" {
		u.Name = "Test User"
	}
	if u.Email == "" {
		u.Email = fmt.Sprintf("user-%s@example.com", id[:8])
	}
	if u.Role == "" {
		u.Role = "customer"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO users (id, name, email, password_hash, role, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, u.Name, u.Email, string(hash), u.Role, !u.Inactive)
	require.NoError(t, err)
	return id
}

// CreateSeller inserts a seller profile for userID and returns its id
func CreateSeller(t *testing.T, db *sql.DB, userID string, approved bool) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO sellers (id, user_id, business_name, phone, email, is_approved)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, userID, "Shop "+id[:8], "+254700000000", "shop-"+id[:8]+"@example.com", approved)
	require.NoError(t, err)
	return id
}

// CreateSellerUser creates a seller-role user with a profile, returning both ids
func CreateSellerUser(t *testing.T, db *sql.DB, approved bool) (userID, sellerID string) {
	t.Helper()

	userID = CreateUser(t, db, UserFixture{Role: "seller"})
	return userID, CreateSeller(t, db, userID, approved)
}

// ProductFixture describes a product row; an empty SellerID makes a template
type ProductFixture struct {
	Name          string
	Description   string
	Price         float64
	Stock         int
	SKU           string
	SellerID      string
	CategoryID    string
	SubCategoryID string
	IsApproved    bool
	IsFeatured    bool
	IsDiscover    bool
	IsRecommended bool
	NumReviews    int
	Variants      interface{}
	UpdatedAt     time.Time
}

// CreateProduct inserts a product and returns its id
func CreateProduct(t *testing.T, db *sql.DB, p ProductFixture) string {
	t.Helper()

	id := uuid.New().String()
	if p.Name == "" {
		p.Name = "Product " + id[:8]
	}
	if p.Price == 0 {
		p.Price = 100
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	variants := []byte("[]")
	if p.Variants != nil {
		var err error
		variants, err = json.Marshal(p.Variants)
		require.NoError(t, err)
	}

	var sellerID interface{}
	if p.SellerID != "" {
		sellerID = p.SellerID
	}

	_, err := db.Exec(`
		INSERT INTO products (
			id, name, description, price, stock, sku, seller_id, category_id, sub_category_id,
			is_approved, is_featured, is_discover, is_recommended, num_reviews, variants,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, p.Name, p.Description, p.Price, p.Stock, p.SKU, sellerID, p.CategoryID, p.SubCategoryID,
		p.IsApproved, p.IsFeatured, p.IsDiscover, p.IsRecommended, p.NumReviews, string(variants),
		p.UpdatedAt, p.UpdatedAt)
	require.NoError(t, err)
	return id
}

// CreateListing inserts a seller listing and returns its id
func CreateListing(t *testing.T, db *sql.DB, sellerID, productID string, price float64, listed bool) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO seller_products (id, seller_id, product_id, seller_price, is_listed)
		VALUES (?, ?, ?, ?, ?)
	`, id, sellerID, productID, price, listed)
	require.NoError(t, err)
	return id
}

// CountRows returns the number of rows in table matching where
func CountRows(t *testing.T, db *sql.DB, table, where string, args ...interface{}) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var count int
	require.NoError(t, db.QueryRow(query, args...).Scan(&count))
	return count
}

// MintToken signs a token carrying the same claims the auth service issues
func MintToken(t *testing.T, userID, email, name, role string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"name":   name,
		"role":   role,
		"sub":    userID,
		"iat":    now.Unix(),
		"nbf":    now.Unix(),
		"exp":    now.Add(time.Hour).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return token
}
