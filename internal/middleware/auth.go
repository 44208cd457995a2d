package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

// Context keys set by the auth middleware
const (
	ContextUserID    = "userID"
	ContextUserRole  = "userRole"
	ContextUserEmail = "userEmail"
	ContextUserName  = "userName"
	ContextToken     = "token"
)

// AuthMiddleware contains the auth service for token validation
type AuthMiddleware struct {
	authService *services.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"message": message,
		"route":   c.Request.URL.Path,
	})
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func (m *AuthMiddleware) setClaims(c *gin.Context, token string) error {
	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		return err
	}
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserRole, claims.Role)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextUserName, claims.Name)
	c.Set(ContextToken, token)
	return nil
}

// AuthRequired is a middleware that checks for valid JWT token
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			unauthorized(c, "Authorization header required")
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		if err := m.setClaims(c, token); err != nil {
			unauthorized(c, "Invalid token: "+err.Error())
			return
		}

		c.Next()
	}
}

// OptionalAuth sets the caller identity when a valid token is present and
// otherwise lets the request through anonymously
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			_ = m.setClaims(c, token)
		}
		c.Next()
	}
}

// RoleFromContext returns the caller's role, or "" for an anonymous caller
func RoleFromContext(c *gin.Context) models.UserRole {
	role, err := models.ParseUserRole(c.GetString(ContextUserRole))
	if err != nil {
		return ""
	}
	return role
}

// hasRole matches the caller's role against the allowed set
func hasRole(role models.UserRole, allowed []models.UserRole) bool {
	if !role.IsValid() {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// RequireRole is a middleware that checks if the user has a specific role
func (m *AuthMiddleware) RequireRole(requiredRole models.UserRole) gin.HandlerFunc {
	return m.RequireRoles(requiredRole)
}

// RequireRoles is a middleware that checks if the user has one of the specified roles
func (m *AuthMiddleware) RequireRoles(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserID) == "" {
			unauthorized(c, "User not authenticated")
			return
		}

		if !hasRole(RoleFromContext(c), requiredRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Insufficient permissions",
				"route":   c.Request.URL.Path,
			})
			return
		}

		c.Next()
	}
}
