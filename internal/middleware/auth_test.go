package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
	"marketplace-backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	authService := services.NewAuthService(testhelpers.JWTSecret, 3600)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := gin.New()
	router.GET("/protected", authMiddleware.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID": c.GetString(middleware.ContextUserID),
			"role":   c.GetString(middleware.ContextUserRole),
			"name":   c.GetString(middleware.ContextUserName),
		})
	})
	router.GET("/optional", authMiddleware.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": string(middleware.RoleFromContext(c))})
	})
	router.GET("/admin", authMiddleware.AuthRequired(), authMiddleware.RequireRole(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/catalog", authMiddleware.AuthRequired(), authMiddleware.RequireRoles(models.UserRoleSeller, models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/unguarded", authMiddleware.RequireRole(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	customer := testhelpers.MintToken(t, "user-1", "c@example.com", "Cee", "customer")
	seller := testhelpers.MintToken(t, "user-2", "s@example.com", "Es", "seller")
	admin := testhelpers.MintToken(t, "user-3", "a@example.com", "Ay", "admin")

	t.Run("AuthRequired_ValidToken", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/protected", customer)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "user-1", body["userID"])
		assert.Equal(t, "customer", body["role"])
		assert.Equal(t, "Cee", body["name"])
	})

	t.Run("AuthRequired_NoToken", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Authorization header required", body["message"])
		assert.Equal(t, "/protected", body["route"])
	})

	t.Run("AuthRequired_BadScheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid authorization header format", decode(t, w)["message"])
	})

	t.Run("AuthRequired_InvalidToken", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/protected", "not.a.token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("AuthRequired_RevokedToken", func(t *testing.T) {
		revoked := testhelpers.MintToken(t, "user-9", "r@example.com", "Ar", "customer")
		authService.BlacklistToken(revoked)
		w := serve(router, http.MethodGet, "/protected", revoked)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("OptionalAuth", func(t *testing.T) {
		assert.Equal(t, "", decode(t, serve(router, http.MethodGet, "/optional", ""))["role"])
		assert.Equal(t, "seller", decode(t, serve(router, http.MethodGet, "/optional", seller))["role"])

		w := serve(router, http.MethodGet, "/optional", "garbage")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", decode(t, w)["role"])
	})

	t.Run("RequireRole", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/admin", admin).Code)

		w := serve(router, http.MethodGet, "/admin", seller)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Insufficient permissions", decode(t, w)["message"])
	})

	t.Run("RequireRoles", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/catalog", seller).Code)
		assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/catalog", admin).Code)
		assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/catalog", customer).Code)
	})

	t.Run("RequireRole_WithoutIdentity", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/unguarded", admin)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User not authenticated", decode(t, w)["message"])
	})
}
