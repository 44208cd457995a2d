package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

// AuthHandlers contains all authentication-related handlers
type AuthHandlers struct {
	userService *services.UserService
	authService *services.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(userService *services.UserService, authService *services.AuthService) *AuthHandlers {
	return &AuthHandlers{
		userService: userService,
		authService: authService,
	}
}

// AuthData is returned by register and login
type AuthData struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req models.UserRegistration
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthData{User: user, Token: token})
}

// Login handles user authentication
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.UserLogin
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthData{User: user, Token: token})
}

// Me returns the authenticated account
func (h *AuthHandlers) Me(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout revokes the bearer token used for the request
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.authService.BlacklistToken(c.GetString(middleware.ContextToken))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
