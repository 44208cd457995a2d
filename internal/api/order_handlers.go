package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/models"
	"marketplace-backend/internal/services"
)

// OrderHandlers handles order placement and history
type OrderHandlers struct {
	orderService *services.OrderService
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(orderService *services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// PlaceOrder handles POST /orders
func (h *OrderHandlers) PlaceOrder(c *gin.Context) {
	var req models.OrderCreation
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListMine handles GET /orders/my
func (h *OrderHandlers) ListMine(c *gin.Context) {
	orders, err := h.orderService.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
