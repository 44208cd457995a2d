package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/middleware"
	"marketplace-backend/internal/services"
)

// respondError maps a service error onto the status code and body shape clients expect
func respondError(c *gin.Context, err error) {
	route := c.Request.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(c.Request.Context().Err(), context.DeadlineExceeded) {
		log.Printf("⏱️ Request timed out: %s %s", c.Request.Method, route)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Server timeout, please try again."})
		return
	}

	switch services.KindOf(err) {
	case services.KindNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": services.MessageOf(err), "route": route})
	case services.KindBadRequest:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": services.MessageOf(err), "route": route})
	case services.KindForbidden:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": services.MessageOf(err), "route": route})
	case services.KindConflict:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": services.MessageOf(err), "route": route})
	case services.KindUnauthorized:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": services.MessageOf(err), "route": route})
	case services.KindUpstream:
		cause := err
		if unwrapped := errors.Unwrap(err); unwrapped != nil {
			cause = unwrapped
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": services.MessageOf(err), "error": cause.Error()})
	default:
		log.Printf("❌ %s %s failed: %v", c.Request.Method, route, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
	}
}

// badRequest answers 400 with the standard body
func badRequest(c *gin.Context, message string) {
	respondError(c, services.BadRequest(message))
}

// bindJSON decodes the request body into dst, answering 400 on malformed input
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return false
	}
	return true
}

// bindStrictJSON decodes the body and rejects any key the destination does not declare
func bindStrictJSON(c *gin.Context, dst interface{}) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return false
	}
	return true
}

// currentUserID returns the authenticated caller's id
func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
