package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SecurityConfig holds security middleware configuration
type SecurityConfig struct {
	MaxRequestSize    int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

// DefaultSecurityConfig returns default security configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		MaxRequestSize:    32 * 1024 * 1024, // 32MB, room for five 5MB images plus form fields
		RateLimitRequests: 10000,            // Very high for development
		RateLimitWindow:   15 * time.Minute,
		RequestTimeout:    15 * time.Second,
	}
}

// CORSMiddleware allows every origin
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// SecurityHeadersMiddleware sets the standard hardening headers and rejects oversized bodies
func SecurityHeadersMiddleware(config *SecurityConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultSecurityConfig()
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > config.MaxRequestSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"message": "Request body too large",
				"route":   c.Request.URL.Path,
			})
			return
		}

		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")

		c.Next()
	}
}

// ipLimiters hands out one token bucket per client IP
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newIPLimiters(requests int, window time.Duration) *ipLimiters {
	return &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
	}
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware limits each client IP to RateLimitRequests per RateLimitWindow
func RateLimitMiddleware(config *SecurityConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	limiters := newIPLimiters(config.RateLimitRequests, config.RateLimitWindow)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiters.get(clientIP).Allow() {
			log.Printf("🚨 Rate limit exceeded for IP: %s, Path: %s %s", clientIP, c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, please try again later.",
				"route":   c.Request.URL.Path,
			})
			return
		}

		c.Next()
	}
}

// TimeoutMiddleware attaches a deadline to the request context. Services observe it
// through their context-aware store calls and the error mapper answers 503.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger writes one line per request and flags slow ones
func RequestLogger(slowThreshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		prefix := "➡️"
		if duration > slowThreshold {
			prefix = "🐢"
		}
		log.Printf("%s %s %s %d %v", prefix, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	}
}

// ImageUploadConfig bounds a multipart image upload
type ImageUploadConfig struct {
	Field       string
	MaxFiles    int
	MaxFileSize int64
}

// ImageUploadMiddleware validates multipart image uploads before the handler runs:
// file count, per-file size, and an image/* content type.
func ImageUploadMiddleware(config ImageUploadConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Content-Type"), "multipart/form-data") {
			c.Next()
			return
		}

		maxMemory := config.MaxFileSize * int64(config.MaxFiles+1)
		if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
			rejectUpload(c, "Failed to parse multipart form: "+err.Error())
			return
		}

		if c.Request.MultipartForm == nil || c.Request.MultipartForm.File == nil {
			c.Next()
			return
		}

		for field, files := range c.Request.MultipartForm.File {
			if field != config.Field {
				rejectUpload(c, "Unexpected file field: "+field)
				return
			}
			if len(files) > config.MaxFiles {
				rejectUpload(c, "Too many files")
				return
			}
			for _, file := range files {
				if file.Size > config.MaxFileSize {
					rejectUpload(c, "File too large: "+file.Filename)
					return
				}
				if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
					rejectUpload(c, "Only image files are allowed: "+file.Filename)
					return
				}
			}
		}

		c.Next()
	}
}

func rejectUpload(c *gin.Context, message string) {
	log.Printf("❌ Upload rejected on %s: %s", c.Request.URL.Path, message)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"message": message,
		"route":   c.Request.URL.Path,
	})
}

// Recovery logs a panic and answers 500 so the process keeps serving
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("💥 Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Server error",
			"error":   fmt.Sprint(recovered),
		})
	})
}
