package middleware_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/middleware"
)

type upload struct {
	field       string
	filename    string
	contentType string
	size        int
}

func multipartRequest(t *testing.T, path string, uploads ...upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("name", "Chair"))
	for _, u := range uploads {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+u.field+`"; filename="`+u.filename+`"`)
		header.Set("Content-Type", u.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte("x"), u.size))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImageUploadMiddleware(t *testing.T) {
	router := gin.New()
	router.POST("/upload", middleware.ImageUploadMiddleware(middleware.ImageUploadConfig{
		Field: "images", MaxFiles: 2, MaxFileSize: 1024,
	}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"files": len(c.Request.MultipartForm.File["images"])})
	})

	tests := []struct {
		name    string
		uploads []upload
		code    int
		message string
	}{
		{"accepts images", []upload{{"images", "a.png", "image/png", 10}, {"images", "b.jpg", "image/jpeg", 10}}, http.StatusOK, ""},
		{"no files", nil, http.StatusOK, ""},
		{"too many files", []upload{{"images", "a.png", "image/png", 1}, {"images", "b.png", "image/png", 1}, {"images", "c.png", "image/png", 1}}, http.StatusBadRequest, "Too many files"},
		{"file too large", []upload{{"images", "big.png", "image/png", 2048}}, http.StatusBadRequest, "File too large: big.png"},
		{"not an image", []upload{{"images", "doc.pdf", "application/pdf", 10}}, http.StatusBadRequest, "Only image files are allowed: doc.pdf"},
		{"unexpected field", []upload{{"avatar", "a.png", "image/png", 10}}, http.StatusBadRequest, "Unexpected file field: avatar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "/upload", tt.uploads...))
			assert.Equal(t, tt.code, w.Code)
			if tt.message != "" {
				body := decode(t, w)
				assert.Equal(t, tt.message, body["message"])
				assert.Equal(t, "/upload", body["route"])
			}
		})
	}

	t.Run("non multipart bodies pass through", func(t *testing.T) {
		plain := gin.New()
		plain.POST("/upload", middleware.ImageUploadMiddleware(middleware.ImageUploadConfig{Field: "images", MaxFiles: 1, MaxFileSize: 10}), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"name":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		plain.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestSecurityMiddleware(t *testing.T) {
	t.Run("SecurityHeaders", func(t *testing.T) {
		router := gin.New()
		router.Use(middleware.SecurityHeadersMiddleware(nil))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		w := serve(router, http.MethodGet, "/ping", "")
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})

	t.Run("RequestTooLarge", func(t *testing.T) {
		router := gin.New()
		router.Use(middleware.SecurityHeadersMiddleware(&middleware.SecurityConfig{MaxRequestSize: 4}))
		router.POST("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		req := httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader("0123456789"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("CORSPreflight", func(t *testing.T) {
		router := gin.New()
		router.Use(middleware.CORSMiddleware())
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		w := serve(router, http.MethodOptions, "/ping", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("RateLimit", func(t *testing.T) {
		router := gin.New()
		router.Use(middleware.RateLimitMiddleware(&middleware.SecurityConfig{RateLimitRequests: 2, RateLimitWindow: time.Hour}))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/ping", "").Code)
		assert.Equal(t, http.StatusNoContent, serve(router, http.MethodGet, "/ping", "").Code)
		w := serve(router, http.MethodGet, "/ping", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("Timeout", func(t *testing.T) {
		router := gin.New()
		router.Use(middleware.TimeoutMiddleware(time.Second))
		router.GET("/ping", func(c *gin.Context) {
			_, ok := c.Request.Context().Deadline()
			c.JSON(http.StatusOK, gin.H{"deadline": ok})
		})

		assert.Equal(t, true, decode(t, serve(router, http.MethodGet, "/ping", ""))["deadline"])
	})

	t.Run("Recovery", func(t *testing.T) {
		router := gin.New()
		router.Use(middleware.Recovery())
		router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

		w := serve(router, http.MethodGet, "/boom", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Server error", body["message"])
		assert.Equal(t, "kaboom", body["error"])
	})
}
