package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// CacheControl marks successful responses of public listings as cacheable
// by browsers and shared caches for maxAgeSeconds.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", maxAgeSeconds)
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Header("Vary", "Accept-Encoding")
		c.Next()
	}
}

// NoStore disables caching for identity-bound responses.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
