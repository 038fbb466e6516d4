package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey 는 내부 호출자가 공유 비밀을 담아 보내는 헤더다.
const HeaderAPIKey = "X-API-Key"

var (
	ErrMissingAPIKey = errors.New("missing_api_key")
	ErrInvalidAPIKey = errors.New("Forbidden - Invalid API Key")
)

// ExtractAPIKey extracts the shared secret from the X-API-Key header.
func ExtractAPIKey(c *gin.Context) (string, error) {
	key := c.GetHeader(HeaderAPIKey)
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// ValidAPIKey compares the provided key with the expected secret in constant time.
// An empty secret never matches.
func ValidAPIKey(provided, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

// AbortWithForbidden aborts the request with 403 status and error JSON.
func AbortWithForbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrInvalidAPIKey.Error()})
}
