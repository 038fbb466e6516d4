package middleware

import (
	"github.com/gin-gonic/gin"

	"journal-summary/cmd/api/auth"
	"journal-summary/config"
)

// APIKeyAuthMiddleware 는 X-API-Key 헤더가 설정된 공유 비밀과 일치하는지 확인한다.
func APIKeyAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := auth.ExtractAPIKey(c)
		if err != nil || !auth.ValidAPIKey(key, secret) {
			config.Logger.Warnf("rejected request to %s: invalid api key", c.Request.URL.Path)
			auth.AbortWithForbidden(c)
			return
		}
		c.Next()
	}
}
