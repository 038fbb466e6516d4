package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"journal-summary/cmd/api/trace"
	"journal-summary/config"
)

const headerRequestID = "X-Request-Id"

// RequestTrace는 모든 inbound HTTP 요청에 Request ID를 보장하고,
// 컨텍스트/응답 헤더에 저장한 뒤 요청 완료 로그에 포함시킨다.
// 요청 본문(일기 내용)은 로그에 남기지 않는다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = trace.GenerateID()
		}
		c.Request = c.Request.WithContext(trace.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set(headerRequestID, requestID)

		c.Next()

		config.InfoWithFields("completed request", config.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  requestID,
		})
	}
}
