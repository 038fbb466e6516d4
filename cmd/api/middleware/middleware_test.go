package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"journal-summary/cmd/api/auth"
	"journal-summary/cmd/api/trace"
)

func newTestEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTrace(), APIKeyAuthMiddleware(secret))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, trace.RequestIDFromContext(c.Request.Context()))
	})
	return r
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		secret     string
		key        string
		wantStatus int
	}{
		{name: "valid key", secret: "s3cret", key: "s3cret", wantStatus: http.StatusOK},
		{name: "wrong key", secret: "s3cret", key: "nope", wantStatus: http.StatusForbidden},
		{name: "missing key", secret: "s3cret", wantStatus: http.StatusForbidden},
		{name: "unconfigured secret", secret: "", key: "", wantStatus: http.StatusForbidden},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r := newTestEngine(testCase.secret)
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if testCase.key != "" {
				req.Header.Set(auth.HeaderAPIKey, testCase.key)
			}
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatus, rec.Code)
		})
	}
}

func TestRequestTraceKeepsIncomingRequestID(t *testing.T) {
	r := newTestEngine("k")
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(auth.HeaderAPIKey, "k")
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
	assert.Equal(t, "abc-123", rec.Body.String())
}

func TestRequestTraceGeneratesRequestID(t *testing.T) {
	r := newTestEngine("k")
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(auth.HeaderAPIKey, "k")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	generated := rec.Header().Get(headerRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())
}
