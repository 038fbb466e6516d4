package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestExtractAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name        string
		headerValue string
		wantKey     string
		wantErr     error
	}{
		{
			name:    "missing header",
			wantErr: ErrMissingAPIKey,
		},
		{
			name:        "present header",
			headerValue: "secret-123",
			wantKey:     "secret-123",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ginCtx, _ := newTestGinContext(testCase.headerValue)

			key, err := ExtractAPIKey(ginCtx)
			if !errors.Is(err, testCase.wantErr) {
				t.Fatalf("expected error %v, got %v", testCase.wantErr, err)
			}
			if key != testCase.wantKey {
				t.Fatalf("expected key %q, got %q", testCase.wantKey, key)
			}
		})
	}
}

func TestValidAPIKey(t *testing.T) {
	if !ValidAPIKey("s3cret", "s3cret") {
		t.Fatalf("expected matching keys to be valid")
	}
	if ValidAPIKey("s3cret", "other") {
		t.Fatalf("expected different keys to be invalid")
	}
	if ValidAPIKey("", "") {
		t.Fatalf("expected empty secret to never match")
	}
}

func TestAbortWithForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ginCtx, recorder := newTestGinContext("")
	AbortWithForbidden(ginCtx)

	if !ginCtx.IsAborted() {
		t.Fatalf("expected request to be aborted")
	}
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body["error"] != "Forbidden - Invalid API Key" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func newTestGinContext(apiKey string) (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	ginCtx, _ := gin.CreateTestContext(recorder)

	request := httptest.NewRequest(http.MethodPost, "/api/summary", nil)
	if apiKey != "" {
		request.Header.Set(HeaderAPIKey, apiKey)
	}
	ginCtx.Request = request

	return ginCtx, recorder
}
