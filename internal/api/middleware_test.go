package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func triggerRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/jobs/run", RequireJobSecret(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestRequireJobSecret(t *testing.T) {
	r := triggerRouter("topsecret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid secret", "topsecret", http.StatusOK},
		{"wrong secret", "nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/jobs/run", nil)
			if tt.header != "" {
				req.Header.Set("X-Job-Secret", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestRequireJobSecretDisabledWhenEmpty(t *testing.T) {
	r := triggerRouter("")

	req := httptest.NewRequest(http.MethodPost, "/jobs/run", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with empty secret configured, got %d", w.Code)
	}
}
