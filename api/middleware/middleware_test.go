package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/use-agent/redplanet/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/scrape", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(IdentityKey))
	})
	return r
}

func post(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/scrape", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth([]string{"alpha", "", "beta"}))

	tests := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "gamma", http.StatusUnauthorized},
		{"prefix of key", "X-API-Key", "alp", http.StatusUnauthorized},
		{"x-api-key", "X-API-Key", "alpha", http.StatusOK},
		{"bearer", "Authorization", "Bearer beta", http.StatusOK},
		{"basic scheme", "Authorization", "Basic beta", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, tt.header, tt.value)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAuthNoKeysIsOpen(t *testing.T) {
	r := newEngine(Auth([]string{""}))
	assert.Equal(t, http.StatusOK, post(r, "", "").Code)
}

func TestRateLimitPerIdentity(t *testing.T) {
	r := newEngine(Auth([]string{"alpha", "beta"}), RateLimit(config.RateLimitConfig{
		RequestsPerSecond: 0.1,
		Burst:             1,
	}))

	assert.Equal(t, http.StatusOK, post(r, "X-API-Key", "alpha").Code)

	w := post(r, "X-API-Key", "alpha")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, post(r, "X-API-Key", "beta").Code, "buckets are per key")
}
