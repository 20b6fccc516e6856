package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/redplanet/config"
	"github.com/use-agent/redplanet/models"
	"github.com/use-agent/redplanet/storage"
)

type stubRunner struct{ calls int }

func (s *stubRunner) ScrapeAll(context.Context) (*models.MarsData, error) {
	s.calls++
	return &models.MarsData{NewsTitle: models.Some("stub"), LastModified: time.Now()}, nil
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"secret"}
	cfg.RateLimit.RequestsPerSecond = 1
	cfg.RateLimit.Burst = 1
	return cfg
}

func do(r http.Handler, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterOpenRoutes(t *testing.T) {
	run := &stubRunner{}
	r := NewRouter(run, storage.NewMemory(), testConfig(), time.Now())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/health", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/mars", "").Code)

	assert.Equal(t, http.StatusFound, do(r, http.MethodGet, "/scrape", "").Code)
	assert.Equal(t, 1, run.calls)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/mars", "").Code)
}

func TestRouterScrapeRequiresKey(t *testing.T) {
	run := &stubRunner{}
	r := NewRouter(run, storage.NewMemory(), testConfig(), time.Now())

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/v1/scrape", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/v1/scrape", "wrong").Code)
	assert.Equal(t, 0, run.calls)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/scrape", "secret").Code)
	assert.Equal(t, 1, run.calls)
}

func TestRouterScrapeRateLimited(t *testing.T) {
	run := &stubRunner{}
	r := NewRouter(run, storage.NewMemory(), testConfig(), time.Now())

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/scrape", "secret").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/v1/scrape", "secret").Code)
	assert.Equal(t, 1, run.calls)
}
