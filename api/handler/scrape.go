package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/redplanet/models"
	"github.com/use-agent/redplanet/storage"
	"github.com/use-agent/redplanet/webhook"
)

// Runner produces a fresh record. *scraper.Scraper satisfies it.
type Runner interface {
	ScrapeAll(ctx context.Context) (*models.MarsData, error)
}

// Trigger returns a handler for GET /scrape.
//
// It runs a full scrape, replaces the stored record and redirects the
// browser back to the index page. hook may be nil.
func Trigger(run Runner, st storage.Store, hook *webhook.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		if _, timing, err := scrapeAndStore(c.Request.Context(), run, st, hook); err != nil {
			timing.TotalMs = time.Since(totalStart).Milliseconds()
			respondError(c, err, timing)
			return
		}
		c.Redirect(http.StatusFound, "/")
	}
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// Same flow as Trigger, but the new record is returned as JSON.
func Scrape(run Runner, st storage.Store, hook *webhook.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		data, timing, err := scrapeAndStore(c.Request.Context(), run, st, hook)
		timing.TotalMs = time.Since(totalStart).Milliseconds()
		if err != nil {
			respondError(c, err, timing)
			return
		}

		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success: true,
			Data:    data,
			Timing:  timing,
		})
	}
}

// scrapeAndStore runs the scraper, upserts its result and queues the
// webhook. TotalMs is left for the caller to fill.
func scrapeAndStore(ctx context.Context, run Runner, st storage.Store, hook *webhook.Sender) (*models.MarsData, models.TimingInfo, error) {
	var timing models.TimingInfo

	scrapeStart := time.Now()
	data, err := run.ScrapeAll(ctx)
	timing.ScrapeMs = time.Since(scrapeStart).Milliseconds()
	if err != nil {
		slog.Error("scrape failed", "error", err)
		return nil, timing, err
	}

	storeStart := time.Now()
	var prev *models.MarsData
	if hook != nil {
		prev, _ = st.Get(ctx)
	}
	err = st.Upsert(ctx, data)
	timing.StorageMs = time.Since(storeStart).Milliseconds()
	if err != nil {
		slog.Error("storing record failed", "error", err)
		return nil, timing, models.NewScrapeError(models.ErrCodeStorage, "failed to store record", err)
	}

	hook.DeliverAsync(webhook.NewEvent(prev, data))
	return data, timing, nil
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ScrapeResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeActionFailed, models.ErrCodeBrowserCrash:
		return http.StatusBadGateway // 502
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
