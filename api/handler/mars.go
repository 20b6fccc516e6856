package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/redplanet/models"
	"github.com/use-agent/redplanet/render"
	"github.com/use-agent/redplanet/storage"
)

// Index returns a handler for GET /.
//
// Renders the stored record; before the first scrape every section is empty.
func Index(st storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := stored(c.Request.Context(), st)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			respondError(c, err, models.TimingInfo{})
			return
		}

		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := render.Page(c.Writer, data); err != nil {
			_ = c.Error(err)
		}
	}
}

// Mars returns a handler for GET /api/v1/mars.
//
// Query parameter format selects "json" (default) or "markdown".
func Mars(st storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		format := c.DefaultQuery("format", "json")
		if format != "json" && format != "markdown" {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput,
				"format must be json or markdown", nil), models.TimingInfo{})
			return
		}

		storeStart := time.Now()
		data, err := stored(c.Request.Context(), st)
		timing := models.TimingInfo{StorageMs: time.Since(storeStart).Milliseconds()}
		if err != nil {
			timing.TotalMs = time.Since(totalStart).Milliseconds()
			respondError(c, err, timing)
			return
		}

		if format == "markdown" {
			md, err := render.Markdown(data)
			if err != nil {
				respondError(c, err, timing)
				return
			}
			c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
			return
		}

		timing.TotalMs = time.Since(totalStart).Milliseconds()
		c.JSON(http.StatusOK, models.ScrapeResponse{
			Success: true,
			Data:    data,
			Timing:  timing,
		})
	}
}

// stored loads the record, turning an empty store into a NOT_FOUND error.
func stored(ctx context.Context, st storage.Store) (*models.MarsData, error) {
	data, err := st.Get(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, models.NewScrapeError(models.ErrCodeNotFound, "no record scraped yet", err)
	case err != nil:
		return nil, models.NewScrapeError(models.ErrCodeStorage, "failed to load record", err)
	}
	return data, nil
}
