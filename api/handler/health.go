package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/redplanet/models"
	"github.com/use-agent/redplanet/storage"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status is "empty" until the first record has been stored.
func Health(st storage.Store, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		}

		data, err := st.Get(c.Request.Context())
		switch {
		case err == nil:
			resp.LastModified = data.LastModified.UTC().Format(time.RFC3339)
		case errors.Is(err, storage.ErrNotFound):
			resp.Status = "empty"
		default:
			resp.Status = "degraded"
		}

		c.JSON(http.StatusOK, resp)
	}
}
