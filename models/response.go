package models

// ScrapeResponse is the response for POST /api/v1/scrape and GET /api/v1/mars.
type ScrapeResponse struct {
	// Success indicates whether the request completed without errors.
	Success bool `json:"success"`

	// Data is the scraped (or stored) record. Nil on failure.
	Data *MarsData `json:"data,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// ScrapeMs is the time spent in the scraper (browser + HTTP fetch).
	ScrapeMs int64 `json:"scrape_ms,omitempty"`

	// StorageMs is the time spent persisting the record.
	StorageMs int64 `json:"storage_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"` // "healthy", "empty" or "degraded"
	Uptime       string `json:"uptime"`
	LastModified string `json:"last_modified,omitempty"`
	Version      string `json:"version"`
}
