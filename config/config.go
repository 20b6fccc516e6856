package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Storage   StorageConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 5000
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL used by the browser and the facts fetcher.
	Proxy string

	// Stealth injects anti-bot-detection evasions before the first navigation.
	Stealth bool // default: false

	// NavigationTimeout bounds a single Navigate or Back call.
	NavigationTimeout time.Duration // default: 30s

	// AcceptLanguage is sent with every browser request.
	AcceptLanguage string // default: "en-US,en;q=0.9"

	// BlockedResourceTypes lists resource types to block.
	// default: ["Font", "Media"]
	BlockedResourceTypes []string
}

// ScraperConfig controls which pages are visited and what is pulled from them.
type ScraperConfig struct {
	NewsURL        string // default: "https://redplanetscience.com"
	ImageURL       string // default: "https://spaceimages-mars.com"
	FactsURL       string // default: "https://galaxyfacts-mars.com"
	HemispheresURL string // default: "https://marshemispheres.com/"

	// HemisphereCount is how many gallery thumbnails are visited.
	HemisphereCount int // default: 4

	// WaitTimeout is the best-effort wait for content after a navigation.
	WaitTimeout time.Duration // default: 1s

	// FetchTimeout bounds the facts page HTTP fetch.
	FetchTimeout time.Duration // default: 15s

	// FactsTableClass is the class attribute of the rendered facts table.
	FactsTableClass string // default: "table table-striped"

	Selectors Selectors
}

// Selectors are the CSS selectors each extractor relies on.
type Selectors struct {
	NewsBlock   string
	NewsTitle   string
	NewsTeaser  string
	ImageButton string
	// ImageButtonIndex is the zero-based position of the full-image button.
	ImageButtonIndex int
	FeaturedImage    string
	FactsTable       string
	HemisphereThumb  string
	HemisphereItem   string
	HemisphereLink   string
	HemisphereTitle  string
}

// DefaultSelectors returns the selectors matching the current layout of the
// source sites.
func DefaultSelectors() Selectors {
	return Selectors{
		NewsBlock:        "div.list_text",
		NewsTitle:        "div.content_title",
		NewsTeaser:       "div.article_teaser_body",
		ImageButton:      "button",
		ImageButtonIndex: 1,
		FeaturedImage:    "img.fancybox-image",
		FactsTable:       "table",
		HemisphereThumb:  "a.product-item img",
		HemisphereItem:   "li",
		HemisphereLink:   `a[target="_blank"]`,
		HemisphereTitle:  "h2.title",
	}
}

// StorageConfig controls where the scraped record is persisted.
type StorageConfig struct {
	// DBPath is the SQLite database file. Empty keeps the record in memory.
	DBPath string // default: "redplanet.db"

	// Collection names the single-document collection.
	Collection string // default: "mars"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication on the JSON API.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting of the scrape API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity.
	RequestsPerSecond float64 // default: 0.2

	// Burst is the maximum burst size per identity.
	Burst int // default: 2
}

// WebhookConfig controls the notification sent after each stored scrape.
type WebhookConfig struct {
	// URL receives a POST per stored record. Empty disables notifications.
	URL string

	// Secret signs the body with HMAC-SHA256 when non-empty.
	Secret string

	// Timeout bounds one delivery attempt.
	Timeout time.Duration // default: 10s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("REDPLANET_HOST", "0.0.0.0"),
			Port: envIntOr("REDPLANET_PORT", 5000),
			Mode: envOr("REDPLANET_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("REDPLANET_HEADLESS", true),
			NoSandbox:         envBoolOr("REDPLANET_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("REDPLANET_BROWSER_BIN"),
			Proxy:             os.Getenv("REDPLANET_PROXY"),
			Stealth:           envBoolOr("REDPLANET_STEALTH", false),
			NavigationTimeout: envDurationOr("REDPLANET_NAV_TIMEOUT", 30*time.Second),
			AcceptLanguage:    envOr("REDPLANET_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			BlockedResourceTypes: envSliceOr("REDPLANET_BLOCKED_RESOURCES", []string{
				"Font", "Media",
			}),
		},
		Scraper: ScraperConfig{
			NewsURL:         envOr("REDPLANET_NEWS_URL", "https://redplanetscience.com"),
			ImageURL:        envOr("REDPLANET_IMAGE_URL", "https://spaceimages-mars.com"),
			FactsURL:        envOr("REDPLANET_FACTS_URL", "https://galaxyfacts-mars.com"),
			HemispheresURL:  envOr("REDPLANET_HEMISPHERES_URL", "https://marshemispheres.com/"),
			HemisphereCount: envIntOr("REDPLANET_HEMISPHERE_COUNT", 4),
			WaitTimeout:     envDurationOr("REDPLANET_WAIT_TIMEOUT", time.Second),
			FetchTimeout:    envDurationOr("REDPLANET_FETCH_TIMEOUT", 15*time.Second),
			FactsTableClass: envOr("REDPLANET_FACTS_CLASS", "table table-striped"),
			Selectors:       DefaultSelectors(),
		},
		Storage: StorageConfig{
			DBPath:     envOr("REDPLANET_DB_PATH", "redplanet.db"),
			Collection: envOr("REDPLANET_COLLECTION", "mars"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("REDPLANET_AUTH_ENABLED", false),
			APIKeys: envSliceOr("REDPLANET_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("REDPLANET_RATE_RPS", 0.2),
			Burst:             envIntOr("REDPLANET_RATE_BURST", 2),
		},
		Webhook: WebhookConfig{
			URL:     os.Getenv("REDPLANET_WEBHOOK_URL"),
			Secret:  os.Getenv("REDPLANET_WEBHOOK_SECRET"),
			Timeout: envDurationOr("REDPLANET_WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  envOr("REDPLANET_LOG_LEVEL", "info"),
			Format: envOr("REDPLANET_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
