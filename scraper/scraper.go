// Package scraper pulls the Mars news, featured image, facts table and
// hemisphere gallery from their source sites and assembles them into one
// record.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/redplanet/browser"
	"github.com/use-agent/redplanet/config"
	"github.com/use-agent/redplanet/models"
)

// Scraper runs the extraction steps. It holds no browser state between
// runs; every ScrapeAll opens and closes its own session.
type Scraper struct {
	cfg     config.ScraperConfig
	sel     *selectors
	open    browser.Opener
	fetcher Fetcher
	now     func() time.Time
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithFetcher replaces the HTTP fetcher used for the facts page.
func WithFetcher(f Fetcher) Option {
	return func(s *Scraper) { s.fetcher = f }
}

// WithClock replaces the clock used to stamp LastModified.
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

// New validates cfg and returns a Scraper that opens sessions with open.
func New(cfg config.ScraperConfig, open browser.Opener, opts ...Option) (*Scraper, error) {
	if open == nil {
		return nil, errors.New("scraper: nil browser opener")
	}
	if cfg.HemisphereCount < 0 {
		return nil, fmt.Errorf("scraper: negative hemisphere count %d", cfg.HemisphereCount)
	}
	sel, err := compileSelectors(cfg.Selectors)
	if err != nil {
		return nil, fmt.Errorf("scraper: %w", err)
	}

	s := &Scraper{
		cfg:     cfg,
		sel:     sel,
		open:    open,
		fetcher: NewHTTPFetcher(""),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ScrapeAll runs news, featured image, facts and hemispheres in that order
// and returns the assembled record.
//
// The browser session is opened here and closed exactly once before
// returning, whether the run succeeds, fails or panics. Missing page
// elements show up as absent fields; the returned error is reserved for
// failures that abort the run (launch, navigation, click).
func (s *Scraper) ScrapeAll(ctx context.Context) (*models.MarsData, error) {
	start := time.Now()

	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("browser shutdown failed", "error", closeErr)
		}
	}()

	news, err := s.ScrapeNews(sess)
	if err != nil {
		return nil, err
	}
	slog.Info("news scraped", "present", news.OK)

	image, err := s.ScrapeFeaturedImage(sess)
	if err != nil {
		return nil, err
	}
	slog.Info("featured image scraped", "present", image.OK)

	facts := s.ScrapeFacts(ctx)
	slog.Info("facts scraped", "present", facts.OK)

	hemispheres, err := s.ScrapeHemispheres(sess)
	if err != nil {
		return nil, err
	}
	slog.Info("hemispheres scraped", "present", hemispheres.OK, "count", len(hemispheres.Value))

	data := &models.MarsData{
		NewsTitle:        models.None[string](),
		NewsParagraph:    models.None[string](),
		FeaturedImageURL: image,
		FactsTable:       facts,
		LastModified:     s.now(),
		Hemispheres:      hemispheres,
	}
	if n, ok := news.Get(); ok {
		data.NewsTitle = models.Some(n.Title)
		data.NewsParagraph = models.Some(n.Paragraph)
	}

	slog.Info("scrape complete", "duration", time.Since(start).Round(time.Millisecond).String())
	return data, nil
}

// document parses the session's current HTML.
func document(sess browser.Session) (*goquery.Document, error) {
	raw, err := sess.HTML()
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to parse page HTML", err)
	}
	return doc, nil
}

// clickError makes sure a click failure carries an error code.
func clickError(err error, what string) error {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return err
	}
	return models.NewScrapeError(models.ErrCodeActionFailed, "clicking "+what+" failed", err)
}
