package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/redplanet/config"
	"github.com/use-agent/redplanet/models"
	"github.com/ysmood/gson"
)

// settleTimeout bounds the DOM-stable wait that follows a click.
const settleTimeout = 3 * time.Second

// RodSession is a Session driving a Chromium instance through Rod.
type RodSession struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page // bound to the run context
	raw        *rod.Page // unbound, used for cleanup
	router     *rod.HijackRouter
	navTimeout time.Duration
	closeOnce  sync.Once
	closeErr   error
}

// Launcher returns an Opener that launches a new browser per session.
func Launcher(cfg config.BrowserConfig) Opener {
	return func(ctx context.Context) (Session, error) {
		return Launch(ctx, cfg)
	}
}

// Launch starts a browser, opens a single tab and prepares it for scraping.
func Launch(ctx context.Context, cfg config.BrowserConfig) (*RodSession, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to open page",
			err,
		)
	}

	s := &RodSession{
		launcher:   l,
		browser:    b,
		raw:        page,
		page:       page.Context(ctx),
		navTimeout: cfg.NavigationTimeout,
	}

	// Stealth and hijacking only apply to navigations made after they are
	// installed, so both happen before the first Navigate.
	if cfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}
	if cfg.AcceptLanguage != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": cfg.AcceptLanguage}),
		}.Call(page)
	}
	s.router = setupHijack(page, cfg.BlockedResourceTypes)

	return s, nil
}

// Navigate loads url and waits for the load event.
func (s *RodSession) Navigate(url string) error {
	p := s.timed()
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return categorizeError(err, fmt.Sprintf("navigation to %s failed", url))
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, fmt.Sprintf("waiting for %s to load failed", url))
	}
	return nil
}

// WaitFor polls for selector until it matches or timeout elapses.
func (s *RodSession) WaitFor(selector string, timeout time.Duration) bool {
	p := s.page.Timeout(timeout)
	defer p.CancelTimeout()

	if _, err := p.Element(selector); err != nil {
		slog.Debug("wait for selector elapsed", "selector", selector, "error", err)
		return false
	}
	return true
}

// HTML returns the rendered document.
func (s *RodSession) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", categorizeError(err, "failed to extract page HTML")
	}
	return html, nil
}

// Elements returns the elements currently matching selector.
func (s *RodSession) Elements(selector string) ([]Element, error) {
	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, categorizeError(err, fmt.Sprintf("querying %q failed", selector))
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el, page: s.page}
	}
	return out, nil
}

// Back navigates one step back in history.
func (s *RodSession) Back() error {
	p := s.timed()
	defer p.CancelTimeout()

	if err := p.NavigateBack(); err != nil {
		return categorizeError(err, "navigating back failed")
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, "waiting for previous page failed")
	}
	return nil
}

// Close tears down the hijack router, the tab and the browser process.
// Only the first call does anything.
func (s *RodSession) Close() error {
	s.closeOnce.Do(func() {
		if s.router != nil {
			_ = s.router.Stop()
		}
		var errs []error
		if err := s.raw.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		s.launcher.Kill()
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *RodSession) timed() *rod.Page {
	if s.navTimeout <= 0 {
		return s.page.Timeout(time.Hour)
	}
	return s.page.Timeout(s.navTimeout)
}

type rodElement struct {
	el   *rod.Element
	page *rod.Page
}

// Click clicks the element, then gives the page a moment to settle in case
// the click started a navigation or an animation.
func (e *rodElement) Click() error {
	if err := e.el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return models.NewScrapeError(models.ErrCodeActionFailed, "click failed", err)
	}
	p := e.page.Timeout(settleTimeout)
	defer p.CancelTimeout()
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge after click", "error", err)
	}
	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
