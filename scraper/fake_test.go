package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/use-agent/redplanet/browser"
	"github.com/use-agent/redplanet/config"
)

const (
	newsURL   = "https://news.test"
	imageURL  = "https://images.test"
	factsURL  = "https://facts.test"
	hemiURL   = "https://hemi.test/"
	fullImage = "https://images.test/#full"
)

const newsPage = `<html><body>
<div class="list_text">
  <div class="list_date">November 1, 2022</div>
  <div class="content_title"> NASA's Perseverance Rover Lands </div>
  <div class="article_teaser_body">The rover touched down safely in Jezero Crater.</div>
</div>
<div class="list_text">
  <div class="content_title">An older story</div>
  <div class="article_teaser_body">Not the first one.</div>
</div>
</body></html>`

const imagePage = `<html><body>
<button class="btn">Home</button>
<button class="btn btn-outline-light">FULL IMAGE</button>
<img class="headerimage fade-in" src="image/featured/mars3.jpg">
</body></html>`

const fullImagePage = `<html><body>
<button class="btn">Home</button>
<button class="btn btn-outline-light">FULL IMAGE</button>
<div class="fancybox-content"><img class="fancybox-image" src="image/featured/mars2.jpg"></div>
</body></html>`

const factsPage = `<html><body>
<table class="table">
  <thead><tr><th>Mars - Earth Comparison</th><th>Mars</th><th>Earth</th></tr></thead>
  <tbody>
    <tr><td>Diameter:</td><td>6,779 km</td><td>12,742 km</td></tr>
    <tr><td>Mass:</td><td>6.39 × 10^23 kg</td><td>5.97 × 10^24 kg</td></tr>
    <tr><td>Moons:</td><td>2</td><td>1</td></tr>
  </tbody>
</table>
<table><tr><td>Second</td><td>table</td><td>ignored</td></tr></table>
</body></html>`

var hemispheres = []struct {
	page  string
	title string
	image string
}{
	{"https://hemi.test/cerberus.html", "Cerberus Hemisphere Enhanced", "images/full_cerberus.jpg"},
	{"https://hemi.test/schiaparelli.html", "Schiaparelli Hemisphere Enhanced", "images/full_schiaparelli.jpg"},
	{"https://hemi.test/syrtis.html", "Syrtis Major Hemisphere Enhanced", "images/full_syrtis.jpg"},
	{"https://hemi.test/valles.html", "Valles Marineris Hemisphere Enhanced", "images/full_valles.jpg"},
}

func hemisphereDetail(title, image string) string {
	return `<html><body>
<div class="downloads"><ul>
  <li><a target="_blank" href="` + image + `">Sample</a></li>
  <li><a target="_blank" href="` + image + `.tif">Original</a></li>
</ul></div>
<h2 class="title">` + title + `</h2>
</body></html>`
}

// fakeSite is an in-memory web: pages by URL plus, per page and selector,
// the URL each matching element leads to when clicked.
type fakeSite struct {
	pages    map[string]string
	targets  map[string]map[string][]string
	navErr   map[string]error
	clickErr error
	backErr  error
}

func newFakeSite() *fakeSite {
	site := &fakeSite{
		pages: map[string]string{
			newsURL:   newsPage,
			imageURL:  imagePage,
			fullImage: fullImagePage,
			hemiURL:   `<html><body><div class="collapsible results"></div></body></html>`,
		},
		targets: map[string]map[string][]string{
			imageURL: {"button": {imageURL, fullImage}},
			hemiURL:  {"a.product-item img": nil},
		},
		navErr: map[string]error{},
	}
	for _, h := range hemispheres {
		site.pages[h.page] = hemisphereDetail(h.title, h.image)
		site.targets[hemiURL]["a.product-item img"] = append(site.targets[hemiURL]["a.product-item img"], h.page)
	}
	return site
}

type fakeSession struct {
	site    *fakeSite
	history []string
	closed  int
	panicOn string
}

func (s *fakeSession) current() string {
	if len(s.history) == 0 {
		return ""
	}
	return s.history[len(s.history)-1]
}

func (s *fakeSession) Navigate(url string) error {
	if url == s.panicOn {
		panic("renderer crashed")
	}
	if err := s.site.navErr[url]; err != nil {
		return err
	}
	s.history = append(s.history, url)
	return nil
}

func (s *fakeSession) WaitFor(string, time.Duration) bool { return true }

func (s *fakeSession) HTML() (string, error) {
	return s.site.pages[s.current()], nil
}

func (s *fakeSession) Elements(selector string) ([]browser.Element, error) {
	targets := s.site.targets[s.current()][selector]
	out := make([]browser.Element, len(targets))
	for i, target := range targets {
		out[i] = &fakeElement{sess: s, target: target}
	}
	return out, nil
}

func (s *fakeSession) Back() error {
	if s.site.backErr != nil {
		return s.site.backErr
	}
	if len(s.history) > 1 {
		s.history = s.history[:len(s.history)-1]
	}
	return nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeElement struct {
	sess   *fakeSession
	target string
}

func (e *fakeElement) Click() error {
	if e.sess.site.clickErr != nil {
		return e.sess.site.clickErr
	}
	if e.target != e.sess.current() {
		e.sess.history = append(e.sess.history, e.target)
	}
	return nil
}

type fetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

func staticFetcher(body string) Fetcher {
	return fetcherFunc(func(context.Context, string) ([]byte, error) {
		return []byte(body), nil
	})
}

func failingFetcher() Fetcher {
	return fetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, errors.New("connection refused")
	})
}

func testConfig() config.ScraperConfig {
	return config.ScraperConfig{
		NewsURL:         newsURL,
		ImageURL:        imageURL,
		FactsURL:        factsURL,
		HemispheresURL:  hemiURL,
		HemisphereCount: 4,
		WaitTimeout:     time.Millisecond,
		FetchTimeout:    time.Second,
		FactsTableClass: "table table-striped",
		Selectors:       config.DefaultSelectors(),
	}
}

func openerFor(sess *fakeSession) browser.Opener {
	return func(context.Context) (browser.Session, error) {
		return sess, nil
	}
}

// newTestScraper wires a Scraper to a fresh fake session over site.
func newTestScraper(t *testing.T, site *fakeSite, fetcher Fetcher, opts ...Option) (*Scraper, *fakeSession) {
	t.Helper()
	sess := &fakeSession{site: site}
	opts = append([]Option{WithFetcher(fetcher)}, opts...)
	s, err := New(testConfig(), openerFor(sess), opts...)
	require.NoError(t, err)
	return s, sess
}
