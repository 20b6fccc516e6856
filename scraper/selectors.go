package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/redplanet/config"
)

// selectors holds the compiled form of every selector matched against
// parsed HTML. Selectors that only go to the browser are compiled too, so a
// typo fails at construction instead of halfway through a run.
type selectors struct {
	newsBlock       cascadia.Selector
	newsTitle       cascadia.Selector
	newsTeaser      cascadia.Selector
	featuredImage   cascadia.Selector
	factsTable      cascadia.Selector
	hemisphereItem  cascadia.Selector
	hemisphereLink  cascadia.Selector
	hemisphereTitle cascadia.Selector
}

func compileSelectors(cfg config.Selectors) (*selectors, error) {
	var s selectors
	var browserOnly cascadia.Selector

	for _, c := range []struct {
		name string
		raw  string
		dst  *cascadia.Selector
	}{
		{"news block", cfg.NewsBlock, &s.newsBlock},
		{"news title", cfg.NewsTitle, &s.newsTitle},
		{"news teaser", cfg.NewsTeaser, &s.newsTeaser},
		{"image button", cfg.ImageButton, &browserOnly},
		{"featured image", cfg.FeaturedImage, &s.featuredImage},
		{"facts table", cfg.FactsTable, &s.factsTable},
		{"hemisphere thumbnail", cfg.HemisphereThumb, &browserOnly},
		{"hemisphere item", cfg.HemisphereItem, &s.hemisphereItem},
		{"hemisphere link", cfg.HemisphereLink, &s.hemisphereLink},
		{"hemisphere title", cfg.HemisphereTitle, &s.hemisphereTitle},
	} {
		sel, err := cascadia.Compile(c.raw)
		if err != nil {
			return nil, fmt.Errorf("%s selector %q: %w", c.name, c.raw, err)
		}
		*c.dst = sel
	}
	return &s, nil
}

// first returns the first match of m below sel.
func first(sel *goquery.Selection, m cascadia.Selector) (*goquery.Selection, bool) {
	found := sel.FindMatcher(m).First()
	return found, found.Length() > 0
}

// firstText returns the trimmed text of the first match of m below sel.
func firstText(sel *goquery.Selection, m cascadia.Selector) (string, bool) {
	found, ok := first(sel, m)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(found.Text()), true
}

// firstAttr returns a non-empty attribute of the first match of m below sel.
func firstAttr(sel *goquery.Selection, m cascadia.Selector, attr string) (string, bool) {
	found, ok := first(sel, m)
	if !ok {
		return "", false
	}
	v, ok := found.Attr(attr)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// absoluteURL prefixes base to a site-relative ref. Absolute refs are
// returned unchanged.
func absoluteURL(base, ref string) string {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}
