package scraper

import (
	"fmt"

	"github.com/use-agent/redplanet/browser"
	"github.com/use-agent/redplanet/models"
)

// ScrapeFeaturedImage opens the full-size featured image and returns its
// absolute URL.
//
// The full-image control is picked by position among the page's buttons.
// A missing button or a failed click is fatal; only a missing image
// element or src attribute yields an absent result.
func (s *Scraper) ScrapeFeaturedImage(sess browser.Session) (models.Field[string], error) {
	none := models.None[string]()

	if err := sess.Navigate(s.cfg.ImageURL); err != nil {
		return none, err
	}

	idx := s.cfg.Selectors.ImageButtonIndex
	buttons, err := sess.Elements(s.cfg.Selectors.ImageButton)
	if err != nil {
		return none, err
	}
	if idx < 0 || idx >= len(buttons) {
		return none, models.NewScrapeError(
			models.ErrCodeActionFailed,
			fmt.Sprintf("full image button %d not found, page has %d", idx, len(buttons)),
			nil,
		)
	}
	if err := buttons[idx].Click(); err != nil {
		return none, clickError(err, "full image button")
	}
	sess.WaitFor(s.cfg.Selectors.FeaturedImage, s.cfg.WaitTimeout)

	doc, err := document(sess)
	if err != nil {
		return none, err
	}

	src, ok := firstAttr(doc.Selection, s.sel.featuredImage, "src")
	if !ok {
		return none, nil
	}
	return models.Some(absoluteURL(s.cfg.ImageURL, src)), nil
}
