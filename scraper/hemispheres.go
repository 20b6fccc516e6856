package scraper

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/redplanet/browser"
	"github.com/use-agent/redplanet/models"
)

// ScrapeHemispheres visits the first HemisphereCount gallery entries in
// listing order and collects each one's full-resolution image and title.
//
// The result is all or nothing: a lookup miss on any entry discards the
// entries already collected and returns an absent result. Navigation and
// click failures are fatal.
func (s *Scraper) ScrapeHemispheres(sess browser.Session) (models.Field[[]models.Hemisphere], error) {
	none := models.None[[]models.Hemisphere]()
	thumbSel := s.cfg.Selectors.HemisphereThumb

	if err := sess.Navigate(s.cfg.HemispheresURL); err != nil {
		return none, err
	}

	entries := make([]models.Hemisphere, 0, s.cfg.HemisphereCount)
	for i := 0; i < s.cfg.HemisphereCount; i++ {
		// Thumbnails are looked up again each time: the previous
		// iteration left and re-entered the index page.
		sess.WaitFor(thumbSel, s.cfg.WaitTimeout)
		thumbs, err := sess.Elements(thumbSel)
		if err != nil {
			return none, err
		}
		if i >= len(thumbs) {
			slog.Debug("hemisphere thumbnail missing", "index", i, "found", len(thumbs))
			return none, nil
		}
		if err := thumbs[i].Click(); err != nil {
			return none, clickError(err, "hemisphere thumbnail")
		}
		sess.WaitFor(s.cfg.Selectors.HemisphereTitle, s.cfg.WaitTimeout)

		doc, err := document(sess)
		if err != nil {
			return none, err
		}
		entry, ok := s.hemisphereEntry(doc)
		if !ok {
			slog.Debug("hemisphere detail incomplete", "index", i)
			return none, nil
		}
		entries = append(entries, entry)

		if err := sess.Back(); err != nil {
			return none, err
		}
	}

	return models.Some(entries), nil
}

// hemisphereEntry reads the download link of the first list item and the
// page heading of a hemisphere detail page.
func (s *Scraper) hemisphereEntry(doc *goquery.Document) (models.Hemisphere, bool) {
	item, ok := first(doc.Selection, s.sel.hemisphereItem)
	if !ok {
		return models.Hemisphere{}, false
	}
	href, ok := firstAttr(item, s.sel.hemisphereLink, "href")
	if !ok {
		return models.Hemisphere{}, false
	}
	title, ok := firstText(doc.Selection, s.sel.hemisphereTitle)
	if !ok {
		return models.Hemisphere{}, false
	}
	return models.Hemisphere{
		ImageURL: absoluteURL(s.cfg.HemispheresURL, href),
		Title:    title,
	}, true
}
