package scraper

import (
	"github.com/use-agent/redplanet/browser"
	"github.com/use-agent/redplanet/models"
)

// ScrapeNews reads the title and teaser of the first article on the news
// listing. Both are needed: if the article block or either field is
// missing the result is absent as a whole.
func (s *Scraper) ScrapeNews(sess browser.Session) (models.Field[models.News], error) {
	none := models.None[models.News]()

	if err := sess.Navigate(s.cfg.NewsURL); err != nil {
		return none, err
	}
	sess.WaitFor(s.cfg.Selectors.NewsBlock, s.cfg.WaitTimeout)

	doc, err := document(sess)
	if err != nil {
		return none, err
	}

	block, ok := first(doc.Selection, s.sel.newsBlock)
	if !ok {
		return none, nil
	}
	title, ok := firstText(block, s.sel.newsTitle)
	if !ok {
		return none, nil
	}
	teaser, ok := firstText(block, s.sel.newsTeaser)
	if !ok {
		return none, nil
	}

	return models.Some(models.News{Title: title, Paragraph: teaser}), nil
}
