package models

import "time"

// MarsData is the composite record produced by one scrape run. A new value
// is built on every run and replaces whatever was stored before.
type MarsData struct {
	NewsTitle        Field[string]       `json:"news_title"`
	NewsParagraph    Field[string]       `json:"news_paragraph"`
	FeaturedImageURL Field[string]       `json:"featured_image_url"`
	FactsTable       Field[string]       `json:"facts_table"`
	LastModified     time.Time           `json:"last_modified"`
	Hemispheres      Field[[]Hemisphere] `json:"hemispheres"`
}

// Hemisphere is one entry of the hemisphere gallery. Entries have no
// identity beyond their position in the gallery listing.
type Hemisphere struct {
	ImageURL string `json:"image_url"`
	Title    string `json:"title"`
}

// News is the headline pair taken from the first article on the news listing.
type News struct {
	Title     string
	Paragraph string
}
