package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/redplanet/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Column names given to the three facts columns. Description is the index.
const (
	ColumnDescription = "Description"
	ColumnMars        = "Mars"
	ColumnEarth       = "Earth"
)

// FactRow is one comparison row, keyed by its description.
type FactRow struct {
	Description string
	Mars        string
	Earth       string
}

// FactsTable is the Mars/Earth comparison table indexed by description.
type FactsTable struct {
	Rows []FactRow
}

// ScrapeFacts fetches the facts page over plain HTTP and renders its first
// table as an HTML fragment. It does not use the browser session. Every
// failure, including the fetch itself, yields an absent result.
func (s *Scraper) ScrapeFacts(ctx context.Context) models.Field[string] {
	none := models.None[string]()

	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	body, err := s.fetcher.Fetch(ctx, s.cfg.FactsURL)
	if err != nil {
		slog.Warn("facts fetch failed", "url", s.cfg.FactsURL, "error", err)
		return none
	}

	table, ok := ParseFactsTable(body, s.sel.factsTable)
	if !ok {
		return none
	}

	fragment, err := table.HTML(s.cfg.FactsTableClass)
	if err != nil {
		slog.Warn("facts render failed", "error", err)
		return none
	}
	return models.Some(fragment)
}

// ParseFactsTable reads the first table matched by m in body. Leading
// header rows (inside thead, or made only of th cells) are dropped and
// every remaining row must have exactly three cells.
func ParseFactsTable(body []byte, m cascadia.Selector) (*FactsTable, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, false
	}
	tbl, ok := first(doc.Selection, m)
	if !ok {
		return nil, false
	}

	var (
		rows     []FactRow
		valid    = true
		inHeader = true
	)
	tbl.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		// Rows of nested tables belong to those tables.
		if tr.Closest("table").Get(0) != tbl.Get(0) {
			return true
		}
		cells := tr.ChildrenFiltered("td, th")
		if cells.Length() == 0 {
			return true
		}
		if inHeader && (tr.ParentsFiltered("thead").Length() > 0 || cells.Length() == cells.Filter("th").Length()) {
			return true
		}
		inHeader = false

		if cells.Length() != 3 {
			valid = false
			return false
		}
		rows = append(rows, FactRow{
			Description: cellText(cells.Eq(0)),
			Mars:        cellText(cells.Eq(1)),
			Earth:       cellText(cells.Eq(2)),
		})
		return true
	})

	if !valid || len(rows) == 0 {
		return nil, false
	}
	return &FactsTable{Rows: rows}, true
}

// HTML renders the table in the same shape a dataframe indexed by
// Description renders to: a column header row, an index-name row, then one
// row per fact with the description as a row header.
func (t *FactsTable) HTML(class string) (string, error) {
	classes := "dataframe"
	if class != "" {
		classes += " " + class
	}
	table := element(atom.Table,
		html.Attribute{Key: "border", Val: "1"},
		html.Attribute{Key: "class", Val: classes},
	)

	thead := element(atom.Thead)
	columns := element(atom.Tr, html.Attribute{Key: "style", Val: "text-align: right;"})
	appendCells(columns, atom.Th, "", ColumnMars, ColumnEarth)
	index := element(atom.Tr)
	appendCells(index, atom.Th, ColumnDescription, "", "")
	thead.AppendChild(columns)
	thead.AppendChild(index)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, r := range t.Rows {
		tr := element(atom.Tr)
		appendCells(tr, atom.Th, r.Description)
		appendCells(tr, atom.Td, r.Mars, r.Earth)
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)

	var buf bytes.Buffer
	if err := html.Render(&buf, table); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func appendCells(tr *html.Node, a atom.Atom, texts ...string) {
	for _, text := range texts {
		cell := element(a)
		if text != "" {
			cell.AppendChild(&html.Node{Type: html.TextNode, Data: text})
		}
		tr.AppendChild(cell)
	}
}

// cellText collapses runs of whitespace inside a cell to single spaces.
func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
