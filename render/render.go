// Package render presents a scraped record as an HTML page or as Markdown.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/use-agent/redplanet/models"
)

//go:embed templates/index.html
var templateFS embed.FS

// Templates holds the parsed page templates. "index.html" is the full page
// and "export" is the document converted to Markdown.
var Templates = template.Must(
	template.New("").Funcs(template.FuncMap{
		// The facts fragment is produced by our own table renderer.
		"trusted": func(s string) template.HTML { return template.HTML(s) },
	}).ParseFS(templateFS, "templates/index.html"),
)

var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// Page writes the full HTML page for data. A nil data renders the page with
// every section empty.
func Page(w io.Writer, data *models.MarsData) error {
	if data == nil {
		data = &models.MarsData{}
	}
	return Templates.ExecuteTemplate(w, "index.html", data)
}

// Markdown renders data as a Markdown document. Sections for absent fields
// are left out.
func Markdown(data *models.MarsData) (string, error) {
	if data == nil {
		data = &models.MarsData{}
	}
	var buf bytes.Buffer
	if err := Templates.ExecuteTemplate(&buf, "export", data); err != nil {
		return "", err
	}
	return markdownConverter.ConvertString(buf.String())
}
