package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/duka/backend/internal/application/trade"
	"github.com/duka/backend/internal/domain/shared/valueobject"
	"github.com/duka/backend/internal/infrastructure/export"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const tableTemplate = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title>
<style>
@page { size: A4 landscape; margin: 10mm; }
body { font-family: sans-serif; font-size: 10px; margin: 0; }
h1 { font-size: 16px; margin: 0; }
.sub { color: #555; margin: 2px 0 8px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #bbb; padding: 3px 5px; text-align: left; }
th { background: #eee; }
td.num { text-align: right; white-space: nowrap; }
table.totals { width: auto; margin-top: 8px; }
table.totals td { border: none; font-weight: bold; }
</style></head>
<body>
<h1>{{.Title}}</h1>
{{if .Subtitle}}<div class="sub">{{.Subtitle}}</div>{{end}}
<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td{{if .Numeric}} class="num"{{end}}>{{.Text}}</td>{{end}}</tr>
{{else}}<tr><td colspan="{{len .Headers}}">No records</td></tr>
{{end}}</table>
{{if .Totals}}<table class="totals">{{range .Totals}}<tr><td>{{.Label}}</td><td class="num">{{.Value}}</td></tr>{{end}}</table>{{end}}
</body></html>`

type tableCell struct {
	Text    string
	Numeric bool
}

type tableTotal struct {
	Label string
	Value string
}

type tableView struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]tableCell
	Totals   []tableTotal
}

// TablePrinter implements trade.TablePrinter. Like ReceiptPrinter it falls
// back to HTML when no PDF renderer is configured.
type TablePrinter struct {
	tmpl     *template.Template
	pdf      PDFRenderer
	currency valueobject.Currency
	logger   *zap.Logger
}

// NewTablePrinter creates a printer for tabular documents; pdf may be nil
func NewTablePrinter(pdf PDFRenderer, currency string, logger *zap.Logger) *TablePrinter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TablePrinter{
		tmpl:     template.Must(template.New("table").Parse(tableTemplate)),
		pdf:      pdf,
		currency: valueobject.Currency(currency),
		logger:   logger,
	}
}

// RenderHTML renders the document as a printable HTML page
func (p *TablePrinter) RenderHTML(doc trade.TableDocument) (string, error) {
	view := tableView{
		Title:    doc.Title,
		Subtitle: doc.Subtitle,
		Headers:  doc.Table.Headers,
		Rows:     make([][]tableCell, len(doc.Table.Rows)),
		Totals:   make([]tableTotal, len(doc.Totals)),
	}
	for i, row := range doc.Table.Rows {
		cells := make([]tableCell, len(row))
		for j, v := range row {
			cells[j] = p.cell(v)
		}
		view.Rows[i] = cells
	}
	for i, t := range doc.Totals {
		view.Totals[i] = tableTotal{Label: t.Label, Value: valueobject.FormatIn(p.currency, t.Value)}
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render table template", err)
	}
	return buf.String(), nil
}

// PrintTable renders the document to PDF, or HTML without a renderer
func (p *TablePrinter) PrintTable(ctx context.Context, doc trade.TableDocument) (*export.File, error) {
	html, err := p.RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	if p.pdf == nil {
		return &export.File{Name: doc.Name + ".html", ContentType: contentTypeHTML, Body: []byte(html)}, nil
	}
	pdf, err := p.pdf.RenderPDF(ctx, html, A4Landscape)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Table document printed", zap.String("name", doc.Name), zap.Int("rows", len(doc.Table.Rows)))
	return &export.File{Name: doc.Name + ".pdf", ContentType: contentTypePDF, Body: pdf}, nil
}

func (p *TablePrinter) cell(v any) tableCell {
	switch x := v.(type) {
	case nil:
		return tableCell{}
	case decimal.Decimal:
		return tableCell{Text: valueobject.FormatIn(p.currency, x), Numeric: true}
	case time.Time:
		return tableCell{Text: x.Format("02/01/2006 15:04")}
	case bool:
		if x {
			return tableCell{Text: "Yes"}
		}
		return tableCell{Text: "No"}
	case int, int64, float64:
		return tableCell{Text: fmt.Sprint(x), Numeric: true}
	case uuid.UUID:
		return tableCell{Text: x.String()}
	case string:
		return tableCell{Text: x}
	}
	return tableCell{Text: fmt.Sprint(v)}
}

var _ trade.TablePrinter = (*TablePrinter)(nil)
