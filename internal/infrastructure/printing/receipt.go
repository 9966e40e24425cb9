package printing

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/duka/backend/internal/application/trade"
	"github.com/duka/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeHTML = "text/html; charset=utf-8"
)

const receiptTemplate = `<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Reference}}</title>
<style>
@page { size: 80mm auto; margin: 4mm; }
body { font-family: monospace; font-size: 11px; width: 72mm; margin: 0; }
h1 { font-size: 14px; text-align: center; margin: 0 0 4px; }
.meta, .foot { text-align: center; }
table { width: 100%; border-collapse: collapse; margin: 6px 0; }
td { padding: 1px 0; vertical-align: top; }
td.num { text-align: right; white-space: nowrap; }
tr.total td { border-top: 1px dashed #000; font-weight: bold; padding-top: 3px; }
</style></head>
<body>
<h1>{{if .ShopName}}{{.ShopName}}{{else}}Receipt{{end}}</h1>
<div class="meta">Sale #{{.Reference}}<br>{{date .SaleDate}}{{if .CustomerName}}<br>{{.CustomerName}}{{end}}</div>
<table>
{{range .Lines}}<tr><td colspan="2">{{.Name}}{{if .SKU}} ({{.SKU}}){{end}}</td></tr>
<tr><td>{{.Quantity}} x {{money .UnitPrice}}</td><td class="num">{{money .LineTotal}}</td></tr>
{{end}}<tr class="total"><td>TOTAL</td><td class="num">{{money .Total}}</td></tr>
</table>
<div class="foot">{{if .IsPaid}}PAID{{if .PaymentMethod}} ({{upper .PaymentMethod}}){{end}}{{else}}UNPAID{{end}}{{if .Notes}}<br>{{.Notes}}{{end}}<br>Asante kwa kununua!</div>
</body></html>`

// ReceiptPrinter implements trade.ReceiptPrinter. With a PDF renderer it
// returns PDF, otherwise the HTML document.
type ReceiptPrinter struct {
	tmpl     *template.Template
	pdf      PDFRenderer
	currency string
	logger   *zap.Logger
}

// NewReceiptPrinter creates a printer; pdf may be nil
func NewReceiptPrinter(pdf PDFRenderer, currency string, logger *zap.Logger) *ReceiptPrinter {
	if currency == "" {
		currency = "TZS"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ReceiptPrinter{pdf: pdf, currency: currency, logger: logger}
	p.tmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return valueobject.FormatIn(valueobject.Currency(p.currency), d)
		},
		"date": func(t time.Time) string {
			return t.Format("02/01/2006 15:04")
		},
		"upper": strings.ToUpper,
	}).Parse(receiptTemplate))
	return p
}

// RenderHTML renders the receipt document
func (p *ReceiptPrinter) RenderHTML(data trade.ReceiptData) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render receipt template", err)
	}
	return buf.String(), nil
}

// Print renders the receipt
func (p *ReceiptPrinter) Print(ctx context.Context, data trade.ReceiptData) (*trade.ReceiptDocument, error) {
	html, err := p.RenderHTML(data)
	if err != nil {
		return nil, err
	}
	name := "receipt-" + data.Reference

	if p.pdf == nil {
		return &trade.ReceiptDocument{Name: name + ".html", ContentType: contentTypeHTML, Body: []byte(html)}, nil
	}
	pdf, err := p.pdf.RenderPDF(ctx, html, ReceiptPaper)
	if err != nil {
		return nil, err
	}
	return &trade.ReceiptDocument{Name: name + ".pdf", ContentType: contentTypePDF, Body: pdf}, nil
}

var _ trade.ReceiptPrinter = (*ReceiptPrinter)(nil)
