package trade_test

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	apptrade "github.com/duka/backend/internal/application/trade"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/infrastructure/export"
	"github.com/duka/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingTablePrinter struct {
	got apptrade.TableDocument
}

func (p *capturingTablePrinter) PrintTable(ctx context.Context, doc apptrade.TableDocument) (*export.File, error) {
	p.got = doc
	return &export.File{Name: doc.Name + ".pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, nil
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestSaleService_ExportCarriesProfit(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture(t)
	f.sales.SetClock(func() time.Time { return time.Date(2025, 3, 10, 20, 30, 0, 0, time.UTC) })
	pen := testutil.SeedStockItem(t, f.db, f.shopID, "PEN-1", "100", "60", 10)

	f.newSale(t, apptrade.CreateSaleRequest{Items: []apptrade.AddLineItemRequest{{StockItemID: pen.ID, Quantity: 3}}})
	_, debt := f.creditSale(t, pen, 2)
	f.pay(t, debt.ID, 50)

	file, err := f.sales.ExportSales(ctx, f.shopID, apptrade.SaleListFilter{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "sales-20250310-233000.csv", file.Name)

	records := readCSV(t, file.Body)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Reference", "Date", "Customer", "Total", "Profit", "Paid", "Payment Method", "Notes"}, records[0])

	profits := map[string]string{}
	for _, r := range records[1:] {
		profits[r[3]] = r[4]
	}
	assert.Equal(t, "120.00", profits["300.00"], "line sale")
	assert.Equal(t, "20.00", profits["50.00"], "settlement share of the credit sale profit")
}

func TestSaleService_ExportPDF(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture(t)
	f.sales.SetClock(func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, eat) })
	pen := testutil.SeedStockItem(t, f.db, f.shopID, "PEN-1", "100", "60", 10)
	f.newSale(t, apptrade.CreateSaleRequest{Items: []apptrade.AddLineItemRequest{{StockItemID: pen.ID, Quantity: 2}}})
	f.newSale(t, apptrade.CreateSaleRequest{Items: []apptrade.AddLineItemRequest{{StockItemID: pen.ID, Quantity: 1}}})

	_, err := f.sales.ExportSales(ctx, f.shopID, apptrade.SaleListFilter{}, "pdf")
	require.ErrorIs(t, err, apptrade.ErrPrintUnavailable)

	printer := &capturingTablePrinter{}
	f.sales.SetTablePrinter(printer)

	file, err := f.sales.ExportSales(ctx, f.shopID, apptrade.SaleListFilter{}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "sales-20250310-090000.pdf", file.Name)
	assert.Equal(t, "Sales", printer.got.Title)
	assert.Equal(t, "All dates", printer.got.Subtitle)
	require.Len(t, printer.got.Table.Rows, 2)
	require.Len(t, printer.got.Totals, 2)
	assert.True(t, decimal.NewFromInt(300).Equal(printer.got.Totals[0].Value))
	assert.True(t, decimal.NewFromInt(120).Equal(printer.got.Totals[1].Value))
}

func TestSaleService_ExportRejectsUnknownFormat(t *testing.T) {
	f := newSaleFixture(t)
	_, err := f.sales.ExportSales(context.Background(), f.shopID, apptrade.SaleListFilter{}, "docx")
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_FORMAT", ""))
}
