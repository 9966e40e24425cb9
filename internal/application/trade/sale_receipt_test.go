package trade_test

import (
	"context"
	"testing"
	"time"

	apptrade "github.com/duka/backend/internal/application/trade"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPrinter struct {
	got apptrade.ReceiptData
}

func (p *capturingPrinter) Print(ctx context.Context, data apptrade.ReceiptData) (*apptrade.ReceiptDocument, error) {
	p.got = data
	return &apptrade.ReceiptDocument{Name: data.Reference + ".pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, nil
}

func TestSaleService_ReceiptWithoutPrinter(t *testing.T) {
	f := newSaleFixture(t)
	sale := f.newSale(t, apptrade.CreateSaleRequest{})

	_, err := f.sales.Receipt(context.Background(), f.shopID, sale.ID)
	assert.ErrorIs(t, err, apptrade.ErrReceiptUnavailable)
}

func TestSaleService_Receipt(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture(t)
	printer := &capturingPrinter{}
	f.sales.SetReceiptPrinter(printer)

	pen := f.item(t, "PEN-1", 10)
	book := f.item(t, "BOOK-1", 10)
	customer := testutil.SeedCustomer(t, f.db, f.shopID, "Asha", "0712345678")
	at := time.Date(2025, 3, 10, 20, 15, 0, 0, time.UTC)
	sale := f.newSale(t, apptrade.CreateSaleRequest{
		CustomerID: &customer.ID,
		SaleDate:   &at,
		IsPaid:     boolPtr(true),
		Notes:      "asante",
		Items: []apptrade.AddLineItemRequest{
			{StockItemID: pen.ID, Quantity: 2},
			{StockItemID: book.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(450)},
		},
	})

	doc, err := f.sales.Receipt(ctx, f.shopID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)

	data := printer.got
	assert.Equal(t, "Stationery", data.ShopName)
	assert.Equal(t, sale.Reference, data.Reference)
	assert.Equal(t, "Asha", data.CustomerName)
	assert.Equal(t, 23, data.SaleDate.Hour(), "printed in shop time")
	assert.True(t, data.IsPaid)
	assert.Equal(t, "asante", data.Notes)
	assert.True(t, decimal.NewFromInt(1450).Equal(data.Total))
	require.Len(t, data.Lines, 2)

	var lineSum decimal.Decimal
	for _, line := range data.Lines {
		lineSum = lineSum.Add(line.LineTotal)
		if line.SKU == "BOOK-1" {
			assert.True(t, decimal.NewFromInt(450).Equal(line.UnitPrice))
			assert.Equal(t, "Item BOOK-1", line.Name)
		}
	}
	assert.True(t, lineSum.Equal(data.Total))

	_, err = f.sales.Receipt(ctx, f.shopID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
