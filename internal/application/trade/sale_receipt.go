package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrReceiptUnavailable is returned when no receipt printer is configured
var ErrReceiptUnavailable = shared.NewDomainError("RECEIPT_UNAVAILABLE", "Receipt printing is not configured")

// ReceiptLine is one printed line of a receipt
type ReceiptLine struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// ReceiptData is everything printed on a sale receipt
type ReceiptData struct {
	ShopName      string
	Reference     string
	SaleDate      time.Time
	CustomerName  string
	Lines         []ReceiptLine
	Total         decimal.Decimal
	IsPaid        bool
	PaymentMethod string
	Notes         string
}

// ReceiptDocument is a rendered receipt
type ReceiptDocument struct {
	Name        string
	ContentType string
	Body        []byte
}

// ReceiptPrinter renders receipts
type ReceiptPrinter interface {
	Print(ctx context.Context, data ReceiptData) (*ReceiptDocument, error)
}

// SetReceiptPrinter enables receipt printing
func (s *SaleService) SetReceiptPrinter(printer ReceiptPrinter) {
	s.printer = printer
}

// Receipt renders the receipt of a sale. Sale dates print in shop local time.
func (s *SaleService) Receipt(ctx context.Context, shopID, saleID uuid.UUID) (*ReceiptDocument, error) {
	if s.printer == nil {
		return nil, ErrReceiptUnavailable
	}
	sale, err := s.GetSale(ctx, shopID, saleID)
	if err != nil {
		return nil, err
	}

	data := ReceiptData{
		Reference:     sale.Reference,
		SaleDate:      sale.SaleDate.In(s.location),
		CustomerName:  sale.CustomerName,
		Total:         sale.TotalAmount,
		IsPaid:        sale.IsPaid,
		PaymentMethod: sale.PaymentMethod,
		Notes:         sale.Notes,
		Lines:         make([]ReceiptLine, len(sale.Lines)),
	}
	if sh, err := s.repos.Shops().FindByID(ctx, shopID); err == nil {
		data.ShopName = sh.Name
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	for i, line := range sale.Lines {
		data.Lines[i] = ReceiptLine{
			Name:      line.ItemName,
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		}
	}

	doc, err := s.printer.Print(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to print receipt: %w", err)
	}
	return doc, nil
}
