package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/trade"
	"github.com/duka/backend/internal/infrastructure/export"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxExportRows caps a single export
const maxExportRows = 10000

const formatPDF = "pdf"

// ErrPrintUnavailable is returned for a PDF export when no table printer is configured
var ErrPrintUnavailable = shared.NewDomainError("PRINT_UNAVAILABLE", "Printing is not configured")

// TableTotal is a labelled amount printed under a table
type TableTotal struct {
	Label string
	Value decimal.Decimal
}

// TableDocument is a titled table for printing. Name is the file name
// without extension.
type TableDocument struct {
	Name     string
	Title    string
	Subtitle string
	Table    export.Table
	Totals   []TableTotal
}

// TablePrinter renders tabular documents
type TablePrinter interface {
	PrintTable(ctx context.Context, doc TableDocument) (*export.File, error)
}

// SetArchiver enables archiving a copy of every export
func (s *SaleService) SetArchiver(archiver export.Archiver) {
	s.archiver = archiver
}

// SetTablePrinter enables PDF exports
func (s *SaleService) SetTablePrinter(printer TablePrinter) {
	s.tables = printer
}

// ExportSales renders the filtered sales as CSV, XLSX or PDF. Every row
// carries the sale's profit.
func (s *SaleService) ExportSales(ctx context.Context, shopID uuid.UUID, filter SaleListFilter, format string) (*export.File, error) {
	pdf := strings.EqualFold(strings.TrimSpace(format), formatPDF)
	var f export.Format
	if !pdf {
		var err error
		if f, err = export.ParseFormat(format); err != nil {
			return nil, shared.NewDomainError("INVALID_FORMAT", err.Error())
		}
	} else if s.tables == nil {
		return nil, ErrPrintUnavailable
	}
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	domainFilter.Page = 1
	domainFilter.PageSize = maxExportRows
	domainFilter.WithLines = true

	sales, _, err := s.repos.Sales().FindAll(ctx, shopID, domainFilter)
	if err != nil {
		return nil, err
	}
	names, err := s.customerNames(ctx, shopID, sales)
	if err != nil {
		return nil, err
	}

	var allocator *report.ProfitAllocator
	if s.profit != nil {
		allocator = s.profit.Memoized(sales)
	}
	table := export.Table{
		Sheet:   "Sales",
		Headers: []string{"Reference", "Date", "Customer", "Total", "Profit", "Paid", "Payment Method", "Notes"},
		Rows:    make([][]any, 0, len(sales)),
	}
	total, profit := decimal.Zero, decimal.Zero
	for i := range sales {
		sale := &sales[i]
		customer := "Walk-in"
		if sale.CustomerID != nil {
			customer = names[*sale.CustomerID]
		}
		saleProfit := decimal.Zero
		if allocator != nil {
			saleProfit = allocator.Profit(ctx, sale)
		}
		total = total.Add(sale.TotalAmount)
		profit = profit.Add(saleProfit)
		table.Rows = append(table.Rows, []any{
			sale.Reference(),
			sale.SaleDate.In(s.location),
			customer,
			sale.TotalAmount,
			saleProfit,
			sale.IsPaid,
			string(sale.PaymentMethod),
			sale.Notes,
		})
	}

	name := fmt.Sprintf("sales-%s", s.now().In(s.location).Format("20060102-150405"))
	var file *export.File
	if pdf {
		file, err = s.tables.PrintTable(ctx, TableDocument{
			Name:     name,
			Title:    "Sales",
			Subtitle: exportPeriod(filter),
			Table:    table,
			Totals: []TableTotal{
				{Label: "Total sales", Value: total},
				{Label: "Total profit", Value: profit},
			},
		})
	} else {
		file, err = export.Render(name, f, table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render sales export: %w", err)
	}
	s.archive(ctx, shopID, file)
	return file, nil
}

func exportPeriod(filter SaleListFilter) string {
	switch {
	case filter.From != "" && filter.To != "":
		return filter.From + " to " + filter.To
	case filter.From != "":
		return "From " + filter.From
	case filter.To != "":
		return "Until " + filter.To
	}
	return "All dates"
}

func (s *SaleService) customerNames(ctx context.Context, shopID uuid.UUID, sales []trade.Sale) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, sale := range sales {
		if sale.CustomerID != nil && !seen[*sale.CustomerID] {
			seen[*sale.CustomerID] = true
			ids = append(ids, *sale.CustomerID)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	customers, err := s.repos.Customers().FindByIDs(ctx, shopID, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	return names, nil
}

// archive stores a copy of the export; failures are logged, not returned
func (s *SaleService) archive(ctx context.Context, shopID uuid.UUID, file *export.File) {
	if s.archiver == nil {
		return
	}
	key, err := s.archiver.Archive(ctx, shopID, file)
	if err != nil {
		s.logger.Warn("Failed to archive export", zap.String("file", file.Name), zap.Error(err))
		return
	}
	s.logger.Info("Export archived", zap.String("file", file.Name), zap.String("key", key))
}
