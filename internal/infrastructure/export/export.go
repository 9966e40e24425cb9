// Package export renders tabular report data as CSV or XLSX files.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheet    = "Sheet1"
	timeLayout      = "2006-01-02 15:04"
)

// ParseFormat parses a format name, defaulting to CSV
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Table is a header row plus data rows. Cell values may be strings, numbers,
// bools, decimals, times, UUIDs or nil.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// File is a rendered export
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Archiver stores a copy of an export and returns its storage key
type Archiver interface {
	Archive(ctx context.Context, shopID uuid.UUID, file *File) (string, error)
}

// Render writes the table in the requested format. name is the file name
// without extension.
func Render(name string, format Format, table Table) (*File, error) {
	switch format {
	case FormatCSV:
		body, err := renderCSV(table)
		if err != nil {
			return nil, err
		}
		return &File{Name: name + ".csv", ContentType: contentTypeCSV, Body: body}, nil
	case FormatXLSX:
		body, err := renderXLSX(table)
		if err != nil {
			return nil, err
		}
		return &File{Name: name + ".xlsx", ContentType: contentTypeXLSX, Body: body}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func renderCSV(table Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Headers); err != nil {
		return nil, err
	}
	record := make([]string, 0, len(table.Headers))
	for _, row := range table.Rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, formatCell(cell))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := table.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for col, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
			return nil, err
		}
	}

	for r, row := range table.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, xlsxValue(value)); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.StringFixed(2)
	case time.Time:
		return val.Format(timeLayout)
	case *uuid.UUID:
		if val == nil {
			return ""
		}
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func xlsxValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.Round(2).InexactFloat64()
	case time.Time:
		return val.Format(timeLayout)
	case uuid.UUID:
		return val.String()
	case *uuid.UUID:
		if val == nil {
			return ""
		}
		return val.String()
	default:
		return val
	}
}
