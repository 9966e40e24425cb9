package report

import (
	"iter"
	"sort"
	"time"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultRecentDays is how many dates the unfiltered daily view shows
const DefaultRecentDays = 2

// SaleFact is a sale reduced to what the reports aggregate
type SaleFact struct {
	SaleID   uuid.UUID
	SaleDate time.Time
	Total    decimal.Decimal
	Cost     decimal.Decimal
}

// ExpenseFact is an expenditure on a calendar date
type ExpenseFact struct {
	// Date is a calendar date; only its year, month and day are read
	Date   time.Time
	Amount decimal.Decimal
}

// DaySummary holds the figures of one local calendar date
type DaySummary struct {
	Date        time.Time
	Revenue     decimal.Decimal
	Cost        decimal.Decimal
	Expenditure decimal.Decimal
	NetRevenue  decimal.Decimal
	Profit      decimal.Decimal
	SalesCount  int
}

// SummaryOptions controls the daily summary
type SummaryOptions struct {
	// Limit caps the number of dates yielded; zero yields all
	Limit int
}

// DailySummary groups sales and expenditures by local calendar date, newest first.
// Sales are bucketed by SaleDate in loc. The returned sequence can be ranged
// over any number of times.
func DailySummary(sales []SaleFact, expenses []ExpenseFact, loc *time.Location, opts SummaryOptions) iter.Seq[DaySummary] {
	if loc == nil {
		loc = time.Local
	}
	return func(yield func(DaySummary) bool) {
		days := make(map[string]*DaySummary)
		bucket := func(key string, date time.Time) *DaySummary {
			d, ok := days[key]
			if !ok {
				d = &DaySummary{
					Date:        date,
					Revenue:     decimal.Zero,
					Cost:        decimal.Zero,
					Expenditure: decimal.Zero,
				}
				days[key] = d
			}
			return d
		}

		for _, s := range sales {
			date := shared.LocalDate(s.SaleDate, loc)
			d := bucket(shared.DateKey(date), date)
			d.Revenue = d.Revenue.Add(s.Total)
			d.Cost = d.Cost.Add(s.Cost)
			d.SalesCount++
		}
		for _, e := range expenses {
			date := time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), 0, 0, 0, 0, loc)
			d := bucket(shared.DateKey(date), date)
			d.Expenditure = d.Expenditure.Add(e.Amount)
		}

		keys := make([]string, 0, len(days))
		for k := range days {
			keys = append(keys, k)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))

		for i, k := range keys {
			if opts.Limit > 0 && i >= opts.Limit {
				return
			}
			d := days[k]
			d.NetRevenue = d.Revenue.Sub(d.Expenditure)
			d.Profit = d.NetRevenue.Sub(d.Cost)
			if !yield(*d) {
				return
			}
		}
	}
}

// Totals sums a sequence of day summaries
type Totals struct {
	Revenue     decimal.Decimal
	Cost        decimal.Decimal
	Expenditure decimal.Decimal
	NetRevenue  decimal.Decimal
	Profit      decimal.Decimal
	SalesCount  int
	Days        int
}

// Sum folds the days of a summary into period totals
func Sum(days iter.Seq[DaySummary]) Totals {
	t := Totals{
		Revenue:     decimal.Zero,
		Cost:        decimal.Zero,
		Expenditure: decimal.Zero,
	}
	for d := range days {
		t.Revenue = t.Revenue.Add(d.Revenue)
		t.Cost = t.Cost.Add(d.Cost)
		t.Expenditure = t.Expenditure.Add(d.Expenditure)
		t.SalesCount += d.SalesCount
		t.Days++
	}
	t.NetRevenue = t.Revenue.Sub(t.Expenditure)
	t.Profit = t.NetRevenue.Sub(t.Cost)
	return t
}
