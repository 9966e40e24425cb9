package finance

import (
	"strings"
	"time"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenditureCategory classifies money spent by a shop
type ExpenditureCategory string

const (
	ExpenditureCategorySupplies    ExpenditureCategory = "supplies"
	ExpenditureCategoryRent        ExpenditureCategory = "rent"
	ExpenditureCategoryUtilities   ExpenditureCategory = "utilities"
	ExpenditureCategorySalaries    ExpenditureCategory = "salaries"
	ExpenditureCategoryTransport   ExpenditureCategory = "transport"
	ExpenditureCategoryMaintenance ExpenditureCategory = "maintenance"
	ExpenditureCategoryOther       ExpenditureCategory = "other"
)

// AllExpenditureCategories lists the categories in display order
func AllExpenditureCategories() []ExpenditureCategory {
	return []ExpenditureCategory{
		ExpenditureCategorySupplies,
		ExpenditureCategoryRent,
		ExpenditureCategoryUtilities,
		ExpenditureCategorySalaries,
		ExpenditureCategoryTransport,
		ExpenditureCategoryMaintenance,
		ExpenditureCategoryOther,
	}
}

// IsValid checks if the category is known
func (c ExpenditureCategory) IsValid() bool {
	for _, known := range AllExpenditureCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// DisplayName returns the human label for the category
func (c ExpenditureCategory) DisplayName() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Expenditure is money spent by the shop, netted against revenue in reports
type Expenditure struct {
	shared.ShopAggregateRoot
	Category    ExpenditureCategory `gorm:"type:varchar(30);not null;index"`
	Description string              `gorm:"type:varchar(255)"`
	Amount      decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	ExpenseDate time.Time           `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (Expenditure) TableName() string {
	return "expenditures"
}

// NewExpenditure creates an expenditure
func NewExpenditure(shopID uuid.UUID, category ExpenditureCategory, description string, amount decimal.Decimal, expenseDate time.Time) (*Expenditure, error) {
	e := &Expenditure{ShopAggregateRoot: shared.NewShopAggregateRoot(shopID)}
	if err := e.Update(category, description, amount, expenseDate); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the expenditure details
func (e *Expenditure) Update(category ExpenditureCategory, description string, amount decimal.Decimal, expenseDate time.Time) error {
	if category == "" {
		category = ExpenditureCategoryOther
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown expenditure category")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Expenditure amount must be positive")
	}
	if expenseDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}
	e.Category = category
	e.Description = strings.TrimSpace(description)
	e.Amount = amount
	e.ExpenseDate = CivilDate(expenseDate)
	e.Touch()
	return nil
}
