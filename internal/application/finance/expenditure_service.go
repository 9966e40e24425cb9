package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/duka/backend/internal/domain/finance"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/infrastructure/export"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxExportRows = 10000

// ExpenditureService handles money spent by a shop
type ExpenditureService struct {
	repos    finance.ExpenditureRepository
	location *time.Location
	logger   *zap.Logger
	archiver export.Archiver
	now      func() time.Time
}

// NewExpenditureService creates a new ExpenditureService
func NewExpenditureService(repos finance.ExpenditureRepository, location *time.Location, logger *zap.Logger) *ExpenditureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &ExpenditureService{
		repos:    repos,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// SetArchiver enables archiving a copy of every export
func (s *ExpenditureService) SetArchiver(archiver export.Archiver) {
	s.archiver = archiver
}

// SetClock overrides the time source
func (s *ExpenditureService) SetClock(now func() time.Time) {
	s.now = now
}

// Create records an expenditure; a missing date means today
func (s *ExpenditureService) Create(ctx context.Context, shopID uuid.UUID, req CreateExpenditureRequest) (*ExpenditureResponse, error) {
	date, err := s.expenseDate(req.ExpenseDate)
	if err != nil {
		return nil, err
	}
	expenditure, err := finance.NewExpenditure(shopID, finance.ExpenditureCategory(req.Category), req.Description, req.Amount, date)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Save(ctx, expenditure); err != nil {
		return nil, fmt.Errorf("failed to save expenditure: %w", err)
	}
	s.logger.Info("Expenditure recorded",
		zap.String("shop_id", shopID.String()),
		zap.String("category", string(expenditure.Category)),
		zap.String("amount", expenditure.Amount.StringFixed(2)),
	)
	response := ToExpenditureResponse(expenditure)
	return &response, nil
}

// Update replaces an expenditure's details
func (s *ExpenditureService) Update(ctx context.Context, shopID, id uuid.UUID, req UpdateExpenditureRequest) (*ExpenditureResponse, error) {
	expenditure, err := s.repos.FindByIDForShop(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	date := expenditure.ExpenseDate
	if req.ExpenseDate != "" {
		if date, err = s.expenseDate(req.ExpenseDate); err != nil {
			return nil, err
		}
	}
	if err := expenditure.Update(finance.ExpenditureCategory(req.Category), req.Description, req.Amount, date); err != nil {
		return nil, err
	}
	if err := s.repos.Save(ctx, expenditure); err != nil {
		return nil, fmt.Errorf("failed to save expenditure: %w", err)
	}
	response := ToExpenditureResponse(expenditure)
	return &response, nil
}

// Delete removes an expenditure
func (s *ExpenditureService) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	if _, err := s.repos.FindByIDForShop(ctx, shopID, id); err != nil {
		return err
	}
	return s.repos.Delete(ctx, shopID, id)
}

// List lists expenditures, newest first
func (s *ExpenditureService) List(ctx context.Context, shopID uuid.UUID, filter ExpenditureListFilter) ([]ExpenditureResponse, int64, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	expenditures, total, err := s.repos.FindAll(ctx, shopID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ExpenditureResponse, len(expenditures))
	for i := range expenditures {
		responses[i] = ToExpenditureResponse(&expenditures[i])
	}
	return responses, total, nil
}

// Export renders the filtered expenditures as CSV or XLSX
func (s *ExpenditureService) Export(ctx context.Context, shopID uuid.UUID, filter ExpenditureListFilter, format string) (*export.File, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_FORMAT", err.Error())
	}
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	domainFilter.Page = 1
	domainFilter.PageSize = maxExportRows

	expenditures, _, err := s.repos.FindAll(ctx, shopID, domainFilter)
	if err != nil {
		return nil, err
	}
	table := export.Table{
		Sheet:   "Expenditures",
		Headers: []string{"Date", "Category", "Description", "Amount"},
		Rows:    make([][]any, 0, len(expenditures)),
	}
	for _, e := range expenditures {
		table.Rows = append(table.Rows, []any{
			shared.DateKey(e.ExpenseDate),
			e.Category.DisplayName(),
			e.Description,
			e.Amount,
		})
	}

	name := fmt.Sprintf("expenditures-%s", s.now().In(s.location).Format("20060102-150405"))
	file, err := export.Render(name, f, table)
	if err != nil {
		return nil, fmt.Errorf("failed to render expenditure export: %w", err)
	}
	if s.archiver != nil {
		if key, err := s.archiver.Archive(ctx, shopID, file); err != nil {
			s.logger.Warn("Failed to archive export", zap.String("file", file.Name), zap.Error(err))
		} else {
			s.logger.Info("Export archived", zap.String("file", file.Name), zap.String("key", key))
		}
	}
	return file, nil
}

// expenseDate parses a local YYYY-MM-DD date, defaulting to today
func (s *ExpenditureService) expenseDate(value string) (time.Time, error) {
	if value == "" {
		return shared.LocalDate(s.now(), s.location), nil
	}
	return shared.ParseLocalDate(value, s.location)
}

func (s *ExpenditureService) toDomainFilter(filter ExpenditureListFilter) (finance.ExpenditureFilter, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	from, to, err := shared.LocalDateRange(filter.From, filter.To, s.location)
	if err != nil {
		return finance.ExpenditureFilter{}, err
	}
	// expense dates are stored as civil dates
	if from != nil {
		civil := finance.CivilDate(*from)
		from = &civil
	}
	if to != nil {
		civil := finance.CivilDate(*to)
		to = &civil
	}
	return finance.ExpenditureFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "expense_date",
			OrderDir: "desc",
			Search:   filter.Search,
		},
		From:     from,
		To:       to,
		Category: finance.ExpenditureCategory(filter.Category),
	}, nil
}
