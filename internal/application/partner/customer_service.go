package partner

import (
	"context"
	"time"

	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/partner"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Phone   string `json:"phone" binding:"omitempty,phone"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Address string `json:"address" binding:"max=1000"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Email   *string `json:"email" binding:"omitempty,email,max=200"`
	Address *string `json:"address" binding:"omitempty,max=1000"`
}

// CustomerListFilter represents filter options for customer lists
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone,omitempty"`
	Email       string           `json:"email,omitempty"`
	Address     string           `json:"address,omitempty"`
	IsActive    bool             `json:"is_active"`
	Outstanding *decimal.Decimal `json:"outstanding,omitempty"`
	OpenDebts   int              `json:"open_debts,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ToCustomerResponse converts a domain Customer to a response
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

// CustomerService handles customers
type CustomerService struct {
	repos  uow.Repositories
	logger *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(repos uow.Repositories, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{repos: repos, logger: logger}
}

// Create creates a customer
func (s *CustomerService) Create(ctx context.Context, shopID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(shopID, req.Name, req.Phone)
	if err != nil {
		return nil, err
	}
	customer.UpdateContact(req.Phone, req.Email, req.Address)
	if err := s.repos.Customers().Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID returns a customer with the sum of their open debts
func (s *CustomerService) GetByID(ctx context.Context, shopID, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.repos.Customers().FindByIDForShop(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	debts, err := s.repos.Debts().FindUnpaidByCustomer(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	outstanding := decimal.Zero
	for i := range debts {
		outstanding = outstanding.Add(debts[i].RemainingAmount())
	}
	response := ToCustomerResponse(customer)
	response.Outstanding = &outstanding
	response.OpenDebts = len(debts)
	return &response, nil
}

// List lists customers with search on name and phone
func (s *CustomerService) List(ctx context.Context, shopID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "name"
	domainFilter.OrderDir = "asc"
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	customers, total, err := s.repos.Customers().FindAll(ctx, shopID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

// Update updates a customer; omitted fields keep their value
func (s *CustomerService) Update(ctx context.Context, shopID, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.repos.Customers().FindByIDForShop(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := customer.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	phone, email, address := customer.Phone, customer.Email, customer.Address
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.Address != nil {
		address = *req.Address
	}
	customer.UpdateContact(phone, email, address)
	if err := s.repos.Customers().Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer that no sale or debt refers to
func (s *CustomerService) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	if _, err := s.repos.Customers().FindByIDForShop(ctx, shopID, id); err != nil {
		return err
	}
	referenced, err := s.repos.Customers().IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return shared.NewDomainError(shared.ErrInUse.Code, "Customer has sales or debts and cannot be deleted")
	}
	if err := s.repos.Customers().Delete(ctx, shopID, id); err != nil {
		return err
	}
	s.logger.Info("Customer deleted", zap.String("shop_id", shopID.String()), zap.String("customer_id", id.String()))
	return nil
}
