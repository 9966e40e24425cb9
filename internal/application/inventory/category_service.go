package inventory

import (
	"context"
	"fmt"

	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryService handles stock item categories
type CategoryService struct {
	repos uow.Repositories
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(repos uow.Repositories) *CategoryService {
	return &CategoryService{repos: repos}
}

// Create creates a category with a name unique within the shop
func (s *CategoryService) Create(ctx context.Context, shopID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := inventory.NewCategory(shopID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	exists, err := s.repos.Categories().ExistsByName(ctx, shopID, category.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, fmt.Sprintf("Category %s already exists", category.Name))
	}
	if err := s.repos.Categories().Save(ctx, category); err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List returns the categories of a shop
func (s *CategoryService) List(ctx context.Context, shopID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.repos.Categories().FindAll(ctx, shopID)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses, nil
}
