package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateShopRequest represents a request to create a shop
type CreateShopRequest struct {
	Name     string `json:"name" binding:"max=100"`
	ShopType string `json:"shop_type" binding:"required,oneof=stationery duka_la_vinywaji"`
}

// ShopResponse represents a shop in API responses
type ShopResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ShopType    string    `json:"shop_type"`
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active"`
}

// ToShopResponse converts a domain Shop to a response
func ToShopResponse(s *shop.Shop) ShopResponse {
	return ShopResponse{
		ID:          s.ID,
		Name:        s.Name,
		ShopType:    string(s.ShopType),
		DisplayName: s.DisplayName(),
		IsActive:    s.IsActive,
	}
}

// ShopService handles shops. Each shop type exists at most once.
type ShopService struct {
	repo   shop.Repository
	logger *zap.Logger
}

// NewShopService creates a new ShopService
func NewShopService(repo shop.Repository, logger *zap.Logger) *ShopService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopService{repo: repo, logger: logger}
}

// Create creates a shop of a type that does not exist yet
func (s *ShopService) Create(ctx context.Context, req CreateShopRequest) (*ShopResponse, error) {
	sh, err := shop.NewShop(req.Name, shop.ShopType(req.ShopType))
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByType(ctx, sh.ShopType)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, fmt.Sprintf("A %s shop already exists", sh.ShopType.DisplayName()))
	}
	if err := s.repo.Save(ctx, sh); err != nil {
		return nil, err
	}
	s.logger.Info("Shop created", zap.String("shop_id", sh.ID.String()), zap.String("shop_type", string(sh.ShopType)))
	response := ToShopResponse(sh)
	return &response, nil
}

// List returns all shops
func (s *ShopService) List(ctx context.Context) ([]ShopResponse, error) {
	shops, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]ShopResponse, len(shops))
	for i := range shops {
		responses[i] = ToShopResponse(&shops[i])
	}
	return responses, nil
}

// GetByID returns a shop
func (s *ShopService) GetByID(ctx context.Context, id uuid.UUID) (*ShopResponse, error) {
	sh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToShopResponse(sh)
	return &response, nil
}

// EnsureDefaults creates the stationery and duka_la_vinywaji shops when missing
// and returns every shop
func (s *ShopService) EnsureDefaults(ctx context.Context) ([]ShopResponse, error) {
	for _, t := range []shop.ShopType{shop.ShopTypeStationery, shop.ShopTypeDukaLaVinywaji} {
		_, err := s.repo.FindByType(ctx, t)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if _, err := s.Create(ctx, CreateShopRequest{ShopType: string(t)}); err != nil {
			return nil, err
		}
	}
	return s.List(ctx)
}

// Exists reports whether a shop exists; used to validate the current shop
func (s *ShopService) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
