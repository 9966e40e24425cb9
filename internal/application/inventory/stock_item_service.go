package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/duka/backend/internal/application/uow"
	"github.com/duka/backend/internal/domain/inventory"
	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockItemService handles stock item management
type StockItemService struct {
	scope  uow.TransactionScope
	repos  uow.Repositories
	ledger *Ledger
	logger *zap.Logger
}

// NewStockItemService creates a new StockItemService
func NewStockItemService(scope uow.TransactionScope, repos uow.Repositories, ledger *Ledger, logger *zap.Logger) *StockItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockItemService{
		scope:  scope,
		repos:  repos,
		ledger: ledger,
		logger: logger,
	}
}

// Create creates a stock item with its opening quantity
func (s *StockItemService) Create(ctx context.Context, shopID uuid.UUID, req CreateStockItemRequest) (*StockItemResponse, error) {
	item, err := inventory.NewStockItem(shopID, inventory.ItemKind(req.Kind), req.SKU, req.Name, req.UnitCost, req.UnitPrice, req.Quantity)
	if err != nil {
		return nil, err
	}
	item.Description = strings.TrimSpace(req.Description)
	item.Supplier = strings.TrimSpace(req.Supplier)
	if err := item.SetReorderThreshold(req.ReorderThreshold); err != nil {
		return nil, err
	}
	if req.UnitsPerCarton > 0 {
		if err := item.SetUnitsPerCarton(req.UnitsPerCarton); err != nil {
			return nil, err
		}
	}

	if err := s.ensureSKUAvailable(ctx, shopID, item.SKU); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.repos.Categories().FindByIDForShop(ctx, shopID, *req.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = req.CategoryID
	}

	if err := s.repos.StockItems().Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save stock item: %w", err)
	}
	s.logger.Info("Stock item created",
		zap.String("shop_id", shopID.String()),
		zap.String("stock_item_id", item.ID.String()),
		zap.String("sku", item.SKU),
		zap.Int("quantity", item.OnHandQuantity),
	)
	response := ToStockItemResponse(item)
	return &response, nil
}

// GetByID retrieves a stock item
func (s *StockItemService) GetByID(ctx context.Context, shopID, id uuid.UUID) (*StockItemResponse, error) {
	item, err := s.repos.StockItems().FindByIDForShop(ctx, shopID, id)
	if err != nil {
		return nil, err
	}
	response := ToStockItemResponse(item)
	return &response, nil
}

// List retrieves stock items with filtering and pagination
func (s *StockItemService) List(ctx context.Context, shopID uuid.UUID, filter StockItemListFilter) ([]StockItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	items, total, err := s.repos.StockItems().FindAll(ctx, shopID, inventory.StockItemFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Kind:       inventory.ItemKind(filter.Kind),
		CategoryID: filter.CategoryID,
		ActiveOnly: filter.ActiveOnly,
	})
	if err != nil {
		return nil, 0, err
	}
	return ToStockItemResponses(items), total, nil
}

// LowStock lists active items at or below their reorder threshold
func (s *StockItemService) LowStock(ctx context.Context, shopID uuid.UUID) ([]StockItemResponse, error) {
	items, err := s.repos.StockItems().FindLowStock(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return ToStockItemResponses(items), nil
}

// Update changes descriptive and pricing fields of a stock item
func (s *StockItemService) Update(ctx context.Context, shopID, id uuid.UUID, req UpdateStockItemRequest) (*StockItemResponse, error) {
	var item *inventory.StockItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		item, err = repos.StockItems().FindByIDForUpdate(ctx, shopID, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
			}
			item.Name = name
		}
		if req.Description != nil {
			item.Description = strings.TrimSpace(*req.Description)
		}
		if req.Supplier != nil {
			item.Supplier = strings.TrimSpace(*req.Supplier)
		}
		if req.ClearCategory {
			item.CategoryID = nil
		} else if req.CategoryID != nil {
			if _, err := repos.Categories().FindByIDForShop(ctx, shopID, *req.CategoryID); err != nil {
				return err
			}
			item.CategoryID = req.CategoryID
		}
		if req.UnitCost != nil || req.UnitPrice != nil {
			cost, price := item.UnitCost, item.UnitPrice
			if req.UnitCost != nil {
				cost = *req.UnitCost
			}
			if req.UnitPrice != nil {
				price = *req.UnitPrice
			}
			if err := item.SetPricing(cost, price); err != nil {
				return err
			}
		}
		if req.ReorderThreshold != nil {
			if err := item.SetReorderThreshold(*req.ReorderThreshold); err != nil {
				return err
			}
		}
		if req.UnitsPerCarton != nil {
			if err := item.SetUnitsPerCarton(*req.UnitsPerCarton); err != nil {
				return err
			}
		}
		if req.IsActive != nil {
			if *req.IsActive {
				item.Activate()
			} else {
				item.Deactivate()
			}
		}
		item.IncrementVersion()
		return repos.StockItems().Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	response := ToStockItemResponse(item)
	return &response, nil
}

// Delete removes a stock item that no debt or sale line references
func (s *StockItemService) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.Repositories) error {
		item, err := repos.StockItems().FindByIDForUpdate(ctx, shopID, id)
		if err != nil {
			return err
		}
		referenced, err := repos.StockItems().IsReferenced(ctx, item.ID)
		if err != nil {
			return err
		}
		if referenced {
			return shared.NewDomainError(shared.ErrInUse.Code,
				fmt.Sprintf("%s is referenced by sales or debts; deactivate it instead", item.Name))
		}
		if err := repos.StockItems().Delete(ctx, shopID, id); err != nil {
			return err
		}
		s.logger.Info("Stock item deleted",
			zap.String("shop_id", shopID.String()),
			zap.String("stock_item_id", id.String()),
			zap.String("sku", item.SKU),
		)
		return nil
	})
}

// Restock adds received units through the ledger
func (s *StockItemService) Restock(ctx context.Context, shopID, id uuid.UUID, req RestockRequest) (*StockItemResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}
	var item *inventory.StockItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		item, err = s.ledger.ApplyDelta(ctx, repos, shopID, id, req.Quantity, reasonOr(req.Reason, ReasonRestock))
		return err
	})
	if err != nil {
		return nil, err
	}
	response := ToStockItemResponse(item)
	return &response, nil
}

// AdjustTo moves the on-hand quantity to a counted value through the ledger
func (s *StockItemService) AdjustTo(ctx context.Context, shopID, id uuid.UUID, req AdjustStockRequest) (*StockItemResponse, error) {
	if req.CountedQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	var item *inventory.StockItem
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		item, err = repos.StockItems().FindByIDForUpdate(ctx, shopID, id)
		if err != nil {
			return err
		}
		delta := req.CountedQuantity - item.OnHandQuantity
		return s.ledger.Apply(ctx, repos, item, delta, reasonOr(req.Reason, ReasonStockCount))
	})
	if err != nil {
		return nil, err
	}
	response := ToStockItemResponse(item)
	return &response, nil
}

func (s *StockItemService) ensureSKUAvailable(ctx context.Context, shopID uuid.UUID, sku string) error {
	existing, err := s.repos.StockItems().FindBySKU(ctx, shopID, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing != nil {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, fmt.Sprintf("SKU %s is already in use", sku))
	}
	return nil
}

func reasonOr(reason, fallback string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return fallback
}
