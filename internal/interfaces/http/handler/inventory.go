package handler

import (
	inventoryapp "github.com/duka/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles categories and stock items
type InventoryHandler struct {
	BaseHandler
	categoryService  *inventoryapp.CategoryService
	stockItemService *inventoryapp.StockItemService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(categoryService *inventoryapp.CategoryService, stockItemService *inventoryapp.StockItemService) *InventoryHandler {
	return &InventoryHandler{
		categoryService:  categoryService,
		stockItemService: stockItemService,
	}
}

// ListCategories handles GET /inventory/categories
func (h *InventoryHandler) ListCategories(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	categories, err := h.categoryService.List(c.Request.Context(), shopID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, categories)
}

// CreateCategory handles POST /inventory/categories
func (h *InventoryHandler) CreateCategory(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, category)
}

// ListItems handles GET /inventory/items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter inventoryapp.StockItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.stockItemService.List(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, p, size)
}

// LowStock handles GET /inventory/items/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	items, err := h.stockItemService.LowStock(c.Request.Context(), shopID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, items)
}

// CreateItem handles POST /inventory/items
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateStockItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.stockItemService.Create(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, item)
}

// GetItem handles GET /inventory/items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.stockItemService.GetByID(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}

// UpdateItem handles PUT /inventory/items/:id
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateStockItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.stockItemService.Update(c.Request.Context(), shopID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}

// DeleteItem handles DELETE /inventory/items/:id
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.stockItemService.Delete(c.Request.Context(), shopID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Restock handles POST /inventory/items/:id/restock
func (h *InventoryHandler) Restock(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.RestockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.stockItemService.Restock(c.Request.Context(), shopID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}

// Adjust handles POST /inventory/items/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.stockItemService.AdjustTo(c.Request.Context(), shopID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, item)
}
