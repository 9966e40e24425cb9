package handler

import (
	tradeapp "github.com/duka/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter tradeapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	sales, total, err := h.saleService.ListSales(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, sales, total, p, size)
}

// Create handles POST /sales. Lines in the body are added in the same
// transaction; an unpaid sale with a customer opens an auto-debt.
func (h *SaleHandler) Create(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var req tradeapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.CreateSale(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, sale)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetSale(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete handles DELETE /sales/:id and restores the sold stock
func (h *SaleHandler) Delete(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.saleService.DeleteSale(c.Request.Context(), shopID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// BulkDelete handles POST /sales/bulk-delete
func (h *SaleHandler) BulkDelete(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var req tradeapp.BulkDeleteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.saleService.BulkDeleteSales(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkPaid handles POST /sales/:id/mark-paid
func (h *SaleHandler) MarkPaid(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.MarkPaidRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.MarkPaid(c.Request.Context(), shopID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sale)
}

// AddItem handles POST /sales/:id/items
func (h *SaleHandler) AddItem(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.AddLineItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.AddLineItem(c.Request.Context(), shopID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sale)
}

// UpdateItem handles PUT /sales/:id/items/:item_id
func (h *SaleHandler) UpdateItem(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	var req tradeapp.UpdateLineItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.UpdateLineItem(c.Request.Context(), shopID, id, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sale)
}

// RemoveItem handles DELETE /sales/:id/items/:item_id
func (h *SaleHandler) RemoveItem(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	sale, err := h.saleService.RemoveLineItem(c.Request.Context(), shopID, id, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sale)
}

// Receipt handles GET /sales/:id/receipt
func (h *SaleHandler) Receipt(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.saleService.Receipt(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Attachment(c, doc.Name, doc.ContentType, doc.Body)
}

// Export handles GET /sales/export?format=csv|xlsx|pdf with the list filters
func (h *SaleHandler) Export(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter tradeapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	file, err := h.saleService.ExportSales(c.Request.Context(), shopID, filter, c.Query("format"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Attachment(c, file.Name, file.ContentType, file.Body)
}
