package handler

import (
	financeapp "github.com/duka/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// ExpenditureHandler handles expenditure endpoints
type ExpenditureHandler struct {
	BaseHandler
	expenditureService *financeapp.ExpenditureService
}

// NewExpenditureHandler creates a new ExpenditureHandler
func NewExpenditureHandler(expenditureService *financeapp.ExpenditureService) *ExpenditureHandler {
	return &ExpenditureHandler{expenditureService: expenditureService}
}

// List handles GET /expenditures
func (h *ExpenditureHandler) List(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter financeapp.ExpenditureListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	expenditures, total, err := h.expenditureService.List(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, expenditures, total, p, size)
}

// Create handles POST /expenditures
func (h *ExpenditureHandler) Create(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var req financeapp.CreateExpenditureRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expenditure, err := h.expenditureService.Create(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, expenditure)
}

// Update handles PUT /expenditures/:id
func (h *ExpenditureHandler) Update(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req financeapp.UpdateExpenditureRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expenditure, err := h.expenditureService.Update(c.Request.Context(), shopID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, expenditure)
}

// Delete handles DELETE /expenditures/:id
func (h *ExpenditureHandler) Delete(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.expenditureService.Delete(c.Request.Context(), shopID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Export handles GET /expenditures/export?format=csv|xlsx
func (h *ExpenditureHandler) Export(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter financeapp.ExpenditureListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	file, err := h.expenditureService.Export(c.Request.Context(), shopID, filter, c.Query("format"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Attachment(c, file.Name, file.ContentType, file.Body)
}
