package handler

import (
	partnerapp "github.com/duka/backend/internal/application/partner"
	reminderapp "github.com/duka/backend/internal/application/reminder"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
	reminderService *reminderapp.ReminderService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService, reminderService *reminderapp.ReminderService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		reminderService: reminderService,
	}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID handles GET /customers/:id, including what the customer owes
func (h *CustomerHandler) GetByID(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customer)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customers, total, err := h.customerService.List(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, customers, total, p, size)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), shopID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete handles DELETE /customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), shopID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Remind handles POST /customers/:id/remind with one summary of all open debts
func (h *CustomerHandler) Remind(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.reminderService.RemindCustomer(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
