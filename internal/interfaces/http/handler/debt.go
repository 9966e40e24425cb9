package handler

import (
	financeapp "github.com/duka/backend/internal/application/finance"
	reminderapp "github.com/duka/backend/internal/application/reminder"
	"github.com/gin-gonic/gin"
)

// DebtHandler handles debt and payment endpoints
type DebtHandler struct {
	BaseHandler
	debtService     *financeapp.DebtService
	reminderService *reminderapp.ReminderService
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debtService *financeapp.DebtService, reminderService *reminderapp.ReminderService) *DebtHandler {
	return &DebtHandler{
		debtService:     debtService,
		reminderService: reminderService,
	}
}

// List handles GET /debts
func (h *DebtHandler) List(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter financeapp.DebtListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	debts, total, err := h.debtService.ListDebts(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, debts, total, p, size)
}

// Create handles POST /debts. The stock leaves the shelf immediately.
func (h *DebtHandler) Create(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var req financeapp.CreateDebtRequest
	if !h.bindJSON(c, &req) {
		return
	}
	debt, err := h.debtService.CreateDebt(c.Request.Context(), shopID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, debt)
}

// Get handles GET /debts/:id
func (h *DebtHandler) Get(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	debt, err := h.debtService.GetDebt(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, debt)
}

// Delete handles DELETE /debts/:id
func (h *DebtHandler) Delete(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.debtService.DeleteDebt(c.Request.Context(), shopID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordPayment handles POST /debts/:id/payments. Repeats carrying the same
// Idempotency-Key are answered by the idempotency middleware.
func (h *DebtHandler) RecordPayment(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req financeapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.debtService.RecordPayment(c.Request.Context(), shopID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListPayments handles GET /debts/:id/payments
func (h *DebtHandler) ListPayments(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	payments, err := h.debtService.ListPayments(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, payments)
}

// Remind handles POST /debts/:id/remind
func (h *DebtHandler) Remind(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.reminderService.RemindDebt(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
