package handler

import (
	reportapp "github.com/duka/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the reporting endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Daily handles GET /reports/daily
func (h *ReportHandler) Daily(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter reportapp.DailyReportFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	report, err := h.reportService.Daily(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// Monthly handles GET /reports/monthly; without year and month the current
// month is reported.
func (h *ReportHandler) Monthly(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	var filter reportapp.MonthlyReportFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	report, err := h.reportService.Monthly(c.Request.Context(), shopID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, report)
}

// Dashboard handles GET /reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	dashboard, err := h.reportService.Dashboard(c.Request.Context(), shopID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// SaleProfit handles GET /reports/sales/:id/profit
func (h *ReportHandler) SaleProfit(c *gin.Context) {
	shopID, ok := h.shopID(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	profit, err := h.reportService.SaleProfit(c.Request.Context(), shopID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, profit)
}
