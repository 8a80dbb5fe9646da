package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-api/internal/application/service"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/response"
)

// ReportHandler serves the billing, stock and purchase reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// BillingHistory lists past bills, optionally filtered by mobile and date
func (h *ReportHandler) BillingHistory(c *gin.Context) {
	req, filter, ok := billingFilter(c)
	if !ok {
		return
	}
	result, err := h.reportService.BillingHistory(c.Request.Context(), filter, pageParams(req.Page, req.PerPage))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Billing history retrieved", result)
}

// ExportBillingHistory downloads the filtered billing history as a spreadsheet
func (h *ReportHandler) ExportBillingHistory(c *gin.Context) {
	_, filter, ok := billingFilter(c)
	if !ok {
		return
	}
	file, err := h.reportService.ExportBillingHistory(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Name, file.ContentType, file.Data)
}

// BillingRecord returns one past bill with its items
func (h *ReportHandler) BillingRecord(c *gin.Context) {
	record, err := h.reportService.BillingRecord(c.Request.Context(), c.Param("invoice_no"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Billing record retrieved", record)
}

// Stock lists current stock, filtered by name and expiry date
func (h *ReportHandler) Stock(c *gin.Context) {
	req, filter, ok := stockFilter(c)
	if !ok {
		return
	}
	result, err := h.reportService.Stock(c.Request.Context(), filter, pageParams(req.Page, req.PerPage))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Stock report retrieved", result)
}

// ExportStock downloads the filtered stock report
func (h *ReportHandler) ExportStock(c *gin.Context) {
	req, filter, ok := stockFilter(c)
	if !ok {
		return
	}
	file, err := h.reportService.ExportStock(c.Request.Context(), filter, exportFormat(req.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Name, file.ContentType, file.Data)
}

// Purchases lists purchase lots, filtered by name and purchase date
func (h *ReportHandler) Purchases(c *gin.Context) {
	req, filter, ok := stockFilter(c)
	if !ok {
		return
	}
	result, err := h.reportService.Purchases(c.Request.Context(), filter, pageParams(req.Page, req.PerPage))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Purchase report retrieved", result)
}

// ExportPurchases downloads the filtered purchase report
func (h *ReportHandler) ExportPurchases(c *gin.Context) {
	req, filter, ok := stockFilter(c)
	if !ok {
		return
	}
	file, err := h.reportService.ExportPurchases(c.Request.Context(), filter, exportFormat(req.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Name, file.ContentType, file.Data)
}

func billingFilter(c *gin.Context) (request.BillingHistoryRequest, service.BillingHistoryFilter, bool) {
	var req request.BillingHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return req, service.BillingHistoryFilter{}, false
	}
	dates, ok := dateRange(c, req.From, req.To)
	if !ok {
		return req, service.BillingHistoryFilter{}, false
	}
	return req, service.BillingHistoryFilter{Mobile: strings.TrimSpace(req.Mobile), Created: dates}, true
}

func stockFilter(c *gin.Context) (request.StockReportRequest, service.StockFilter, bool) {
	var req request.StockReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return req, service.StockFilter{}, false
	}
	dates, ok := dateRange(c, req.From, req.To)
	if !ok {
		return req, service.StockFilter{}, false
	}
	return req, service.StockFilter{Name: req.Name, Dates: dates}, true
}

func dateRange(c *gin.Context, from, to string) (service.DateRange, bool) {
	var r service.DateRange
	var ok bool
	if r.From, ok = parseDay(c, "from", from); !ok {
		return r, false
	}
	if r.To, ok = parseDay(c, "to", to); !ok {
		return r, false
	}
	return r, true
}

// exportFormat defaults to a spreadsheet
func exportFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return service.FormatXLSX
	}
	return format
}
