package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-api/internal/application/service"
	"github.com/sangkips/pharmacy-api/internal/domain/billing"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/response"
)

// BillingHandler handles the billing form and its invoice view
type BillingHandler struct {
	billingService *service.BillingService
	exportService  *service.ExportService
	printerService *service.PrinterService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService, exportService *service.ExportService, printerService *service.PrinterService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		exportService:  exportService,
		printerService: printerService,
	}
}

// CreateSession starts a new billing form
func (h *BillingHandler) CreateSession(c *gin.Context) {
	form, err := h.billingService.CreateSession(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Billing session created", service.FormResult{Form: form})
}

// GetSession returns the current state of a billing form
func (h *BillingHandler) GetSession(c *gin.Context) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	form, err := h.billingService.GetSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Billing session retrieved", service.FormResult{Form: form})
}

// AddRow appends an empty medicine row
func (h *BillingHandler) AddRow(c *gin.Context) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	h.respond(c, "Row added")(h.billingService.AddRow(c.Request.Context(), id))
}

// RemoveRow deletes a row and releases its reserved stock
func (h *BillingHandler) RemoveRow(c *gin.Context) {
	id, rowID, ok := sessionAndRow(c)
	if !ok {
		return
	}
	h.respond(c, "Row removed")(h.billingService.RemoveRow(c.Request.Context(), id, rowID))
}

// TypeName records the text typed into a row's name field
func (h *BillingHandler) TypeName(c *gin.Context) {
	id, rowID, ok := sessionAndRow(c)
	if !ok {
		return
	}
	var req request.MedicineNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c, "Medicine name updated")(h.billingService.TypeMedicineName(c.Request.Context(), id, rowID, req.Text))
}

// SelectSuggestion fills a row from the suggestion list
func (h *BillingHandler) SelectSuggestion(c *gin.Context) {
	id, rowID, ok := sessionAndRow(c)
	if !ok {
		return
	}
	var req request.SelectSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	med := entity.Medicine{Name: req.MedicineName, Dosage: req.Dosage}
	h.respond(c, "Medicine selected")(h.billingService.SelectSuggestion(c.Request.Context(), id, rowID, med))
}

// CheckMedicine reports the stock and expiry status of a row's medicine
func (h *BillingHandler) CheckMedicine(c *gin.Context) {
	id, rowID, ok := sessionAndRow(c)
	if !ok {
		return
	}
	h.respond(c, "Medicine checked")(h.billingService.CheckMedicine(c.Request.Context(), id, rowID))
}

// EnterQuantity sets a row's quantity after checking available stock
func (h *BillingHandler) EnterQuantity(c *gin.Context) {
	id, rowID, ok := sessionAndRow(c)
	if !ok {
		return
	}
	var req request.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c, "Quantity updated")(h.billingService.EnterQuantity(c.Request.Context(), id, rowID, req.Quantity))
}

// SetDiscount applies the bill discount
func (h *BillingHandler) SetDiscount(c *gin.Context) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	var req request.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c, "Discount updated")(h.billingService.SetDiscount(c.Request.Context(), id, req.Amount))
}

// SetCashGiven records the cash handed over by the patient
func (h *BillingHandler) SetCashGiven(c *gin.Context) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	var req request.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	h.respond(c, "Cash given updated")(h.billingService.SetCashGiven(c.Request.Context(), id, req.Amount))
}

// SetPatient updates the patient section
func (h *BillingHandler) SetPatient(c *gin.Context) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	var req request.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	p := billing.Patient{
		Name:        req.PatientName,
		DoctorName:  req.DoctorName,
		CountryCode: req.CountryCode,
		MobileNo:    req.MobileNo,
	}
	h.respond(c, "Patient details updated")(h.billingService.SetPatient(c.Request.Context(), id, p))
}

// Submit saves the bill remotely and switches the form to the invoice view
func (h *BillingHandler) Submit(c *gin.Context) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	h.respond(c, "Bill submitted")(h.billingService.Submit(c.Request.Context(), id))
}

// Cancel discards the bill and resets the form
func (h *BillingHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return
	}
	h.respond(c, "Bill cancelled")(h.billingService.Cancel(c.Request.Context(), id))
}

// Invoice returns the submitted invoice of a session
func (h *BillingHandler) Invoice(c *gin.Context) {
	inv, ok := h.sessionInvoice(c)
	if !ok {
		return
	}
	response.OK(c, "Invoice retrieved", inv)
}

// InvoicePDF downloads the submitted invoice as a PDF
func (h *BillingHandler) InvoicePDF(c *gin.Context) {
	inv, ok := h.sessionInvoice(c)
	if !ok {
		return
	}
	h.sendPDF(c, inv)
}

// PrintableInvoice returns the invoice as a plain text page for the browser
// print dialog
func (h *BillingHandler) PrintableInvoice(c *gin.Context) {
	inv, ok := h.sessionInvoice(c)
	if !ok {
		return
	}
	c.String(200, h.exportService.Printable(inv))
}

// PrintInvoice sends the invoice to the receipt printer. The receipt is
// returned even when the printer is unavailable.
func (h *BillingHandler) PrintInvoice(c *gin.Context) {
	inv, ok := h.sessionInvoice(c)
	if !ok {
		return
	}
	receipt, err := h.printerService.PrintInvoice(inv)
	if err != nil {
		response.Degraded(c, "Receipt generated but printing failed", gin.H{"receipt": receipt}, err)
		return
	}
	response.OK(c, "Invoice sent to printer", gin.H{"receipt": receipt})
}

// WhatsApp returns the share message and link for the patient's mobile
func (h *BillingHandler) WhatsApp(c *gin.Context) {
	inv, ok := h.sessionInvoice(c)
	if !ok {
		return
	}
	response.OK(c, "WhatsApp message generated", gin.H{
		"message": h.exportService.WhatsAppMessage(inv),
		"url":     h.exportService.WhatsAppLink(inv),
	})
}

// ArchivedInvoice returns a stored invoice by number
func (h *BillingHandler) ArchivedInvoice(c *gin.Context) {
	inv, err := h.billingService.ArchivedInvoice(c.Request.Context(), c.Param("invoice_no"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Invoice retrieved", inv)
}

// ArchivedInvoicePDF re-exports a stored invoice as a PDF
func (h *BillingHandler) ArchivedInvoicePDF(c *gin.Context) {
	inv, err := h.billingService.ArchivedInvoice(c.Request.Context(), c.Param("invoice_no"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.sendPDF(c, inv)
}

func (h *BillingHandler) sendPDF(c *gin.Context, inv *entity.Invoice) {
	data, err := h.exportService.PDF(inv)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, service.PDFFileName(inv), "application/pdf", data)
}

func (h *BillingHandler) sessionInvoice(c *gin.Context) (*entity.Invoice, bool) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return nil, false
	}
	inv, err := h.billingService.Invoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return inv, true
}

// respond writes the form result of a billing operation
func (h *BillingHandler) respond(c *gin.Context, message string) func(*service.FormResult, error) {
	return func(res *service.FormResult, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, message, res)
	}
}
