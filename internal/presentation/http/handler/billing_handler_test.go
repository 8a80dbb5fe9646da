package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/pharmacy-api/internal/application/service"
	"github.com/sangkips/pharmacy-api/internal/domain/billing"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/infrastructure/inventory"
	infraRepo "github.com/sangkips/pharmacy-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-api/pkg/money"
	"github.com/sangkips/pharmacy-api/pkg/printer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubPharmacy answers like a remote API stocking paracetamol at 2.00
type stubPharmacy struct {
	available int
	submitErr error
}

func (s *stubPharmacy) AvailableQuantity(ctx context.Context, med entity.Medicine) (int, error) {
	return s.available, nil
}

func (s *stubPharmacy) MRP(ctx context.Context, med entity.Medicine) (money.Amount, error) {
	return money.FromCents(200), nil
}

func (s *stubPharmacy) Suggestions(ctx context.Context, partial string) ([]entity.Medicine, error) {
	return []entity.Medicine{{Name: "Paracetamol", Dosage: "500mg"}}, nil
}

func (s *stubPharmacy) StockStatus(ctx context.Context, med entity.Medicine) (inventory.StockStatus, error) {
	return inventory.StockStatus{}, nil
}

func (s *stubPharmacy) SubmitBilling(ctx context.Context, sub billing.Submission) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return "INV-7", nil
}

type invoiceStore struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
}

func (r *invoiceStore) Create(ctx context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[inv.InvoiceNo] = inv
	return nil
}

func (r *invoiceStore) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[invoiceNo], nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

type formData struct {
	Form struct {
		ID    string `json:"id"`
		State string `json:"state"`
		Rows  []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"rows"`
		Totals struct {
			GrandTotal float64 `json:"grand_total"`
		} `json:"totals"`
	} `json:"form"`
	Alert *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"alert"`
}

func newBillingRouter(t *testing.T, pharmacy *stubPharmacy) *gin.Engine {
	t.Helper()
	sessions := infraRepo.NewMemorySessionRepository(time.Hour, 0)
	t.Cleanup(sessions.Close)

	header := entity.ReceiptHeader{StoreName: "City Pharmacy"}
	billingService := service.NewBillingService(sessions, &invoiceStore{invoices: map[string]*entity.Invoice{}}, nil, pharmacy, service.BillingOptions{
		InitialRows:   2,
		CountryCode:   "+91",
		AlertDuration: 3 * time.Second,
		Location:      time.UTC,
	})
	h := NewBillingHandler(
		billingService,
		service.NewExportService(header),
		service.NewPrinterService(printer.NewNullPrinter(), "none", 32, header),
	)

	r := gin.New()
	s := r.Group("/billing/sessions")
	s.POST("", h.CreateSession)
	s.GET("/:id", h.GetSession)
	s.POST("/:id/rows", h.AddRow)
	s.POST("/:id/rows/:row_id/select", h.SelectSuggestion)
	s.PUT("/:id/rows/:row_id/quantity", h.EnterQuantity)
	s.PUT("/:id/cash", h.SetCashGiven)
	s.PUT("/:id/patient", h.SetPatient)
	s.POST("/:id/submit", h.Submit)
	s.GET("/:id/invoice", h.Invoice)
	s.GET("/:id/invoice/pdf", h.InvoicePDF)
	s.GET("/:id/invoice/print", h.PrintableInvoice)
	s.POST("/:id/invoice/print", h.PrintInvoice)
	s.GET("/:id/invoice/whatsapp", h.WhatsApp)
	r.GET("/invoices/:invoice_no", h.ArchivedInvoice)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeForm(t *testing.T, w *httptest.ResponseRecorder) (envelope, formData) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data formData
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return env, data
}

// fillBill creates a session billing 10 paracetamol paid with 25 cash
func fillBill(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/billing/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	_, created := decodeForm(t, w)
	require.Len(t, created.Form.Rows, 2)

	base := "/billing/sessions/" + created.Form.ID
	row := base + "/rows/" + created.Form.Rows[0].ID

	w = doJSON(t, r, http.MethodPost, row+"/select", gin.H{"medicine_name": "Paracetamol", "dosage": "500mg"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPut, row+"/quantity", gin.H{"quantity": "10"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPut, base+"/cash", gin.H{"amount": "25"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPut, base+"/patient", gin.H{
		"patient_name": "John Doe", "doctor_name": "Dr Rao", "mobile_no": "9876543210",
	})
	require.Equal(t, http.StatusOK, w.Code)
	return base
}

func TestBillingHandler_SubmitAndExport(t *testing.T) {
	r := newBillingRouter(t, &stubPharmacy{available: 50})
	base := fillBill(t, r)

	w := doJSON(t, r, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env, data := decodeForm(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "Submitted", data.Form.State)
	require.NotNil(t, data.Alert)
	assert.Equal(t, "Successfully submitted!", data.Alert.Message)

	w = doJSON(t, r, http.MethodGet, base+"/invoice/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bill-INV-7.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = doJSON(t, r, http.MethodGet, base+"/invoice/print", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invoice No: INV-7")

	w = doJSON(t, r, http.MethodGet, base+"/invoice/whatsapp", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var share struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &share))
	assert.True(t, strings.HasPrefix(share.Data.URL, "https://wa.me/919876543210?text="))

	// no printer is configured, so the receipt comes back with a warning
	w = doJSON(t, r, http.MethodPost, base+"/invoice/print", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "printing failed")

	w = doJSON(t, r, http.MethodGet, "/invoices/INV-7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBillingHandler_StockExceededAlert(t *testing.T) {
	r := newBillingRouter(t, &stubPharmacy{available: 4})

	w := doJSON(t, r, http.MethodPost, "/billing/sessions", nil)
	_, created := decodeForm(t, w)
	row := "/billing/sessions/" + created.Form.ID + "/rows/" + created.Form.Rows[0].ID

	doJSON(t, r, http.MethodPost, row+"/select", gin.H{"medicine_name": "Paracetamol", "dosage": "500mg"})
	w = doJSON(t, r, http.MethodPut, row+"/quantity", gin.H{"quantity": "10"})
	require.Equal(t, http.StatusOK, w.Code)

	_, data := decodeForm(t, w)
	require.NotNil(t, data.Alert)
	assert.Equal(t, "stock_exceeded", data.Alert.Kind)
	assert.Equal(t, "Available Quantity for Paracetamol is 4", data.Alert.Message)
	assert.Equal(t, 0, data.Form.Rows[0].Quantity)
}

func TestBillingHandler_Errors(t *testing.T) {
	r := newBillingRouter(t, &stubPharmacy{available: 50})

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantKind string
	}{
		{name: "malformed session id", method: http.MethodGet, path: "/billing/sessions/nope", wantCode: http.StatusBadRequest, wantKind: "bad_request"},
		{name: "unknown session", method: http.MethodGet, path: "/billing/sessions/6f1c1b3e-0000-4000-8000-000000000000", wantCode: http.StatusNotFound, wantKind: "not_found"},
		{name: "unknown invoice", method: http.MethodGet, path: "/invoices/INV-404", wantCode: http.StatusNotFound, wantKind: "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, nil)
			assert.Equal(t, tt.wantCode, w.Code)
			env, _ := decodeForm(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantKind, env.Kind)
		})
	}
}

func TestBillingHandler_SubmitValidationAndFailure(t *testing.T) {
	pharmacy := &stubPharmacy{available: 50}
	r := newBillingRouter(t, pharmacy)

	w := doJSON(t, r, http.MethodPost, "/billing/sessions", nil)
	_, created := decodeForm(t, w)
	w = doJSON(t, r, http.MethodPost, "/billing/sessions/"+created.Form.ID+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	base := fillBill(t, r)
	pharmacy.submitErr = inventory.ErrUnavailable
	w = doJSON(t, r, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	env, _ := decodeForm(t, w)
	assert.Equal(t, "submission_failure", env.Kind)

	w = doJSON(t, r, http.MethodGet, base+"/invoice", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
