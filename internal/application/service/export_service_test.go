package service

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

func sampleInvoice() *entity.Invoice {
	return &entity.Invoice{
		InvoiceNo:   "INV-100",
		InvoiceDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		PatientName: "John Doe",
		DoctorName:  "Dr Rao",
		CountryCode: "+91",
		MobileNo:    "9876543210",
		SubTotal:    money.FromCents(3000),
		Discount:    money.FromCents(500),
		GrandTotal:  money.FromCents(2500),
		CashGiven:   money.FromCents(3000),
		Balance:     money.FromCents(500),
		Items: []entity.InvoiceItem{
			{Position: 1, MedicineName: "Paracetamol 500mg", Quantity: 10, UnitPrice: money.FromCents(200), Total: money.FromCents(2000)},
			{Position: 2, MedicineName: "Paracetamol 500mg", Quantity: 5, UnitPrice: money.FromCents(200), Total: money.FromCents(1000)},
		},
	}
}

func TestExportService_WhatsAppMessage(t *testing.T) {
	svc := NewExportService(entity.ReceiptHeader{StoreName: "City Pharmacy"})

	want := "Hello! Your bill details:\n" +
		"Subtotal: 30.00\n" +
		"Discount: 5.00\n" +
		"Grand Total: 25.00\n\n" +
		"Purchased Tablets:\n" +
		"S.No | Medicine Name | Qty | Price | Total\n" +
		"--------------------------------------------\n" +
		"1 | Paracetamol 500mg | 10 | 2.00 | 20.00\n" +
		"2 | Paracetamol 500mg | 5 | 2.00 | 10.00\n"

	assert.Equal(t, want, svc.WhatsAppMessage(sampleInvoice()))
}

func TestExportService_WhatsAppLink(t *testing.T) {
	svc := NewExportService(entity.ReceiptHeader{})
	inv := sampleInvoice()

	link := svc.WhatsAppLink(inv)
	require.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text="))
	assert.NotContains(t, link, "+")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, svc.WhatsAppMessage(inv), u.Query().Get("text"))
}

func TestExportService_Printable(t *testing.T) {
	svc := NewExportService(entity.ReceiptHeader{StoreName: "City Pharmacy", Phone: "044 123456"})

	out := svc.Printable(sampleInvoice())

	assert.Contains(t, out, "City Pharmacy")
	assert.Contains(t, out, "Phone: 044 123456")
	assert.Contains(t, out, "Invoice No: INV-100")
	assert.Contains(t, out, "Date: 9/3/2024")
	assert.Contains(t, out, "Doctor Name: Dr Rao")
	assert.Contains(t, out, "Paracetamol 500mg")
	assert.Regexp(t, `Grand Total:\s+25\.00`, out)
	assert.Regexp(t, `Balance:\s+5\.00`, out)
}

func TestExportService_PDF(t *testing.T) {
	svc := NewExportService(entity.ReceiptHeader{StoreName: "City Pharmacy", Address: "12 Main Road"})

	data, err := svc.PDF(sampleInvoice())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, "bill-INV-100.pdf", PDFFileName(sampleInvoice()))
}

func TestPDFFileName_Sanitized(t *testing.T) {
	assert.Equal(t, "bill-a_b_.pdf", PDFFileName(&entity.Invoice{InvoiceNo: "a/b\""}))
}
