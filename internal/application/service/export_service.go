package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
)

const (
	whatsAppBase   = "https://wa.me/"
	printableWidth = 72
)

// ExportService renders a submitted invoice for the export actions of the
// invoice view: PDF download, printable page and WhatsApp share link.
type ExportService struct {
	header entity.ReceiptHeader
}

// NewExportService creates a new export service
func NewExportService(header entity.ReceiptHeader) *ExportService {
	return &ExportService{header: header}
}

// PDFFileName is the download name of an invoice PDF
func PDFFileName(inv *entity.Invoice) string {
	return "bill-" + safeFileName(inv.InvoiceNo) + ".pdf"
}

// PDF renders the invoice on an A4 page
func (s *ExportService) PDF(inv *entity.Invoice) ([]byte, error) {
	pdf, tr := newPDF("P", "Bill "+inv.InvoiceNo)

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, tr(s.storeName()), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if s.header.Address != "" {
		pdf.CellFormat(0, 5, tr(s.header.Address), "", 1, "C", false, 0, "")
	}
	if s.header.Phone != "" {
		pdf.CellFormat(0, 5, tr("Phone: "+s.header.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(93, 6, tr("Invoice No: "+inv.InvoiceNo), "", 0, "L", false, 0, "")
	pdf.CellFormat(93, 6, "Date: "+inv.FormattedDate(), "", 1, "R", false, 0, "")
	pdf.CellFormat(93, 6, tr("Patient Name: "+inv.PatientName), "", 0, "L", false, 0, "")
	pdf.CellFormat(93, 6, tr("Mobile: "+inv.CountryCode+" "+inv.MobileNo), "", 1, "R", false, 0, "")
	if inv.DoctorName != "" {
		pdf.CellFormat(0, 6, tr("Doctor Name: "+inv.DoctorName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	table := pdfTable{
		Headers: []string{"S.No", "Medicine Name", "Qty", "Price", "Total"},
		Widths:  []float64{14, 92, 20, 30, 30},
		Align:   []string{"C", "L", "R", "R", "R"},
	}
	for _, it := range inv.Items {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", it.Position),
			it.MedicineName,
			fmt.Sprintf("%d", it.Quantity),
			it.UnitPrice.String(),
			it.Total.String(),
		})
	}
	writeTable(pdf, tr, table)
	pdf.Ln(3)

	totals := [][2]string{
		{"Subtotal", inv.SubTotal.String()},
		{"Discount", inv.Discount.String()},
		{"Grand Total", inv.GrandTotal.String()},
		{"Cash Given", inv.CashGiven.String()},
		{"Balance", inv.Balance.String()},
	}
	for _, t := range totals {
		style := ""
		if t[0] == "Grand Total" {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(156, 6, t[0]+":", "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, t[1], "", 1, "R", false, 0, "")
	}

	return outputPDF(pdf, "invoice")
}

// Printable renders the invoice as a plain-text page for the browser print dialog
func (s *ExportService) Printable(inv *entity.Invoice) string {
	var b strings.Builder
	rule := strings.Repeat("-", printableWidth)

	center := func(text string) {
		if pad := (printableWidth - len(text)) / 2; pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	split := func(left, right string) {
		gap := printableWidth - len(left) - len(right)
		if gap < 1 {
			gap = 1
		}
		b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
	}

	center(s.storeName())
	if s.header.Address != "" {
		center(s.header.Address)
	}
	if s.header.Phone != "" {
		center("Phone: " + s.header.Phone)
	}
	b.WriteString(rule + "\n")
	split("Invoice No: "+inv.InvoiceNo, "Date: "+inv.FormattedDate())
	split("Patient Name: "+inv.PatientName, "Mobile: "+inv.CountryCode+" "+inv.MobileNo)
	if inv.DoctorName != "" {
		b.WriteString("Doctor Name: " + inv.DoctorName + "\n")
	}
	b.WriteString(rule + "\n")

	fmt.Fprintf(&b, "%-5s %-36s %6s %10s %11s\n", "S.No", "Medicine Name", "Qty", "Price", "Total")
	b.WriteString(rule + "\n")
	for _, it := range inv.Items {
		fmt.Fprintf(&b, "%-5d %-36s %6d %10s %11s\n",
			it.Position, truncate(it.MedicineName, 36), it.Quantity, it.UnitPrice, it.Total)
	}
	b.WriteString(rule + "\n")

	for _, t := range [][2]string{
		{"Subtotal:", inv.SubTotal.String()},
		{"Discount:", inv.Discount.String()},
		{"Grand Total:", inv.GrandTotal.String()},
		{"Cash Given:", inv.CashGiven.String()},
		{"Balance:", inv.Balance.String()},
	} {
		fmt.Fprintf(&b, "%*s %11s\n", printableWidth-12, t[0], t[1])
	}
	return b.String()
}

// WhatsAppMessage is the bill summary sent to the patient
func (s *ExportService) WhatsAppMessage(inv *entity.Invoice) string {
	var b strings.Builder
	b.WriteString("Hello! Your bill details:\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", inv.SubTotal)
	fmt.Fprintf(&b, "Discount: %s\n", inv.Discount)
	fmt.Fprintf(&b, "Grand Total: %s\n\nPurchased Tablets:\n", inv.GrandTotal)
	b.WriteString("S.No | Medicine Name | Qty | Price | Total\n")
	b.WriteString(strings.Repeat("-", 44) + "\n")
	for _, it := range inv.Items {
		fmt.Fprintf(&b, "%d | %s | %d | %s | %s\n", it.Position, it.MedicineName, it.Quantity, it.UnitPrice, it.Total)
	}
	return b.String()
}

// WhatsAppLink builds the wa.me share link for the patient's number
func (s *ExportService) WhatsAppLink(inv *entity.Invoice) string {
	text := strings.ReplaceAll(url.QueryEscape(s.WhatsAppMessage(inv)), "+", "%20")
	return whatsAppBase + inv.PhoneNumber() + "?text=" + text
}

func (s *ExportService) storeName() string {
	if s.header.StoreName == "" {
		return "Pharmacy"
	}
	return s.header.StoreName
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "~"
}

func safeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
