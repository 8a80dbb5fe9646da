package service

import (
	"fmt"
	"log"
	"time"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/money"
	"github.com/sangkips/pharmacy-api/pkg/printer"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	printerType string
	width       int
	header      entity.ReceiptHeader
}

// NewPrinterService creates a new printer service.
// width is the paper width in characters (32 for 58mm, 48 for 80mm).
func NewPrinterService(p printer.Printer, printerType string, width int, header entity.ReceiptHeader) *PrinterService {
	return &PrinterService{
		printer:     p,
		printerType: printerType,
		width:       width,
		header:      header,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
		Width:      s.width,
	}
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:    s.header,
		InvoiceNo: "TEST-001",
		Date:      time.Now().Format("2/1/2006"),
		Patient:   "Printer Test",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: money.FromCents(1000), Total: money.FromCents(1000)},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: money.FromCents(500), Total: money.FromCents(1000)},
		},
		SubTotal:   money.FromCents(2000),
		GrandTotal: money.FromCents(2000),
		CashGiven:  money.FromCents(2000),
	}

	if err := s.printer.Print(FormatReceipt(receipt, s.width)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// PrintInvoice prints the receipt of a submitted invoice. The receipt is
// returned even when printing fails.
func (s *PrinterService) PrintInvoice(inv *entity.Invoice) (*entity.Receipt, error) {
	receipt := entity.NewReceipt(s.header, inv)

	if err := s.printer.Print(FormatReceipt(receipt, s.width)); err != nil {
		log.Printf("Printer error (invoice %s): %v", inv.InvoiceNo, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Invoice:", r.InvoiceNo).
		KeyValue("Date:", r.Date)

	if r.Patient != "" {
		doc.KeyValue("Patient:", r.Patient)
	}
	if r.Doctor != "" {
		doc.KeyValue("Doctor:", r.Doctor)
	}
	if r.Mobile != "" {
		doc.KeyValue("Mobile:", r.Mobile)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Total.String())
		if item.Quantity > 1 {
			doc.TextF("  @ %s each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	doc.KeyValue("Subtotal:", r.SubTotal.String())
	if r.Discount > 0 {
		doc.KeyValue("Discount:", r.Discount.String())
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", r.GrandTotal.String()).
		SetBold(false)

	if r.CashGiven > 0 {
		doc.KeyValue("Cash:", r.CashGiven.String()).
			KeyValue("Balance:", r.Balance.String())
	}

	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Get well soon!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
