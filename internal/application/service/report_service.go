package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/infrastructure/inventory"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
	"github.com/sangkips/pharmacy-api/pkg/pagination"
)

// ReportSource is the part of the remote pharmacy API the report screens read
type ReportSource interface {
	BillingHistory(ctx context.Context) ([]entity.BillingRecord, error)
	BillingRecord(ctx context.Context, invoiceNo string) (*entity.BillingRecord, error)
	Stock(ctx context.Context) ([]entity.StockItem, error)
	Purchases(ctx context.Context) ([]entity.StockItem, error)
}

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// ExportFile is a generated download
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// DateRange is an inclusive range of calendar days; either end may be open
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// BillingHistoryFilter narrows the billing history list
type BillingHistoryFilter struct {
	Mobile  string
	Created DateRange
}

// StockFilter narrows the stock and purchase lists. Dates apply to the expiry
// date for stock and to the purchase date for purchases.
type StockFilter struct {
	Name  string
	Dates DateRange
}

var stockHeaders = []string{
	"Purchase Date", "Medicine Name", "Dosage", "Brand Name", "Purchase Price",
	"Purchase Amount", "MRP", "Total Qty", "Expiry Date",
}

// ReportService serves the billing history, stock and purchase screens
type ReportService struct {
	source ReportSource
	loc    *time.Location
}

// NewReportService creates a new report service
func NewReportService(source ReportSource, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{source: source, loc: loc}
}

// BillingHistory lists stored bills, filtered and paginated
func (s *ReportService) BillingHistory(ctx context.Context, filter BillingHistoryFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.BillingRecord], error) {
	records, err := s.FilteredBillingHistory(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.Paginate(records, params), nil
}

// FilteredBillingHistory returns every stored bill matching the filter
func (s *ReportService) FilteredBillingHistory(ctx context.Context, filter BillingHistoryFilter) ([]entity.BillingRecord, error) {
	records, err := s.source.BillingHistory(ctx)
	if err != nil {
		return nil, upstreamError(err, "billing history")
	}

	mobile := strings.TrimSpace(filter.Mobile)
	out := make([]entity.BillingRecord, 0, len(records))
	for _, r := range records {
		if mobile != "" && !strings.Contains(r.MobileNo, mobile) {
			continue
		}
		if !s.inRange(r.CreatedAt, filter.Created) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// BillingRecord returns one stored bill with its medicines
func (s *ReportService) BillingRecord(ctx context.Context, invoiceNo string) (*entity.BillingRecord, error) {
	if strings.TrimSpace(invoiceNo) == "" {
		return nil, apperror.NewBadRequestError("Invoice number is required")
	}
	rec, err := s.source.BillingRecord(ctx, invoiceNo)
	if err != nil {
		return nil, upstreamError(err, "billing record")
	}
	return rec, nil
}

// Stock lists the stock lots, filtered by name and expiry date and sorted by
// expiry, soonest first
func (s *ReportService) Stock(ctx context.Context, filter StockFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.StockItem], error) {
	items, err := s.FilteredStock(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.Paginate(items, params), nil
}

// FilteredStock returns every stock lot matching the filter
func (s *ReportService) FilteredStock(ctx context.Context, filter StockFilter) ([]entity.StockItem, error) {
	items, err := s.source.Stock(ctx)
	if err != nil {
		return nil, upstreamError(err, "stock")
	}

	out := s.filterItems(items, filter, func(it entity.StockItem) *time.Time { return it.ExpiryDate })
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ExpiryDate, out[j].ExpiryDate
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})
	return out, nil
}

// Purchases lists recorded purchases, filtered by name and purchase date
func (s *ReportService) Purchases(ctx context.Context, filter StockFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.StockItem], error) {
	items, err := s.FilteredPurchases(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.Paginate(items, params), nil
}

// FilteredPurchases returns every purchase matching the filter
func (s *ReportService) FilteredPurchases(ctx context.Context, filter StockFilter) ([]entity.StockItem, error) {
	items, err := s.source.Purchases(ctx)
	if err != nil {
		return nil, upstreamError(err, "purchases")
	}
	return s.filterItems(items, filter, func(it entity.StockItem) *time.Time { return it.PurchaseDate }), nil
}

// ExportBillingHistory writes the filtered billing history to a spreadsheet
func (s *ReportService) ExportBillingHistory(ctx context.Context, filter BillingHistoryFilter) (*ExportFile, error) {
	records, err := s.FilteredBillingHistory(ctx, filter)
	if err != nil {
		return nil, err
	}

	headers := []string{
		"S.No", "Invoice No", "Date", "Patient Name", "Doctor Name", "Mobile No",
		"Subtotal", "Discount", "Grand Total", "Cash Given", "Balance",
	}
	rows := make([][]interface{}, 0, len(records))
	for i, r := range records {
		rows = append(rows, []interface{}{
			i + 1, r.InvoiceNo, s.formatDate(r.CreatedAt), r.PatientName, r.DoctorName, r.MobileNo,
			r.SubTotal.Float(), r.Discount.Float(), r.GrandTotal.Float(), r.CashGiven.Float(), r.Balance.Float(),
		})
	}

	data, err := writeSheet("Billing History", headers, rows)
	if err != nil {
		log.Printf("Billing history export failed: %v", err)
		return nil, apperror.ErrInternalServer
	}
	return &ExportFile{Name: "billing-history.xlsx", ContentType: contentTypeXLSX, Data: data}, nil
}

// ExportStock writes the filtered stock report as xlsx or pdf
func (s *ReportService) ExportStock(ctx context.Context, filter StockFilter, format string) (*ExportFile, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	items, err := s.FilteredStock(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.exportItems("Stock Report", "stock-report", items, format)
}

// ExportPurchases writes the filtered purchase report as xlsx or pdf
func (s *ReportService) ExportPurchases(ctx context.Context, filter StockFilter, format string) (*ExportFile, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	items, err := s.FilteredPurchases(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.exportItems("Purchase Report", "purchase-report", items, format)
}

func (s *ReportService) exportItems(title, baseName string, items []entity.StockItem, format string) (*ExportFile, error) {
	var (
		data []byte
		err  error
	)
	if format == FormatPDF {
		data, err = s.itemsPDF(title, items)
	} else {
		rows := make([][]interface{}, 0, len(items))
		for _, it := range items {
			rows = append(rows, []interface{}{
				s.formatDate(it.PurchaseDate), it.MedicineName, it.Dosage, it.BrandName,
				it.PurchasePrice.Float(), it.PurchaseAmount.Float(), it.MRP.Float(), it.TotalQty,
				s.formatDate(it.ExpiryDate),
			})
		}
		data, err = writeSheet(title, stockHeaders, rows)
	}
	if err != nil {
		log.Printf("%s export failed: %v", title, err)
		return nil, apperror.ErrInternalServer
	}

	file := &ExportFile{Name: baseName + "." + format, Data: data, ContentType: contentTypeXLSX}
	if format == FormatPDF {
		file.ContentType = contentTypePDF
	}
	return file, nil
}

func (s *ReportService) itemsPDF(title string, items []entity.StockItem) ([]byte, error) {
	pdf, tr := newPDF("L", title)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Generated "+time.Now().In(s.loc).Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	table := pdfTable{
		Headers: stockHeaders,
		Widths:  []float64{26, 50, 20, 36, 28, 30, 22, 20, 26},
		Align:   []string{"C", "L", "L", "L", "R", "R", "R", "R", "C"},
	}
	for _, it := range items {
		table.Rows = append(table.Rows, []string{
			s.formatDate(it.PurchaseDate), it.MedicineName, it.Dosage, it.BrandName,
			it.PurchasePrice.String(), it.PurchaseAmount.String(), it.MRP.String(),
			fmt.Sprintf("%d", it.TotalQty), s.formatDate(it.ExpiryDate),
		})
	}
	writeTable(pdf, tr, table)

	return outputPDF(pdf, strings.ToLower(title))
}

func (s *ReportService) filterItems(items []entity.StockItem, filter StockFilter, date func(entity.StockItem) *time.Time) []entity.StockItem {
	name := strings.ToLower(strings.TrimSpace(filter.Name))
	out := make([]entity.StockItem, 0, len(items))
	for _, it := range items {
		if name != "" && !strings.Contains(strings.ToLower(it.MedicineName), name) {
			continue
		}
		if !s.inRange(date(it), filter.Dates) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// inRange compares calendar days; a record without a date only matches an
// open range
func (s *ReportService) inRange(t *time.Time, r DateRange) bool {
	if r.From == nil && r.To == nil {
		return true
	}
	if t == nil {
		return false
	}
	day := dayNumber(t.In(s.loc))
	if r.From != nil && day < dayNumber(*r.From) {
		return false
	}
	if r.To != nil && day > dayNumber(*r.To) {
		return false
	}
	return true
}

func (s *ReportService) formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("2006-01-02")
}

func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func checkFormat(format string) error {
	if format != FormatXLSX && format != FormatPDF {
		return apperror.NewBadRequestError("Export format must be xlsx or pdf")
	}
	return nil
}

// upstreamError turns a remote API failure into an application error
func upstreamError(err error, what string) error {
	if errors.Is(err, inventory.ErrNotFound) {
		return apperror.NewLookupError(strings.ToUpper(what[:1])+what[1:]+" not found", err)
	}
	log.Printf("Remote %s lookup failed: %v", what, err)
	return apperror.NewUpstreamError("Unable to load "+what+", please try again", err)
}
