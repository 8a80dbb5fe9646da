package entity

import (
	"time"

	"github.com/sangkips/pharmacy-api/pkg/money"
)

// BillingRecord is a bill as stored by the remote pharmacy API
type BillingRecord struct {
	ID          string              `json:"id"`
	InvoiceNo   string              `json:"invoice_no"`
	CreatedAt   *time.Time          `json:"created_at,omitempty"`
	PatientName string              `json:"patient_name"`
	DoctorName  string              `json:"doctor_name,omitempty"`
	MobileNo    string              `json:"mobile_no"`
	SubTotal    money.Amount        `json:"sub_total"`
	Discount    money.Amount        `json:"discount"`
	GrandTotal  money.Amount        `json:"grand_total"`
	CashGiven   money.Amount        `json:"cash_given"`
	Balance     money.Amount        `json:"balance"`
	Items       []BillingRecordItem `json:"items,omitempty"`
}

// BillingRecordItem is one medicine line of a stored bill
type BillingRecordItem struct {
	MedicineName string       `json:"medicine_name"`
	Quantity     int          `json:"quantity"`
	UnitPrice    money.Amount `json:"unit_price"`
	Total        money.Amount `json:"total"`
}

// StockItem is one purchase lot as reported by the stock and purchase screens
type StockItem struct {
	PurchaseDate   *time.Time   `json:"purchase_date,omitempty"`
	MedicineName   string       `json:"medicine_name"`
	Dosage         string       `json:"dosage"`
	BrandName      string       `json:"brand_name"`
	PurchasePrice  money.Amount `json:"purchase_price"`
	PurchaseAmount money.Amount `json:"purchase_amount"`
	MRP            money.Amount `json:"mrp"`
	TotalQty       int          `json:"total_qty"`
	ExpiryDate     *time.Time   `json:"expiry_date,omitempty"`
}
