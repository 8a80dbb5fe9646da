package entity

import "github.com/sangkips/pharmacy-api/pkg/money"

// ReceiptHeader holds the pharmacy header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	UnitPrice money.Amount `json:"unit_price"`
	Total     money.Amount `json:"total"`
}

// Receipt is a value object representing a printable bill.
// It is not stored; it is composed from an invoice snapshot at print time.
type Receipt struct {
	Header     ReceiptHeader `json:"header"`
	InvoiceNo  string        `json:"invoice_no"`
	Date       string        `json:"date"`
	Patient    string        `json:"patient,omitempty"`
	Doctor     string        `json:"doctor,omitempty"`
	Mobile     string        `json:"mobile,omitempty"`
	Items      []ReceiptItem `json:"items"`
	SubTotal   money.Amount  `json:"sub_total"`
	Discount   money.Amount  `json:"discount"`
	GrandTotal money.Amount  `json:"grand_total"`
	CashGiven  money.Amount  `json:"cash_given"`
	Balance    money.Amount  `json:"balance"`
}

// NewReceipt composes a receipt from an invoice snapshot
func NewReceipt(header ReceiptHeader, inv *Invoice) *Receipt {
	r := &Receipt{
		Header:     header,
		InvoiceNo:  inv.InvoiceNo,
		Date:       inv.FormattedDate(),
		Patient:    inv.PatientName,
		Doctor:     inv.DoctorName,
		Mobile:     inv.CountryCode + " " + inv.MobileNo,
		SubTotal:   inv.SubTotal,
		Discount:   inv.Discount,
		GrandTotal: inv.GrandTotal,
		CashGiven:  inv.CashGiven,
		Balance:    inv.Balance,
	}
	for _, it := range inv.Items {
		r.Items = append(r.Items, ReceiptItem{
			Name:      it.MedicineName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		})
	}
	return r
}
