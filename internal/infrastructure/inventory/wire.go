package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

// The remote API is loose about types: quantities and ids arrive either as
// numbers or strings, dates in several layouts. These helpers normalise them.

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(data)
	return nil
}

type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	v := strings.TrimSpace(string(s))
	if v == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("inventory: invalid quantity %q", v)
	}
	*n = flexInt(f)
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	v := strings.TrimSpace(string(s))
	if v == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("inventory: invalid date %q", v)
}

func (t flexTime) ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

type quantityResponse struct {
	AvailableQuantity flexInt `json:"availableQuantity"`
}

type mrpResponse struct {
	MRP money.Amount `json:"mrp"`
}

type suggestionsResponse struct {
	Suggestions []struct {
		MedicineName string `json:"medicinename"`
		Dosage       string `json:"dosage"`
	} `json:"suggestions"`
}

type stockStatusResponse struct {
	Expired flexTime `json:"expired"`
}

type billingRow struct {
	ID           string `json:"id"`
	MedicineName string `json:"medicinename"`
	Qty          string `json:"qty"`
	QtyPrice     string `json:"qtyprice"`
	Total        string `json:"total"`
}

type billingRequest struct {
	MedicineRows []billingRow `json:"medicineRows"`
	SubTotal     string       `json:"subtotal"`
	Discount     string       `json:"discount"`
	GrandTotal   string       `json:"grandtotal"`
	PatientName  string       `json:"patientname"`
	DoctorName   string       `json:"doctorname"`
	MobileNo     string       `json:"mobileno"`
	CashGiven    string       `json:"cashgiven"`
	Balance      string       `json:"balance"`
	MedicineName []string     `json:"medicinename"`
}

type billingResponse struct {
	InvoiceNumber flexString `json:"invoicenumber"`
}

type tabletWire struct {
	MedicineName string       `json:"medicinename"`
	Qty          flexInt      `json:"qty"`
	QtyPrice     money.Amount `json:"qtyprice"`
	Total        money.Amount `json:"total"`
}

type billingRecordWire struct {
	ID            flexString      `json:"id"`
	InvoiceNumber flexString      `json:"invoice_number"`
	CreateDate    flexTime        `json:"createdate"`
	PatientName   string          `json:"patientname"`
	DoctorName    string          `json:"doctorname"`
	MobileNo      flexString      `json:"mobileno"`
	SubTotal      money.Amount    `json:"subtotal"`
	Discount      money.Amount    `json:"discount"`
	GrandTotal    money.Amount    `json:"grandtotal"`
	CashGiven     money.Amount    `json:"cashgiven"`
	Balance       money.Amount    `json:"balance"`
	TabletDetails json.RawMessage `json:"tabletdetails"`
}

// tablets decodes the tablet details column, which is stored as a JSON
// document inside a string.
func (w billingRecordWire) tablets() ([]tabletWire, error) {
	raw := bytes.TrimSpace(w.TabletDetails)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		raw = []byte(s)
	}

	var details struct {
		Tablets []tabletWire `json:"tablets"`
	}
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, fmt.Errorf("inventory: invalid tablet details: %w", err)
	}
	return details.Tablets, nil
}

func (w billingRecordWire) toEntity() (entity.BillingRecord, error) {
	rec := entity.BillingRecord{
		ID:          string(w.ID),
		InvoiceNo:   string(w.InvoiceNumber),
		CreatedAt:   w.CreateDate.ptr(),
		PatientName: w.PatientName,
		DoctorName:  w.DoctorName,
		MobileNo:    string(w.MobileNo),
		SubTotal:    w.SubTotal,
		Discount:    w.Discount,
		GrandTotal:  w.GrandTotal,
		CashGiven:   w.CashGiven,
		Balance:     w.Balance,
	}
	tablets, err := w.tablets()
	if err != nil {
		return rec, err
	}
	for _, t := range tablets {
		rec.Items = append(rec.Items, entity.BillingRecordItem{
			MedicineName: t.MedicineName,
			Quantity:     int(t.Qty),
			UnitPrice:    t.QtyPrice,
			Total:        t.Total,
		})
	}
	return rec, nil
}

type stockItemWire struct {
	PurchaseDate   flexTime     `json:"purchasedate"`
	Time           flexTime     `json:"time"`
	MedicineName   string       `json:"medicinename"`
	Dosage         string       `json:"dosage"`
	BrandName      string       `json:"brandname"`
	PurchasePrice  money.Amount `json:"purchaseprice"`
	PurchaseAmount money.Amount `json:"purchaseamount"`
	MRP            money.Amount `json:"mrp"`
	TotalQty       flexInt      `json:"totalqty"`
	ExpiryDate     flexTime     `json:"expirydate"`
}

func (w stockItemWire) toEntity() entity.StockItem {
	purchased := w.PurchaseDate
	if purchased.IsZero() {
		purchased = w.Time
	}
	return entity.StockItem{
		PurchaseDate:   purchased.ptr(),
		MedicineName:   w.MedicineName,
		Dosage:         w.Dosage,
		BrandName:      w.BrandName,
		PurchasePrice:  w.PurchasePrice,
		PurchaseAmount: w.PurchaseAmount,
		MRP:            w.MRP,
		TotalQty:       int(w.TotalQty),
		ExpiryDate:     w.ExpiryDate.ptr(),
	}
}

type purchaseRequest struct {
	MedicineName   string `json:"medicinename"`
	BrandName      string `json:"brandname"`
	OtherDetails   string `json:"otherdetails"`
	PurchasePrice  string `json:"purchaseprice"`
	TotalQty       string `json:"totalqty"`
	PurchaseAmount string `json:"purchaseamount"`
	Dosage         string `json:"dosage"`
	DosageUnit     string `json:"dosageUnit"`
	ExpiryDate     string `json:"expirydate"`
	MRP            string `json:"mrp"`
}

type statusResponse struct {
	Status  flexInt `json:"status"`
	Message string  `json:"message"`
}
