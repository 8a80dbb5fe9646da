package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/pkg/money"
	"gorm.io/gorm"
)

// Invoice is the immutable snapshot of a submitted bill. It is kept on the
// billing session for export and archived so it can be reprinted later.
type Invoice struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo   string        `gorm:"size:100;uniqueIndex;not null" json:"invoice_no"`
	SessionID   uuid.UUID     `gorm:"type:uuid;index" json:"session_id"`
	InvoiceDate time.Time     `gorm:"type:date;not null" json:"invoice_date"`
	PatientName string        `gorm:"size:255;not null" json:"patient_name"`
	DoctorName  string        `gorm:"size:255" json:"doctor_name,omitempty"`
	CountryCode string        `gorm:"size:8" json:"country_code"`
	MobileNo    string        `gorm:"size:20;index" json:"mobile_no"`
	SubTotal    money.Amount  `gorm:"not null" json:"sub_total"`
	Discount    money.Amount  `gorm:"default:0" json:"discount"`
	GrandTotal  money.Amount  `gorm:"not null" json:"grand_total"`
	CashGiven   money.Amount  `gorm:"default:0" json:"cash_given"`
	Balance     money.Amount  `gorm:"default:0" json:"balance"`
	Items       []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt   time.Time     `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// PhoneNumber is the mobile number prefixed with its country code, digits only
func (i *Invoice) PhoneNumber() string {
	code := i.CountryCode
	if len(code) > 0 && code[0] == '+' {
		code = code[1:]
	}
	return code + i.MobileNo
}

// FormattedDate renders the invoice date the way the bill shows it (d/m/yyyy)
func (i *Invoice) FormattedDate() string {
	return i.InvoiceDate.Format("2/1/2006")
}

// InvoiceItem is one finalized row of a submitted bill
type InvoiceItem struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"-"`
	InvoiceID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	Position     int          `gorm:"not null" json:"s_no"`
	RowID        uuid.UUID    `gorm:"type:uuid" json:"id"`
	MedicineName string       `gorm:"size:255;not null" json:"medicine_name"`
	Quantity     int          `gorm:"not null" json:"quantity"`
	UnitPrice    money.Amount `gorm:"not null" json:"unit_price"`
	Total        money.Amount `gorm:"not null" json:"total"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
