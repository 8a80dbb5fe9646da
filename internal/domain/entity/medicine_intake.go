package entity

import (
	"time"

	"github.com/sangkips/pharmacy-api/pkg/money"
)

// MedicineIntake is a new purchase lot entered on the add-medicine screen
type MedicineIntake struct {
	MedicineName   string       `json:"medicine_name"`
	BrandName      string       `json:"brand_name"`
	OtherDetails   string       `json:"other_details"`
	PurchasePrice  money.Amount `json:"purchase_price"`
	TotalQty       int          `json:"total_qty"`
	PurchaseAmount money.Amount `json:"purchase_amount"`
	Dosage         string       `json:"dosage"`
	DosageUnit     string       `json:"dosage_unit"`
	ExpiryDate     time.Time    `json:"expiry_date"`
	MRP            money.Amount `json:"mrp"`
}

// Registration is a new user account request forwarded to the remote API
type Registration struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Role         string `json:"role"`
	Password     string `json:"-"`
}
