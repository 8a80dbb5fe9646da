package request

import "github.com/sangkips/pharmacy-api/pkg/money"

// AddMedicineRequest represents a new purchase lot. Amounts accept numbers or
// numeric strings; the expiry date is YYYY-MM-DD.
type AddMedicineRequest struct {
	MedicineName  string       `json:"medicine_name"`
	BrandName     string       `json:"brand_name"`
	OtherDetails  string       `json:"other_details"`
	PurchasePrice money.Amount `json:"purchase_price"`
	TotalQty      int          `json:"total_qty" binding:"min=0"`
	MRP           money.Amount `json:"mrp"`
	Dosage        string       `json:"dosage"`
	DosageUnit    string       `json:"dosage_unit"`
	ExpiryDate    string       `json:"expiry_date"`
}
