package service

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

// PurchaseRecorder stores new purchase lots on the remote pharmacy API
type PurchaseRecorder interface {
	AddPurchase(ctx context.Context, in entity.MedicineIntake) error
}

// DosageUnits are the units accepted on the add-medicine screen
var DosageUnits = []string{"mg", "ml", "g", "mcg", "iu"}

var dosagePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// AddMedicineInput represents the add medicine input
type AddMedicineInput struct {
	MedicineName  string
	BrandName     string
	OtherDetails  string
	PurchasePrice money.Amount
	TotalQty      int
	MRP           money.Amount
	Dosage        string // "500" or "500mg"
	DosageUnit    string
	ExpiryDate    *time.Time
}

// MedicineService validates and records new purchase lots
type MedicineService struct {
	purchases PurchaseRecorder
	loc       *time.Location
	now       func() time.Time
}

// NewMedicineService creates a new medicine service
func NewMedicineService(purchases PurchaseRecorder, loc *time.Location) *MedicineService {
	if loc == nil {
		loc = time.Local
	}
	return &MedicineService{purchases: purchases, loc: loc, now: time.Now}
}

// AddMedicine validates the entry, derives the purchase amount and forwards it
func (s *MedicineService) AddMedicine(ctx context.Context, input *AddMedicineInput) (*entity.MedicineIntake, error) {
	intake, err := s.buildIntake(input)
	if err != nil {
		return nil, err
	}

	if err := s.purchases.AddPurchase(ctx, *intake); err != nil {
		log.Printf("Failed to record purchase of %s: %v", intake.MedicineName, err)
		return nil, apperror.NewUpstreamError("Failed to save the medicine, please try again", err)
	}
	return intake, nil
}

func (s *MedicineService) buildIntake(input *AddMedicineInput) (*entity.MedicineIntake, error) {
	intake := &entity.MedicineIntake{
		MedicineName:  strings.TrimSpace(input.MedicineName),
		BrandName:     strings.TrimSpace(input.BrandName),
		OtherDetails:  strings.TrimSpace(input.OtherDetails),
		PurchasePrice: input.PurchasePrice,
		TotalQty:      input.TotalQty,
		MRP:           input.MRP,
	}

	if intake.MedicineName == "" || intake.BrandName == "" || intake.OtherDetails == "" ||
		strings.TrimSpace(input.Dosage) == "" || input.ExpiryDate == nil ||
		intake.PurchasePrice <= 0 || intake.TotalQty <= 0 || intake.MRP <= 0 {
		return nil, apperror.NewFieldError("fields", "Please fill all input fields.")
	}

	dosage, unit, err := normalizeDosage(input.Dosage, input.DosageUnit)
	if err != nil {
		return nil, err
	}
	intake.Dosage = dosage
	intake.DosageUnit = unit

	y, m, d := input.ExpiryDate.Date()
	expiry := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ty, tm, td := s.now().In(s.loc).Date()
	if expiry.Before(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)) {
		return nil, apperror.NewFieldError("expiry_date", "Please enter a valid expiry date.")
	}
	intake.ExpiryDate = expiry

	intake.PurchaseAmount = intake.PurchasePrice.Mul(intake.TotalQty)
	return intake, nil
}

// normalizeDosage joins the dosage amount with its unit, e.g. ("500", "mg")
// gives "500mg". A unit typed into the dosage field must agree with the
// selected one.
func normalizeDosage(dosage, unit string) (string, string, error) {
	m := dosagePattern.FindStringSubmatch(strings.TrimSpace(dosage))
	if m == nil {
		return "", "", apperror.NewFieldError("dosage", "Please enter a valid dosage")
	}

	unit = strings.ToLower(strings.TrimSpace(unit))
	typed := strings.ToLower(m[2])
	switch {
	case unit == "" && typed == "":
		unit = DosageUnits[0]
	case unit == "":
		unit = typed
	case typed != "" && typed != unit:
		return "", "", apperror.NewFieldError("dosage_unit", "Dosage unit does not match the dosage")
	}

	if !validDosageUnit(unit) {
		return "", "", apperror.NewFieldError("dosage_unit", "Dosage unit must be one of "+strings.Join(DosageUnits, ", "))
	}
	return m[1] + unit, unit, nil
}

func validDosageUnit(unit string) bool {
	for _, u := range DosageUnits {
		if u == unit {
			return true
		}
	}
	return false
}
