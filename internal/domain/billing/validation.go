package billing

import (
	"regexp"
	"strings"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

const mobileLength = 10

var (
	lettersOnly = regexp.MustCompile(`^[A-Za-z\s]+$`)
	anyDigit    = regexp.MustCompile(`\d`)
)

// ValidateSubmission checks the submit preconditions in order and returns the
// first one that fails. It never mutates the form.
func (f *Form) ValidateSubmission() error {
	if err := f.Editable(); err != nil {
		return err
	}

	filled := false
	for _, r := range f.Rows {
		if r.HasName() {
			filled = true
			break
		}
	}
	if !filled {
		return apperror.NewFieldError("rows", "Please fill in at least one input field")
	}

	for _, r := range f.Rows {
		if r.IsBlank() {
			continue
		}
		if !r.IsComplete() {
			return apperror.NewFieldError("rows", "Please fill in all fields")
		}
	}

	if err := ValidatePatientName(f.Patient.Name); err != nil {
		return err
	}

	if len(f.Patient.MobileNo) < mobileLength {
		return apperror.NewFieldError("mobile_no", "Check Mobile Number")
	}

	if f.Totals.CashGiven == nil {
		return apperror.NewFieldError("cash_given", "Please fill the Cash given")
	}
	return nil
}

// ValidatePatientName accepts letters and spaces only
func ValidatePatientName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return apperror.NewFieldError("patient_name", "Please enter a valid Patient Name")
	case anyDigit.MatchString(name):
		return apperror.NewFieldError("patient_name", "Patient Name should not contain numbers")
	case !lettersOnly.MatchString(name):
		return apperror.NewFieldError("patient_name", "Give the valid Patient Name")
	}
	return nil
}

// Submission is the bill handed to the billing persistence call
type Submission struct {
	Rows        []entity.InvoiceItem
	SubTotal    money.Amount
	Discount    money.Amount
	GrandTotal  money.Amount
	PatientName string
	DoctorName  string
	MobileNo    string
	CashGiven   money.Amount
	Balance     money.Amount
}

// MedicineNames lists the item names in row order
func (s Submission) MedicineNames() []string {
	names := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		names[i] = r.MedicineName
	}
	return names
}

// BuildPayload validates the form and assembles the submission
func (f *Form) BuildPayload() (Submission, error) {
	if err := f.ValidateSubmission(); err != nil {
		return Submission{}, err
	}

	sub := Submission{
		Rows:        f.FinalizedItems(),
		SubTotal:    f.Totals.SubTotal,
		Discount:    f.Totals.Discount,
		GrandTotal:  f.Totals.GrandTotal,
		PatientName: strings.TrimSpace(f.Patient.Name),
		DoctorName:  strings.TrimSpace(f.Patient.DoctorName),
		MobileNo:    f.Patient.MobileNo,
		CashGiven:   *f.Totals.CashGiven,
	}
	if f.Totals.Balance != nil {
		sub.Balance = *f.Totals.Balance
	}
	return sub, nil
}
