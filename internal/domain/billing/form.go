package billing

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/domain/enum"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

var (
	// ErrFormSubmitted is returned for edits after the bill was submitted
	ErrFormSubmitted = apperror.NewFieldError("state", "Bill already submitted, cancel to start a new one")
	// ErrNotSubmitted is returned for exports before the bill was submitted
	ErrNotSubmitted = apperror.NewConflictError("Bill has not been submitted yet")
	// ErrRowNotFound is returned for an unknown row id
	ErrRowNotFound = apperror.NewNotFoundError("Row")
)

var leadingDigits = regexp.MustCompile(`^\d*`)

// Options configures a new form
type Options struct {
	InitialRows int
	CountryCode string
}

// Patient holds the customer details entered on the bill
type Patient struct {
	Name        string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
	CountryCode string `json:"country_code"`
	MobileNo    string `json:"mobile_no"`
}

// Form is one billing form session: editable rows, the reservation ledger,
// derived totals and, once submitted, the invoice snapshot.
type Form struct {
	ID          uuid.UUID          `json:"id"`
	State       enum.FormState     `json:"state"`
	Rows        []*entity.LineItem `json:"rows"`
	Ledger      Ledger             `json:"ledger"`
	Totals      Totals             `json:"totals"`
	Patient     Patient            `json:"patient"`
	Suggestions []entity.Medicine  `json:"suggestions"`
	Invoice     *entity.Invoice    `json:"invoice,omitempty"`

	opts Options
}

// NewForm creates a fresh form in the Editing state
func NewForm(id uuid.UUID, opts Options) *Form {
	if opts.InitialRows < 1 {
		opts.InitialRows = 1
	}
	f := &Form{ID: id, opts: opts}
	f.Reset()
	return f
}

// Reset puts the form back to its initial empty state, as if freshly loaded
func (f *Form) Reset() {
	f.State = enum.FormStateEditing
	f.Rows = make([]*entity.LineItem, 0, f.opts.InitialRows)
	for i := 0; i < f.opts.InitialRows; i++ {
		f.Rows = append(f.Rows, entity.NewLineItem())
	}
	f.Ledger = NewLedger()
	f.Patient = Patient{CountryCode: f.opts.CountryCode}
	f.Suggestions = nil
	f.Invoice = nil
	f.Totals = Totals{}
	f.Recompute()
}

// Editable reports whether the form still accepts edits
func (f *Form) Editable() error {
	if f.State != enum.FormStateEditing {
		return ErrFormSubmitted
	}
	return nil
}

// Row finds a row by id
func (f *Form) Row(id uuid.UUID) (*entity.LineItem, error) {
	for _, r := range f.Rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrRowNotFound
}

// AddRow appends an empty row and leaves the others untouched
func (f *Form) AddRow() (*entity.LineItem, error) {
	if err := f.Editable(); err != nil {
		return nil, err
	}
	row := entity.NewLineItem()
	f.Rows = append(f.Rows, row)
	return row, nil
}

// RemoveRow deletes a row and releases what it had reserved
func (f *Form) RemoveRow(id uuid.UUID) error {
	if err := f.Editable(); err != nil {
		return err
	}
	for i, r := range f.Rows {
		if r.ID == id {
			f.release(r)
			f.Rows = append(f.Rows[:i], f.Rows[i+1:]...)
			f.Recompute()
			return nil
		}
	}
	return ErrRowNotFound
}

// SetMedicineText records a keystroke in a row's name field. Leading digits are
// stripped. Changing the text drops the row's reservation, since it was made
// for the previous medicine. Returns the sanitized text.
func (f *Form) SetMedicineText(id uuid.UUID, text string) (string, error) {
	if err := f.Editable(); err != nil {
		return "", err
	}
	row, err := f.Row(id)
	if err != nil {
		return "", err
	}

	text = leadingDigits.ReplaceAllString(text, "")
	if text != row.MedicineName {
		f.release(row)
		row.MedicineName = text
		if row.Medicine != nil && row.Medicine.Label() != strings.TrimSpace(text) {
			row.Medicine = nil
		}
	}
	return text, nil
}

// SetSuggestions stores the latest suggestion list
func (f *Form) SetSuggestions(list []entity.Medicine) {
	f.Suggestions = list
}

// ApplySuggestion fills a row's name from a picked suggestion
func (f *Form) ApplySuggestion(id uuid.UUID, med entity.Medicine) error {
	if _, err := f.SetMedicineText(id, med.Label()); err != nil {
		return err
	}
	row, _ := f.Row(id)
	m := med
	row.Medicine = &m
	return nil
}

// ApplyUnitPrice sets the price fetched for a medicine. A response for a
// medicine the row no longer shows is dropped and false is returned.
func (f *Form) ApplyUnitPrice(id uuid.UUID, med entity.Medicine, price money.Amount) (bool, error) {
	if err := f.Editable(); err != nil {
		return false, err
	}
	row, err := f.Row(id)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(row.MedicineName) != med.Label() {
		return false, nil
	}
	row.UnitPrice = price
	row.Recompute()
	f.Recompute()
	return true, nil
}

// ClearRow empties a row's four fields and releases its reservation
func (f *Form) ClearRow(id uuid.UUID) error {
	if err := f.Editable(); err != nil {
		return err
	}
	row, err := f.Row(id)
	if err != nil {
		return err
	}
	f.release(row)
	row.Clear()
	f.Recompute()
	return nil
}

// QuantityResult is the outcome of a reservation check
type QuantityResult struct {
	Accepted  bool   `json:"accepted"`
	Medicine  string `json:"medicine"`
	Remaining int    `json:"remaining"`
}

// ApplyQuantity runs the reservation rule for a row. Reserved means "held by
// the other rows": the row's own earlier reservation for the same medicine is
// replaced when the request is accepted. The request is accepted iff
// qty + reserved <= available. A rejected request clears the row's quantity and
// total and leaves the ledger, including the row's own reservation, unchanged.
func (f *Form) ApplyQuantity(id uuid.UUID, qty, available int) (QuantityResult, error) {
	if err := f.Editable(); err != nil {
		return QuantityResult{}, err
	}
	row, err := f.Row(id)
	if err != nil {
		return QuantityResult{}, err
	}

	key := ledgerKey(row)
	held := f.Ledger.Reserved(key)
	reserved := held
	if row.ReservedFor == key {
		reserved -= row.ReservedQuantity
	}

	if qty+reserved > available {
		row.Quantity = 0
		row.Total = money.Zero
		f.Recompute()
		remaining := available - held
		if remaining < 0 {
			remaining = 0
		}
		return QuantityResult{Accepted: false, Medicine: key, Remaining: remaining}, nil
	}

	f.release(row)
	row.Quantity = qty
	row.Recompute()
	if qty > 0 {
		f.Ledger.Reserve(key, qty)
		row.ReservedQuantity = qty
		row.ReservedFor = key
	}
	f.Recompute()
	return QuantityResult{Accepted: true, Medicine: key, Remaining: available - reserved - qty}, nil
}

// ClearQuantity empties a row's quantity and total, e.g. when stock could not be checked
func (f *Form) ClearQuantity(id uuid.UUID) error {
	if err := f.Editable(); err != nil {
		return err
	}
	row, err := f.Row(id)
	if err != nil {
		return err
	}
	f.release(row)
	row.Quantity = 0
	row.Total = money.Zero
	f.Recompute()
	return nil
}

// SetDiscount updates the discount and recomputes the totals
func (f *Form) SetDiscount(discount money.Amount) error {
	if err := f.Editable(); err != nil {
		return err
	}
	if discount < 0 {
		return apperror.NewFieldError("discount", "Discount cannot be negative")
	}
	f.Totals.Discount = discount
	f.Recompute()
	return nil
}

// SetCashGiven updates the cash handed over; nil means not entered
func (f *Form) SetCashGiven(cash *money.Amount) error {
	if err := f.Editable(); err != nil {
		return err
	}
	if cash != nil && *cash < 0 {
		return apperror.NewFieldError("cash_given", "Cash given cannot be negative")
	}
	if cash == nil {
		f.Totals.CashGiven = nil
	} else {
		c := *cash
		f.Totals.CashGiven = &c
	}
	f.Recompute()
	return nil
}

// SetPatient updates the customer details. The mobile number keeps digits
// only and at most 10 of them.
func (f *Form) SetPatient(p Patient) error {
	if err := f.Editable(); err != nil {
		return err
	}
	p.MobileNo = SanitizeMobile(p.MobileNo)
	if strings.TrimSpace(p.CountryCode) == "" {
		p.CountryCode = f.opts.CountryCode
	}
	f.Patient = p
	return nil
}

// Recompute derives the totals from rows, discount and cash given
func (f *Form) Recompute() {
	f.Totals = ComputeTotals(f.Rows, f.Totals.Discount, f.Totals.CashGiven)
}

// MarkSubmitted snapshots the bill under the invoice number assigned by the
// remote API and moves the form to Submitted.
func (f *Form) MarkSubmitted(invoiceNo string, date time.Time) *entity.Invoice {
	items := f.FinalizedItems()
	inv := &entity.Invoice{
		InvoiceNo:   invoiceNo,
		SessionID:   f.ID,
		InvoiceDate: date,
		PatientName: strings.TrimSpace(f.Patient.Name),
		DoctorName:  strings.TrimSpace(f.Patient.DoctorName),
		CountryCode: f.Patient.CountryCode,
		MobileNo:    f.Patient.MobileNo,
		SubTotal:    f.Totals.SubTotal,
		Discount:    f.Totals.Discount,
		GrandTotal:  f.Totals.GrandTotal,
		Items:       items,
	}
	if f.Totals.CashGiven != nil {
		inv.CashGiven = *f.Totals.CashGiven
	}
	if f.Totals.Balance != nil {
		inv.Balance = *f.Totals.Balance
	}

	f.Invoice = inv
	f.State = enum.FormStateSubmitted
	return inv
}

// SubmittedInvoice returns the snapshot, or ErrNotSubmitted while editing
func (f *Form) SubmittedInvoice() (*entity.Invoice, error) {
	if f.State != enum.FormStateSubmitted || f.Invoice == nil {
		return nil, ErrNotSubmitted
	}
	return f.Invoice, nil
}

// FinalizedItems lists the filled rows in order
func (f *Form) FinalizedItems() []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, 0, len(f.Rows))
	for _, r := range f.Rows {
		if !r.HasName() {
			continue
		}
		items = append(items, entity.InvoiceItem{
			Position:     len(items) + 1,
			RowID:        r.ID,
			MedicineName: strings.TrimSpace(r.MedicineName),
			Quantity:     r.Quantity,
			UnitPrice:    r.UnitPrice,
			Total:        r.Total,
		})
	}
	return items
}

func (f *Form) release(row *entity.LineItem) {
	if row.ReservedQuantity > 0 {
		f.Ledger.Release(row.ReservedFor, row.ReservedQuantity)
	}
	row.ReservedQuantity = 0
	row.ReservedFor = ""
}

func ledgerKey(row *entity.LineItem) string {
	if med, ok := row.ResolveMedicine(); ok {
		return med.Name
	}
	return strings.TrimSpace(row.MedicineName)
}

// SanitizeMobile keeps the digits of a mobile number, at most 10 of them
func SanitizeMobile(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 10 {
				break
			}
		}
	}
	return b.String()
}

// ParseQuantity reads a quantity field, dropping every non-digit character.
// Empty input is zero.
func ParseQuantity(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000_000 {
			return 1_000_000_000
		}
	}
	return n
}

// Clone returns a deep copy safe to read after the session lock is released.
// The invoice snapshot is immutable and shared.
func (f *Form) Clone() *Form {
	c := *f
	c.Rows = make([]*entity.LineItem, len(f.Rows))
	for i, r := range f.Rows {
		row := *r
		if r.Medicine != nil {
			m := *r.Medicine
			row.Medicine = &m
		}
		c.Rows[i] = &row
	}
	c.Ledger = make(Ledger, len(f.Ledger))
	for k, v := range f.Ledger {
		c.Ledger[k] = v
	}
	if f.Totals.CashGiven != nil {
		v := *f.Totals.CashGiven
		c.Totals.CashGiven = &v
	}
	if f.Totals.Balance != nil {
		v := *f.Totals.Balance
		c.Totals.Balance = &v
	}
	if f.Suggestions != nil {
		c.Suggestions = append([]entity.Medicine(nil), f.Suggestions...)
	}
	return &c
}
