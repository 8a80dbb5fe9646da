package entity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

// LineItem is one medicine row of the billing form.
// A zero quantity or unit price counts as an empty field.
type LineItem struct {
	ID           uuid.UUID    `json:"id"`
	MedicineName string       `json:"medicine_name"`
	Medicine     *Medicine    `json:"medicine,omitempty"`
	Quantity     int          `json:"quantity"`
	UnitPrice    money.Amount `json:"unit_price"`
	Total        money.Amount `json:"total"`

	// ReservedQuantity is the last quantity committed to the session ledger for
	// ReservedFor (a medicine name). Zero when the row holds no reservation.
	ReservedQuantity int    `json:"reserved_quantity"`
	ReservedFor      string `json:"-"`
}

// NewLineItem creates an empty row with a fresh id
func NewLineItem() *LineItem {
	return &LineItem{ID: uuid.New()}
}

// HasName reports whether the medicine name field is filled
func (l *LineItem) HasName() bool {
	return strings.TrimSpace(l.MedicineName) != ""
}

// HasQuantity reports whether the quantity field is filled
func (l *LineItem) HasQuantity() bool {
	return l.Quantity > 0
}

// HasPrice reports whether the unit price field is filled
func (l *LineItem) HasPrice() bool {
	return l.UnitPrice > 0
}

// IsBlank reports whether none of name, quantity and price are filled
func (l *LineItem) IsBlank() bool {
	return !l.HasName() && !l.HasQuantity() && !l.HasPrice()
}

// IsComplete reports whether name, quantity and price are all filled
func (l *LineItem) IsComplete() bool {
	return l.HasName() && l.HasQuantity() && l.HasPrice()
}

// Recompute derives the row total from quantity and unit price
func (l *LineItem) Recompute() {
	l.Total = l.UnitPrice.Mul(l.Quantity)
}

// ResolveMedicine returns the structured medicine for the row. The pair picked
// from the suggestion list wins as long as the text still matches it.
func (l *LineItem) ResolveMedicine() (Medicine, bool) {
	text := strings.TrimSpace(l.MedicineName)
	if l.Medicine != nil && l.Medicine.Label() == text {
		return *l.Medicine, true
	}
	return ParseMedicine(text)
}

// Clear empties the four editable fields
func (l *LineItem) Clear() {
	l.MedicineName = ""
	l.Medicine = nil
	l.Quantity = 0
	l.UnitPrice = money.Zero
	l.Total = money.Zero
}
