package entity

import (
	"strings"
)

// Medicine identifies a stocked medicine by name and dosage, e.g. {"Paracetamol", "500mg"}
type Medicine struct {
	Name   string `json:"medicine_name"`
	Dosage string `json:"dosage"`
}

// Label is the combined text shown in the billing name field
func (m Medicine) Label() string {
	if m.Dosage == "" {
		return m.Name
	}
	return m.Name + " " + m.Dosage
}

// ParseMedicine splits "<name> <dosage>" at the last space, the trailing token
// being the dosage. Text without a space cannot be split and returns false.
//
// This is only a fallback for free text: names with trailing numbers or
// multi-word dosage units split wrongly, so a structured pair from the
// suggestion list is preferred whenever the row has one.
func ParseMedicine(text string) (Medicine, bool) {
	text = strings.TrimSpace(text)
	idx := strings.LastIndex(text, " ")
	if idx == -1 {
		return Medicine{}, false
	}
	return Medicine{
		Name:   strings.TrimSpace(text[:idx]),
		Dosage: strings.TrimSpace(text[idx+1:]),
	}, true
}
