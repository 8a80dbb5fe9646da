package request

// MedicineNameRequest carries the text typed into a row's name field
type MedicineNameRequest struct {
	Text string `json:"text"`
}

// SelectSuggestionRequest picks one entry of the suggestion list
type SelectSuggestionRequest struct {
	MedicineName string `json:"medicine_name" binding:"required"`
	Dosage       string `json:"dosage"`
}

// QuantityRequest carries the raw quantity text; non digits are ignored
type QuantityRequest struct {
	Quantity string `json:"quantity"`
}

// AmountRequest carries raw discount or cash text; empty clears the field
type AmountRequest struct {
	Amount string `json:"amount"`
}

// PatientRequest updates the patient section of the bill
type PatientRequest struct {
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
	CountryCode string `json:"country_code"`
	MobileNo    string `json:"mobile_no"`
}
