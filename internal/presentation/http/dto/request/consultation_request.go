package request

// CreateConsultationRequest represents the consultation form. Charges are
// whole amounts typed as digits.
type CreateConsultationRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Age              int    `json:"age" binding:"min=0,max=150"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"dob"`
	DoctorName       string `json:"consulting_doctor_name"`
	Observation      string `json:"observation"`
	ConsultantCharge string `json:"consultant_charge"`
	ClinicCharge     string `json:"clinic_charge"`
}

// ConsultationFilterRequest represents consultation list parameters
type ConsultationFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
