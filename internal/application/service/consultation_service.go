package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
	"github.com/sangkips/pharmacy-api/pkg/money"
	"github.com/sangkips/pharmacy-api/pkg/pagination"
)

var (
	lettersAndSpaces = regexp.MustCompile(`^[A-Za-z\s]*$`)
	digitsOnly       = regexp.MustCompile(`^\d*$`)
)

// ConsultationService handles outpatient consultation records
type ConsultationService struct {
	consultationRepo repository.ConsultationRepository
	loc              *time.Location
	now              func() time.Time
}

// NewConsultationService creates a new consultation service
func NewConsultationService(consultationRepo repository.ConsultationRepository, loc *time.Location) *ConsultationService {
	if loc == nil {
		loc = time.Local
	}
	return &ConsultationService{consultationRepo: consultationRepo, loc: loc, now: time.Now}
}

// CreateConsultationInput represents the consultation form input.
// Charges are whole currency units typed as digits.
type CreateConsultationInput struct {
	FirstName        string
	LastName         string
	Age              int
	Gender           string
	DateOfBirth      *time.Time
	DoctorName       string
	Observation      string
	ConsultantCharge string
	ClinicCharge     string
}

// CreateConsultation validates the form, derives age and total charge and
// stores the record under the next OP number
func (s *ConsultationService) CreateConsultation(ctx context.Context, input *CreateConsultationInput) (*entity.Consultation, error) {
	var fieldErrors []apperror.FieldError
	addErr := func(field, msg string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: msg})
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if !lettersAndSpaces.MatchString(firstName) {
		addErr("first_name", "First Name should contain only letters")
	}
	if !lettersAndSpaces.MatchString(lastName) {
		addErr("last_name", "Last Name should contain only letters")
	}

	consultantCharge := strings.TrimSpace(input.ConsultantCharge)
	clinicCharge := strings.TrimSpace(input.ClinicCharge)
	if !digitsOnly.MatchString(consultantCharge) {
		addErr("consultant_charge", "Consultant charge should contain only numbers")
	}
	if !digitsOnly.MatchString(clinicCharge) {
		addErr("clinic_charge", "Clinic charge should contain only numbers")
	}

	today := s.today()
	age := input.Age
	if input.DateOfBirth != nil {
		dob := dateOnly(*input.DateOfBirth)
		if dob.After(today) {
			addErr("dob", "Please enter a valid date of birth.")
		} else {
			age = entity.AgeOn(dob, today)
		}
	}
	if age < 0 {
		addErr("age", "Age must not be negative")
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	// a record needs a patient and at least one charge; the other fields are
	// only reported alongside a missing charge
	if firstName == "" {
		return nil, apperror.NewFieldError("first_name", "Please fill in all required fields.")
	}
	if consultantCharge == "" && clinicCharge == "" {
		missing := append(missingConsultationFields(input, lastName, age), "consultant_charge", "clinic_charge")
		errs := make([]apperror.FieldError, 0, len(missing))
		for _, f := range missing {
			errs = append(errs, apperror.FieldError{Field: f, Message: "Please fill in all required fields."})
		}
		return nil, apperror.NewValidationError(errs)
	}

	consultant := wholeAmount(consultantCharge)
	clinic := wholeAmount(clinicCharge)

	consultation := &entity.Consultation{
		FirstName:        firstName,
		LastName:         lastName,
		Age:              age,
		Gender:           strings.TrimSpace(input.Gender),
		DoctorName:       strings.TrimSpace(input.DoctorName),
		Observation:      strings.TrimSpace(input.Observation),
		ConsultantCharge: consultant,
		ClinicCharge:     clinic,
		TotalCharge:      consultant + clinic,
	}
	if input.DateOfBirth != nil {
		dob := dateOnly(*input.DateOfBirth)
		consultation.DateOfBirth = &dob
	}

	if err := s.consultationRepo.Create(ctx, consultation); err != nil {
		return nil, err
	}
	return consultation, nil
}

// GetConsultation retrieves a consultation by ID
func (s *ConsultationService) GetConsultation(ctx context.Context, id uuid.UUID) (*entity.Consultation, error) {
	consultation, err := s.consultationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if consultation == nil {
		return nil, apperror.NewNotFoundError("Consultation")
	}
	return consultation, nil
}

// ListConsultations lists records newest first, optionally searching patient names
func (s *ConsultationService) ListConsultations(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Consultation], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	items, total, err := s.consultationRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(items, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// NextOPNumber returns the OP number the next record will get
func (s *ConsultationService) NextOPNumber(ctx context.Context) (int, error) {
	return s.consultationRepo.NextOPNumber(ctx)
}

func (s *ConsultationService) today() time.Time {
	return dateOnly(s.now().In(s.loc))
}

func missingConsultationFields(input *CreateConsultationInput, lastName string, age int) []string {
	var missing []string
	if lastName == "" {
		missing = append(missing, "last_name")
	}
	if age == 0 && input.DateOfBirth == nil {
		missing = append(missing, "age")
	}
	if strings.TrimSpace(input.Gender) == "" {
		missing = append(missing, "gender")
	}
	if input.DateOfBirth == nil {
		missing = append(missing, "dob")
	}
	if strings.TrimSpace(input.DoctorName) == "" {
		missing = append(missing, "consulting_doctor_name")
	}
	if strings.TrimSpace(input.Observation) == "" {
		missing = append(missing, "observation")
	}
	return missing
}

// wholeAmount converts a digits-only charge into an amount; empty is zero
func wholeAmount(s string) money.Amount {
	if s == "" {
		return money.Zero
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return money.Zero
	}
	return money.FromCents(n * 100)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
