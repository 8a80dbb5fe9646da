package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/infrastructure/inventory"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
)

// AccountRegistrar creates user accounts on the remote pharmacy API
type AccountRegistrar interface {
	EmailRegistered(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, reg entity.Registration) error
}

// RegistrationService validates and forwards new user accounts
type RegistrationService struct {
	registrar AccountRegistrar
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(registrar AccountRegistrar) *RegistrationService {
	return &RegistrationService{registrar: registrar}
}

// Register checks the form, rejects an email that is already in use and
// creates the account
func (s *RegistrationService) Register(ctx context.Context, input entity.Registration) (*entity.Registration, error) {
	reg := entity.Registration{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.TrimSpace(input.Email),
		MobileNumber: strings.TrimSpace(input.MobileNumber),
		Role:         strings.TrimSpace(input.Role),
		Password:     input.Password,
	}
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	taken, err := s.registrar.EmailRegistered(ctx, reg.Email)
	if err != nil {
		log.Printf("Email check failed for %s: %v", reg.Email, err)
		return nil, apperror.NewUpstreamError("Registration failed, please try again", err)
	}
	if taken {
		return nil, apperror.NewConflictError("Email is already registered. Please use a different email address.")
	}

	if err := s.registrar.Register(ctx, reg); err != nil {
		log.Printf("Registration failed for %s: %v", reg.Email, err)
		if errors.Is(err, inventory.ErrRejected) {
			return nil, apperror.NewBadRequestError("Registration was refused, please check the details")
		}
		return nil, apperror.NewUpstreamError("Registration failed, please try again", err)
	}
	return &reg, nil
}

func validateRegistration(reg entity.Registration) error {
	if reg.FirstName == "" || reg.LastName == "" || reg.Email == "" ||
		reg.MobileNumber == "" || reg.Role == "" || reg.Password == "" {
		return apperror.NewFieldError("fields", "Please fill in all fields with valid information.")
	}

	var errs []apperror.FieldError
	if !lettersAndSpaces.MatchString(reg.FirstName) {
		errs = append(errs, apperror.FieldError{Field: "first_name", Message: "First Name should contain only letters"})
	}
	if !lettersAndSpaces.MatchString(reg.LastName) {
		errs = append(errs, apperror.FieldError{Field: "last_name", Message: "Last Name should contain only letters"})
	}
	if !emailPattern.MatchString(reg.Email) {
		errs = append(errs, apperror.FieldError{Field: "email", Message: "Please enter a valid email address."})
	}
	if !mobilePattern.MatchString(reg.MobileNumber) {
		errs = append(errs, apperror.FieldError{Field: "mobile_number", Message: "Mobile number must be 10 digits long."})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}
