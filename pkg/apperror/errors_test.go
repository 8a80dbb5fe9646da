package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAppError(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", NewSubmissionError("Error submitting billing data", errors.New("dial tcp")))

	appErr := GetAppError(wrapped)
	assert.Equal(t, http.StatusBadGateway, appErr.Code)
	assert.Equal(t, KindSubmission, appErr.Kind)
	assert.True(t, IsKind(wrapped, KindSubmission))
	assert.EqualError(t, errors.Unwrap(appErr), "dial tcp")

	plain := GetAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
	assert.Equal(t, KindInternal, plain.Kind)
}

func TestNewValidationErrorUsesFirstMessage(t *testing.T) {
	err := NewValidationError([]FieldError{
		{Field: "patient_name", Message: "Give the valid Patient Name"},
		{Field: "mobile_no", Message: "Check Mobile Number"},
	})
	assert.Equal(t, "Give the valid Patient Name", err.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	assert.Len(t, err.Errors, 2)
}

func TestNewAppErrorKind(t *testing.T) {
	assert.Equal(t, KindBadRequest, NewAppError(http.StatusBadRequest, "x").Kind)
	assert.Equal(t, KindNotFound, NewAppError(http.StatusNotFound, "x").Kind)
	assert.Equal(t, KindInternal, NewAppError(http.StatusTeapot, "x").Kind)
}
